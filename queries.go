package connectify

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

const (
	// FeedPageSize is how many tracks a feed page carries.
	FeedPageSize = 5
	// SearchPageSize is how many results a search page carries.
	SearchPageSize = 3
)

// QueryService is the read side: feeds, searches and profile projections.
// Every method takes the viewer so engagement flags can be annotated;
// uuid.Nil means an anonymous viewer.
type QueryService struct {
	repo   RepositoryManager
	logger Logger
}

func NewQueryService(repo RepositoryManager, logger Logger) *QueryService {
	if logger == nil {
		logger = defLogger{}
	}
	return &QueryService{
		repo:   repo,
		logger: logger,
	}
}

// Feed lists tracks by authors the viewer follows, newest first. Pages are
// zero-based.
func (s *QueryService) Feed(ctx context.Context, viewer uuid.UUID, page int) ([]*Track, error) {
	if viewer == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	authorIDs, err := s.repo.Follows().TargetIDs(ctx, viewer)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve followed authors")
	}

	records, err := s.repo.Tracks().Feed(ctx, authorIDs, FeedPageSize, pageOffset(page, FeedPageSize))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load feed")
	}

	return s.annotateHasLiked(ctx, viewer, records)
}

// RecentTracks lists the newest tracks regardless of follow graph.
func (s *QueryService) RecentTracks(ctx context.Context, viewer uuid.UUID, page int) ([]*Track, error) {
	records, err := s.repo.Tracks().ListRecent(ctx, FeedPageSize, pageOffset(page, FeedPageSize))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load tracks")
	}

	return s.annotateHasLiked(ctx, viewer, records)
}

// TrackByID resolves a single track with the viewer's like flag.
func (s *QueryService) TrackByID(ctx context.Context, viewer, id uuid.UUID) (*Track, error) {
	track, err := s.repo.Tracks().GetByIdentifier(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTrackNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load track")
	}

	records, err := s.annotateHasLiked(ctx, viewer, []*Track{track})
	if err != nil {
		return nil, err
	}

	return records[0], nil
}

// SearchUsers matches usernames containing the query.
func (s *QueryService) SearchUsers(ctx context.Context, query string, page int) ([]*User, error) {
	records, err := s.repo.Users().Search(ctx, query, SearchPageSize, pageOffset(page, SearchPageSize))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to search users")
	}

	return records, nil
}

// SearchTracks matches track titles containing the query.
func (s *QueryService) SearchTracks(ctx context.Context, viewer uuid.UUID, query string, page int) ([]*Track, error) {
	records, err := s.repo.Tracks().SearchByTitle(ctx, query, SearchPageSize, pageOffset(page, SearchPageSize))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to search tracks")
	}

	return s.annotateHasLiked(ctx, viewer, records)
}

// UserProfile builds the public profile projection with engagement counts.
func (s *QueryService) UserProfile(ctx context.Context, viewer uuid.UUID, username string) (*UserProfile, error) {
	user, err := s.repo.Users().GetByIdentifier(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load profile")
	}

	totalTracks, err := s.repo.Tracks().CountByAuthor(ctx, user.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count tracks")
	}

	followers, err := s.repo.Follows().CountByTarget(ctx, user.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count followers")
	}

	followings, err := s.repo.Follows().CountByActor(ctx, user.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count followings")
	}

	followedByMe := false
	if viewer != uuid.Nil {
		if followedByMe, err = s.repo.Follows().Exists(ctx, viewer, user.ID); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve follow state")
		}
	}

	return &UserProfile{
		ID:              user.ID.String(),
		Username:        user.Username,
		FullName:        user.FullName,
		ProfileImageURL: user.ProfileImageURL,
		Bio:             user.Bio,
		TotalTracks:     totalTracks,
		TotalFollowers:  followers,
		TotalFollowings: followings,
		FollowedByMe:    followedByMe,
	}, nil
}

// UserTracks lists a user's tracks by username.
func (s *QueryService) UserTracks(ctx context.Context, viewer uuid.UUID, username string) ([]*Track, error) {
	records, err := s.repo.Tracks().ByAuthorUsername(ctx, username)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user tracks")
	}

	return s.annotateHasLiked(ctx, viewer, records)
}

// LikedTracks lists the viewer's liked tracks, newest like first.
func (s *QueryService) LikedTracks(ctx context.Context, viewer uuid.UUID) ([]*Track, error) {
	if viewer == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	records, err := s.repo.Tracks().LikedBy(ctx, viewer)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load liked tracks")
	}

	// Everything here is liked by construction.
	for _, track := range records {
		track.HasLiked = true
	}

	return records, nil
}

// UserPlaylists lists playlists owned by the viewer.
func (s *QueryService) UserPlaylists(ctx context.Context, viewer uuid.UUID) ([]*Playlist, error) {
	if viewer == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	records, err := s.repo.Playlists().ByAuthor(ctx, viewer)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load playlists")
	}

	return records, nil
}

// PlaylistByID resolves a playlist, honoring visibility for non-authors.
func (s *QueryService) PlaylistByID(ctx context.Context, viewer, id uuid.UUID) (*Playlist, error) {
	playlist, err := s.repo.Playlists().GetByIdentifier(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrPlaylistNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load playlist")
	}

	if playlist.Visibility == VisibilityPrivate && playlist.AuthorID != viewer {
		return nil, ErrPlaylistNotFound
	}

	return playlist, nil
}

func (s *QueryService) annotateHasLiked(ctx context.Context, viewer uuid.UUID, records []*Track) ([]*Track, error) {
	if viewer == uuid.Nil {
		return records, nil
	}

	for _, track := range records {
		liked, err := s.repo.Likes().Exists(ctx, viewer, track.ID)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve like state")
		}
		track.HasLiked = liked
	}

	return records, nil
}

func pageOffset(page, size int) int {
	if page < 1 {
		return 0
	}
	return page * size
}
