package connectify

import (
	"context"
	"slices"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrPlaylistNotFound is returned when no playlist matches the id.
var ErrPlaylistNotFound = goerrors.New("playlist not found", goerrors.CategoryNotFound).
	WithTextCode("NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrNotPlaylistAuthor is returned when a mutation targets someone else's playlist.
var ErrNotPlaylistAuthor = goerrors.New("cannot modify someone else's playlist", goerrors.CategoryAuthz).
	WithTextCode("NOT_PLAYLIST_AUTHOR").
	WithCode(goerrors.CodeForbidden)

type CreatePlaylistMessage struct {
	Name          string    `json:"name"`
	CoverImageURL string    `json:"cover_image_url"`
	Visibility    string    `json:"visibility"`
	TrackIDs      []string  `json:"track_ids"`
	AuthorID      uuid.UUID `json:"author_id"`
	OnResponse    func(playlist *Playlist)
}

func (e CreatePlaylistMessage) Type() string { return "playlist.create" }

type MutatePlaylistTracksMessage struct {
	PlaylistID uuid.UUID `json:"playlist_id"`
	TrackID    string    `json:"track_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Remove     bool      `json:"remove"`
	OnResponse func(playlist *Playlist)
}

func (e MutatePlaylistTracksMessage) Type() string { return "playlist.mutate_tracks" }

type DeletePlaylistMessage struct {
	PlaylistID uuid.UUID `json:"playlist_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	OnResponse func(success bool)
}

func (e DeletePlaylistMessage) Type() string { return "playlist.delete" }

type PlaylistHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewPlaylistHandler(repo RepositoryManager, logger Logger) *PlaylistHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &PlaylistHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *PlaylistHandler) ExecuteCreate(ctx context.Context, event CreatePlaylistMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during playlist creation",
		)
	default:
		return h.executeCreate(ctx, event)
	}
}

func (h *PlaylistHandler) executeCreate(ctx context.Context, event CreatePlaylistMessage) error {
	if event.AuthorID == uuid.Nil {
		return ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	playlist := &Playlist{
		Name:          event.Name,
		CoverImageURL: event.CoverImageURL,
		Visibility:    event.Visibility,
		TrackIDs:      event.TrackIDs,
		AuthorID:      event.AuthorID,
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if playlist, err = h.repo.Playlists().CreateTx(ctx, tx, playlist); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create playlist")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "playlist creation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(playlist)
	}

	return nil
}

func (h *PlaylistHandler) ExecuteMutateTracks(ctx context.Context, event MutatePlaylistTracksMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during playlist update",
		)
	default:
		return h.executeMutateTracks(ctx, event)
	}
}

func (h *PlaylistHandler) executeMutateTracks(ctx context.Context, event MutatePlaylistTracksMessage) error {
	if event.ActorID == uuid.Nil {
		return ErrUnauthenticated
	}

	var playlist *Playlist
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		playlist, err = h.getOwnedPlaylistTx(ctx, tx, event.PlaylistID, event.ActorID)
		if err != nil {
			return err
		}

		if event.Remove {
			playlist.TrackIDs = slices.DeleteFunc(playlist.TrackIDs, func(id string) bool {
				return id == event.TrackID
			})
		} else if !slices.Contains(playlist.TrackIDs, event.TrackID) {
			playlist.TrackIDs = append(playlist.TrackIDs, event.TrackID)
		}

		if playlist, err = h.repo.Playlists().UpdateTx(ctx, tx, playlist, repository.UpdateByID(playlist.ID.String())); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update playlist tracks")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "playlist update transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(playlist)
	}

	return nil
}

func (h *PlaylistHandler) ExecuteDelete(ctx context.Context, event DeletePlaylistMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during playlist deletion",
		)
	default:
		return h.executeDelete(ctx, event)
	}
}

func (h *PlaylistHandler) executeDelete(ctx context.Context, event DeletePlaylistMessage) error {
	if event.ActorID == uuid.Nil {
		return ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		playlist, err := h.getOwnedPlaylistTx(ctx, tx, event.PlaylistID, event.ActorID)
		if err != nil {
			return err
		}

		if err := h.repo.Playlists().DeleteTx(ctx, tx, playlist); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete playlist")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "playlist deletion transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(true)
	}

	return nil
}

func (h *PlaylistHandler) getOwnedPlaylistTx(ctx context.Context, tx bun.Tx, id, actor uuid.UUID) (*Playlist, error) {
	playlist, err := h.repo.Playlists().GetByIdentifierTx(ctx, tx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrPlaylistNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve playlist")
	}

	if playlist.AuthorID != actor {
		return nil, ErrNotPlaylistAuthor
	}

	return playlist, nil
}
