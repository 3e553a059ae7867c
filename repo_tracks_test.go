package connectify_test

import (
	"context"
	"testing"
	"time"

	"github.com/connectify/connectify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTrackAt(t *testing.T, repo connectify.RepositoryManager, author *connectify.User, title string, at time.Time) *connectify.Track {
	t.Helper()

	track, err := repo.Tracks().Create(context.Background(), &connectify.Track{
		Title:        title,
		Artist:       author.Username,
		AudioFileURL: "https://cdn.example.com/audio/" + title + ".mp3",
		AuthorID:     author.ID,
		CreatedAt:    &at,
	})
	require.NoError(t, err)

	return track
}

func TestTracksFeed(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))

	ada := seedUser(t, repo, "ada")
	bob := seedUser(t, repo, "bob")
	eve := seedUser(t, repo, "eve")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedTrackAt(t, repo, ada, "ada-old", base)
	seedTrackAt(t, repo, bob, "bob-new", base.Add(2*time.Hour))
	seedTrackAt(t, repo, eve, "eve-hidden", base.Add(3*time.Hour))
	seedTrackAt(t, repo, ada, "ada-new", base.Add(time.Hour))

	records, err := repo.Tracks().Feed(ctx, []uuid.UUID{ada.ID, bob.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "bob-new", records[0].Title)
	assert.Equal(t, "ada-new", records[1].Title)
	assert.Equal(t, "ada-old", records[2].Title)

	// Author relation is hydrated for rendering.
	require.NotNil(t, records[0].Author)
	assert.Equal(t, "bob", records[0].Author.Username)

	// No follows means an empty feed, not an error.
	records, err = repo.Tracks().Feed(ctx, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Pagination.
	records, err = repo.Tracks().Feed(ctx, []uuid.UUID{ada.ID, bob.ID}, 2, 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ada-old", records[0].Title)
}

func TestTracksSearchAndByAuthor(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))

	ada := seedUser(t, repo, "ada")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedTrackAt(t, repo, ada, "midnight drive", base)
	seedTrackAt(t, repo, ada, "morning drive", base.Add(time.Hour))
	seedTrackAt(t, repo, ada, "silence", base.Add(2*time.Hour))

	records, err := repo.Tracks().SearchByTitle(ctx, "drive", 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "morning drive", records[0].Title)

	records, err = repo.Tracks().ByAuthorUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Len(t, records, 3)

	count, err := repo.Tracks().CountByAuthor(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTracksLikedBy(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))

	ada := seedUser(t, repo, "ada")
	bob := seedUser(t, repo, "bob")

	first := seedTrack(t, repo, ada, "first")
	second := seedTrack(t, repo, ada, "second")
	seedTrack(t, repo, ada, "unliked")

	_, err := repo.Likes().Toggle(ctx, bob.ID, first.ID)
	require.NoError(t, err)
	_, err = repo.Likes().Toggle(ctx, bob.ID, second.ID)
	require.NoError(t, err)

	records, err := repo.Tracks().LikedBy(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	titles := []string{records[0].Title, records[1].Title}
	assert.ElementsMatch(t, []string{"first", "second"}, titles)
}

func TestPlaylistsDefaultsAndByAuthor(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))

	ada := seedUser(t, repo, "ada")

	playlist, err := repo.Playlists().Create(ctx, &connectify.Playlist{
		Name:     "late night",
		AuthorID: ada.ID,
		TrackIDs: []string{uuid.NewString()},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, playlist.ID)
	assert.Equal(t, connectify.VisibilityPublic, playlist.Visibility)

	records, err := repo.Playlists().ByAuthor(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "late night", records[0].Name)
	assert.Len(t, records[0].TrackIDs, 1)
}
