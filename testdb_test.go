package connectify_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/connectify/connectify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// newTestDB spins up a private in-memory sqlite database with the schema
// applied. Each call gets its own database so tests stay independent.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	require.NoError(t, connectify.CreateSchema(context.Background(), db))

	return db
}

// seedUser registers a verified account ready to act.
func seedUser(t *testing.T, repo connectify.RepositoryManager, username string) *connectify.User {
	t.Helper()

	hash, err := connectify.HashPassword("password123!")
	require.NoError(t, err)

	user, err := repo.Users().Register(context.Background(), &connectify.User{
		Username:     username,
		FullName:     "Test " + username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsVerified:   true,
		Status:       connectify.AccountStatusVerified,
	})
	require.NoError(t, err)

	return user
}

// seedTrack stores a track owned by the given author.
func seedTrack(t *testing.T, repo connectify.RepositoryManager, author *connectify.User, title string) *connectify.Track {
	t.Helper()

	track, err := repo.Tracks().Create(context.Background(), &connectify.Track{
		Title:        title,
		Artist:       author.Username,
		AudioFileURL: "https://cdn.example.com/audio/" + title + ".mp3",
		AuthorID:     author.ID,
	})
	require.NoError(t, err)

	return track
}
