package connectify

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "Nil error",
			err:  nil,
			want: false,
		},
		{
			name: "Sqlite unique violation",
			err:  errors.New("constraint failed: UNIQUE constraint failed: likes.user_id, likes.track_id (2067)"),
			want: true,
		},
		{
			name: "Postgres sqlstate",
			err:  errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`),
			want: true,
		},
		{
			name: "Unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

// The benign-duplicate branch in the relation store keys off this helper, so
// it must recognize the error the driver actually produces, not just the
// documented message shapes.
func TestIsUniqueViolationSqliteDriver(t *testing.T) {
	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	require.NoError(t, CreateSchema(ctx, db))

	pair := &Like{UserID: uuid.New(), TrackID: uuid.New()}
	_, err = db.NewInsert().Model(pair).Exec(ctx)
	require.NoError(t, err)

	dup := &Like{UserID: pair.UserID, TrackID: pair.TrackID}
	_, err = db.NewInsert().Model(dup).Exec(ctx)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestResolveUserIdentifier(t *testing.T) {
	opts := resolveUserIdentifier("ada@example.com")
	assert.Len(t, opts, 2) // email then username fallback
	assert.Equal(t, "email", opts[0].column)

	opts = resolveUserIdentifier("c2f6bd6a-9c84-4f86-bd22-9d3f2a30fbc1")
	assert.Equal(t, "id", opts[0].column)

	opts = resolveUserIdentifier("ada")
	assert.Len(t, opts, 1)
	assert.Equal(t, "username", opts[0].column)

	assert.Nil(t, resolveUserIdentifier("  "))
}

func TestErrorTextCodes(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", ErrAccountNotFound.TextCode)
	assert.Equal(t, "ALREADY_VERIFIED", ErrAlreadyVerified.TextCode)
	assert.Equal(t, "INVALID_CODE", ErrInvalidCode.TextCode)
	assert.Equal(t, "EXPIRED", ErrCodeExpired.TextCode)
	assert.Equal(t, "INVALID_CREDENTIALS", ErrInvalidCredentials.TextCode)
	assert.Equal(t, "INVALID_OR_EXPIRED_TOKEN", ErrInvalidResetToken.TextCode)
}
