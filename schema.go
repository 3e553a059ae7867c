package connectify

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema bootstraps the tables and indexes the module needs. It is
// idempotent and intended for embedded hosts and tests; deployments with
// their own migration pipeline can skip it.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Like)(nil),
		(*Follow)(nil),
		(*Track)(nil),
		(*Playlist)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create table")
		}
	}

	indexes := []struct {
		name    string
		model   any
		columns []string
	}{
		{"idx_users_email", (*User)(nil), []string{"email"}},
		{"idx_users_reset_token", (*User)(nil), []string{"reset_password_token"}},
		{"idx_tracks_author", (*Track)(nil), []string{"author_id"}},
		{"idx_playlists_author", (*Playlist)(nil), []string{"author_id"}},
		{"idx_follows_following", (*Follow)(nil), []string{"following_id"}},
		{"idx_likes_track", (*Like)(nil), []string{"track_id"}},
	}

	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create index")
		}
	}

	return nil
}
