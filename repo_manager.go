package connectify

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	Likes() Relations
	Follows() Relations
	Tracks() Tracks
	Playlists() Playlists
}

type mngr struct {
	db        *bun.DB
	users     Users
	likes     Relations
	follows   Relations
	tracks    Tracks
	playlists Playlists
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		likes:     NewLikesRepository(db),
		follows:   NewFollowsRepository(db),
		tracks:    NewTracksRepository(db),
		playlists: NewPlaylistsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.likes == nil {
		return errors.New("repository likes should be initialized")
	}

	if m.follows == nil {
		return errors.New("repository follows should be initialized")
	}

	if m.tracks == nil {
		return errors.New("repository tracks should be initialized")
	}

	if m.playlists == nil {
		return errors.New("repository playlists should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Likes() Relations {
	return m.likes
}

func (m mngr) Follows() Relations {
	return m.follows
}

func (m mngr) Tracks() Tracks {
	return m.tracks
}

func (m mngr) Playlists() Playlists {
	return m.playlists
}
