package connectify

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Playlists interface {
	repository.Repository[*Playlist]

	ByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Playlist, error)
}

type playlists struct {
	repository.Repository[*Playlist]
	db *bun.DB
}

var (
	_ Playlists                        = (*playlists)(nil)
	_ repository.Repository[*Playlist] = (*playlists)(nil)
)

func NewPlaylistsRepository(db *bun.DB) Playlists {
	repo := repository.NewRepository[*Playlist](db, repository.ModelHandlers[*Playlist]{
		NewRecord: func() *Playlist { return &Playlist{} },
		GetID: func(p *Playlist) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Playlist, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &playlists{
		Repository: repo,
		db:         db,
	}
}

func (a *playlists) Create(ctx context.Context, record *Playlist, criteria ...repository.InsertCriteria) (*Playlist, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *playlists) CreateTx(ctx context.Context, tx bun.IDB, record *Playlist, criteria ...repository.InsertCriteria) (*Playlist, error) {
	if record != nil {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		if record.Visibility == "" {
			record.Visibility = VisibilityPublic
		}
	}
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *playlists) ByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Playlist, error) {
	records := []*Playlist{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.author_id = ?", authorID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
