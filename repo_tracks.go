package connectify

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Tracks interface {
	repository.Repository[*Track]

	// Feed lists tracks by the given authors, newest first.
	Feed(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]*Track, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*Track, error)
	SearchByTitle(ctx context.Context, query string, limit, offset int) ([]*Track, error)
	ByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Track, error)
	ByAuthorUsername(ctx context.Context, username string) ([]*Track, error)
	// LikedBy lists the tracks a user has liked, newest like first.
	LikedBy(ctx context.Context, userID uuid.UUID) ([]*Track, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)
}

type tracks struct {
	repository.Repository[*Track]
	db *bun.DB
}

var (
	_ Tracks                        = (*tracks)(nil)
	_ repository.Repository[*Track] = (*tracks)(nil)
)

func NewTracksRepository(db *bun.DB) Tracks {
	repo := repository.NewRepository[*Track](db, repository.ModelHandlers[*Track]{
		NewRecord: func() *Track { return &Track{} },
		GetID: func(t *Track) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Track, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &tracks{
		Repository: repo,
		db:         db,
	}
}

func (a *tracks) Create(ctx context.Context, record *Track, criteria ...repository.InsertCriteria) (*Track, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *tracks) CreateTx(ctx context.Context, tx bun.IDB, record *Track, criteria ...repository.InsertCriteria) (*Track, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *tracks) Feed(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]*Track, error) {
	records := []*Track{}
	if len(authorIDs) == 0 {
		return records, nil
	}

	err := a.db.NewSelect().
		Model(&records).
		Relation("Author").
		Where("?TableAlias.author_id IN (?)", bun.In(authorIDs)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *tracks) ListRecent(ctx context.Context, limit, offset int) ([]*Track, error) {
	records := []*Track{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *tracks) SearchByTitle(ctx context.Context, query string, limit, offset int) ([]*Track, error) {
	records := []*Track{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("Author").
		Where("?TableAlias.title LIKE ?", "%"+query+"%").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *tracks) ByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Track, error) {
	records := []*Track{}
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

func (a *tracks) ByAuthorUsername(ctx context.Context, username string) ([]*Track, error) {
	records := []*Track{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("Author").
		Where("author.username = ?", username).
		Order("trk.created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *tracks) LikedBy(ctx context.Context, userID uuid.UUID) ([]*Track, error) {
	records := []*Track{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("Author").
		Join(`JOIN "likes" AS "lk" ON "lk"."track_id" = "trk"."id"`).
		Where(`"lk"."user_id" = ?`, userID).
		Order("lk.created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *tracks) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return a.db.NewSelect().
		Model((*Track)(nil)).
		Where("?TableAlias.author_id = ?", authorID).
		Count(ctx)
}
