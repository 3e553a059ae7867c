package connectify

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Relations is an idempotent actor→target relation store. Likes and follows
// are the two instances; both are a composite-key pair table underneath.
type Relations interface {
	Toggle(ctx context.Context, actor, target uuid.UUID) (bool, error)
	ToggleTx(ctx context.Context, tx bun.IDB, actor, target uuid.UUID) (bool, error)

	Exists(ctx context.Context, actor, target uuid.UUID) (bool, error)
	ExistsTx(ctx context.Context, tx bun.IDB, actor, target uuid.UUID) (bool, error)

	// CountByActor counts relations originating from the actor
	// (likes given, accounts followed).
	CountByActor(ctx context.Context, actor uuid.UUID) (int, error)
	// CountByTarget counts relations pointing at the target
	// (likes received, followers).
	CountByTarget(ctx context.Context, target uuid.UUID) (int, error)

	// TargetIDs lists every target the actor relates to, newest first.
	TargetIDs(ctx context.Context, actor uuid.UUID) ([]uuid.UUID, error)
}

type relations[T any] struct {
	db      *bun.DB
	newPair func(actor, target uuid.UUID) *T
	colA    string
	colB    string
}

// NewLikesRepository stores user→track likes.
func NewLikesRepository(db *bun.DB) Relations {
	return &relations[Like]{
		db: db,
		newPair: func(actor, target uuid.UUID) *Like {
			return &Like{UserID: actor, TrackID: target}
		},
		colA: "user_id",
		colB: "track_id",
	}
}

// NewFollowsRepository stores follower→following edges.
func NewFollowsRepository(db *bun.DB) Relations {
	return &relations[Follow]{
		db: db,
		newPair: func(actor, target uuid.UUID) *Follow {
			return &Follow{FollowerID: actor, FollowingID: target}
		},
		colA: "follower_id",
		colB: "following_id",
	}
}

func (r *relations[T]) Toggle(ctx context.Context, actor, target uuid.UUID) (bool, error) {
	return r.ToggleTx(ctx, r.db, actor, target)
}

// ToggleTx flips the relation and reports the new state. Delete first: rows
// affected means the relation was on and is now off. Otherwise create; a
// unique violation means a concurrent request already created the row, which
// lands on the same final state.
func (r *relations[T]) ToggleTx(ctx context.Context, tx bun.IDB, actor, target uuid.UUID) (bool, error) {
	res, err := tx.NewDelete().
		Model((*T)(nil)).
		Where("?TableAlias."+r.colA+" = ?", actor).
		Where("?TableAlias."+r.colB+" = ?", target).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return false, nil
	}

	record := r.newPair(actor, target)
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return true, nil
		}
		return false, err
	}

	return true, nil
}

func (r *relations[T]) Exists(ctx context.Context, actor, target uuid.UUID) (bool, error) {
	return r.ExistsTx(ctx, r.db, actor, target)
}

func (r *relations[T]) ExistsTx(ctx context.Context, tx bun.IDB, actor, target uuid.UUID) (bool, error) {
	return tx.NewSelect().
		Model((*T)(nil)).
		Where("?TableAlias."+r.colA+" = ?", actor).
		Where("?TableAlias."+r.colB+" = ?", target).
		Exists(ctx)
}

func (r *relations[T]) CountByActor(ctx context.Context, actor uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*T)(nil)).
		Where("?TableAlias."+r.colA+" = ?", actor).
		Count(ctx)
}

func (r *relations[T]) CountByTarget(ctx context.Context, target uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*T)(nil)).
		Where("?TableAlias."+r.colB+" = ?", target).
		Count(ctx)
}

func (r *relations[T]) TargetIDs(ctx context.Context, actor uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.NewSelect().
		Model((*T)(nil)).
		Column(r.colB).
		Where("?TableAlias."+r.colA+" = ?", actor).
		Order("created_at DESC").
		Scan(ctx, &ids)

	if err != nil {
		return nil, err
	}

	return ids, nil
}
