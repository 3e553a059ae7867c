package connectify

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RelationKind selects which engagement relation a toggle targets.
type RelationKind = string

const (
	RelationLike   RelationKind = "like"
	RelationFollow RelationKind = "follow"
)

type ToggleRelationMessage struct {
	Kind       RelationKind `json:"kind"`
	ActorID    uuid.UUID    `json:"actor_id"`
	TargetID   uuid.UUID    `json:"target_id"`
	OnResponse func(active bool)
}

func (e ToggleRelationMessage) Type() string { return "engagement.toggle" }

type ToggleRelationHandler struct {
	repo   RepositoryManager
	logger Logger
	sink   ActivitySink
}

func NewToggleRelationHandler(repo RepositoryManager, opts ...ToggleRelationOption) *ToggleRelationHandler {
	h := &ToggleRelationHandler{
		repo:   repo,
		logger: defLogger{},
		sink:   noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

type ToggleRelationOption func(*ToggleRelationHandler)

func WithToggleLogger(logger Logger) ToggleRelationOption {
	return func(h *ToggleRelationHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithToggleActivitySink(sink ActivitySink) ToggleRelationOption {
	return func(h *ToggleRelationHandler) {
		h.sink = normalizeActivitySink(sink)
	}
}

func (h *ToggleRelationHandler) Execute(ctx context.Context, event ToggleRelationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during engagement toggle",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ToggleRelationHandler) execute(ctx context.Context, event ToggleRelationMessage) error {
	if event.ActorID == uuid.Nil {
		return ErrUnauthenticated
	}

	relations, err := h.relationsFor(event.Kind)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var active bool

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		active, err = relations.ToggleTx(ctx, tx, event.ActorID, event.TargetID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to toggle engagement relation")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "engagement toggle transaction failed")
	}

	h.recordActivity(ctx, event, active)

	if event.OnResponse != nil {
		event.OnResponse(active)
	}

	return nil
}

func (h *ToggleRelationHandler) relationsFor(kind RelationKind) (Relations, error) {
	switch kind {
	case RelationLike:
		return h.repo.Likes(), nil
	case RelationFollow:
		return h.repo.Follows(), nil
	default:
		return nil, goerrors.New("unknown engagement relation", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"kind": kind})
	}
}

func (h *ToggleRelationHandler) recordActivity(ctx context.Context, event ToggleRelationMessage, active bool) {
	err := normalizeActivitySink(h.sink).Record(ctx, ActivityEvent{
		EventType: ActivityEventEngagementToggled,
		Actor:     ActorRef{ID: event.ActorID.String(), Type: "user"},
		UserID:    event.ActorID.String(),
		Metadata: map[string]any{
			"kind":   event.Kind,
			"target": event.TargetID.String(),
			"active": active,
		},
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.logger.Warn("engagement toggle activity sink error: %v", err)
	}
}
