package connectify

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrTrackNotFound is returned when no track matches the id.
var ErrTrackNotFound = goerrors.New("track not found", goerrors.CategoryNotFound).
	WithTextCode("NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

type CreateTrackMessage struct {
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Duration      string    `json:"duration"`
	AudioFileURL  string    `json:"audio_file_url"`
	CoverImageURL string    `json:"cover_image_url"`
	AuthorID      uuid.UUID `json:"author_id"`
	OnResponse    func(track *Track)
}

func (e CreateTrackMessage) Type() string { return "track.create" }

type DeleteTrackMessage struct {
	TrackID    uuid.UUID `json:"track_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	OnResponse func(success bool)
}

func (e DeleteTrackMessage) Type() string { return "track.delete" }

type TrackHandler struct {
	repo   RepositoryManager
	assets AssetStore
	logger Logger
}

func NewTrackHandler(repo RepositoryManager, opts ...TrackOption) *TrackHandler {
	h := &TrackHandler{
		repo:   repo,
		assets: PassthroughAssetStore{},
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

type TrackOption func(*TrackHandler)

func WithTrackAssetStore(store AssetStore) TrackOption {
	return func(h *TrackHandler) {
		if store != nil {
			h.assets = store
		}
	}
}

func WithTrackLogger(logger Logger) TrackOption {
	return func(h *TrackHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func (h *TrackHandler) ExecuteCreate(ctx context.Context, event CreateTrackMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during track creation",
		)
	default:
		return h.executeCreate(ctx, event)
	}
}

func (h *TrackHandler) executeCreate(ctx context.Context, event CreateTrackMessage) error {
	if event.AuthorID == uuid.Nil {
		return ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	audioURL, err := h.assets.Upload(ctx, event.AudioFileURL)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store audio file")
	}

	coverURL := event.CoverImageURL
	if coverURL != "" {
		if coverURL, err = h.assets.Upload(ctx, event.CoverImageURL); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store cover image")
		}
	}

	track := &Track{
		Title:         event.Title,
		Artist:        event.Artist,
		Duration:      event.Duration,
		AudioFileURL:  audioURL,
		CoverImageURL: coverURL,
		AuthorID:      event.AuthorID,
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if track, err = h.repo.Tracks().CreateTx(ctx, tx, track); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create track")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "track creation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(track)
	}

	return nil
}

func (h *TrackHandler) ExecuteDelete(ctx context.Context, event DeleteTrackMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during track deletion",
		)
	default:
		return h.executeDelete(ctx, event)
	}
}

func (h *TrackHandler) executeDelete(ctx context.Context, event DeleteTrackMessage) error {
	if event.ActorID == uuid.Nil {
		return ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		track, err := h.repo.Tracks().GetByIdentifierTx(ctx, tx, event.TrackID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrTrackNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve track")
		}

		if track.AuthorID != event.ActorID {
			return ErrNotTrackAuthor
		}

		if err := h.repo.Tracks().DeleteTx(ctx, tx, track); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete track")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "track deletion transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(true)
	}

	return nil
}
