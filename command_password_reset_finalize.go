package connectify

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	OnResponse      func(success bool)
}

func (p FinalizePasswordResetMessage) Type() string { return "account.password_reset_finalize" }

type FinalizePasswordResetHandler struct {
	repo   RepositoryManager
	mailer Mailer
	logger Logger
	sink   ActivitySink
}

func NewFinalizePasswordResetHandler(repo RepositoryManager, opts ...PasswordResetOption) *FinalizePasswordResetHandler {
	h := &FinalizePasswordResetHandler{
		repo:   repo,
		mailer: NoopMailer{},
		logger: defLogger{},
		sink:   noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt.applyFinalize(h)
		}
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	if event.Password != event.ConfirmPassword {
		return ErrPasswordMismatch
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByResetTokenTx(ctx, tx, event.Token)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidResetToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		if user.ResetPasswordTokenExpires == nil || time.Now().After(*user.ResetPasswordTokenExpires) {
			return ErrInvalidResetToken
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		// Keyed on the token: a replayed link finds no row and fails here.
		user, err = h.repo.Users().ConsumeResetTokenTx(ctx, tx, event.Token, hash)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidResetToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume reset token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	go func() {
		if err := h.mailer.SendResetSuccessEmail(user.Email); err != nil {
			h.logger.Error("reset success email failed for %s: %v", user.Email, err)
		}
	}()

	h.recordActivity(ctx, user.ID.String())

	if event.OnResponse != nil {
		event.OnResponse(true)
	}

	return nil
}

func (h *FinalizePasswordResetHandler) recordActivity(ctx context.Context, userID string) {
	err := normalizeActivitySink(h.sink).Record(ctx, ActivityEvent{
		EventType:  ActivityEventPasswordResetSuccess,
		UserID:     userID,
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.logger.Warn("password reset activity sink error: %v", err)
	}
}
