package connectify

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// InitializePasswordResetMessage carries a username-or-email identifier.
type InitializePasswordResetMessage struct {
	Identifier string `json:"identifier"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "account.password_reset" }

type InitializePasswordResetResponse struct {
	Email   string
	Link    string
	Success bool
}

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	config Config
	mailer Mailer
	logger Logger
	sink   ActivitySink
}

func NewInitializePasswordResetHandler(repo RepositoryManager, config Config, opts ...PasswordResetOption) *InitializePasswordResetHandler {
	h := &InitializePasswordResetHandler{
		repo:   repo,
		config: config,
		mailer: NoopMailer{},
		logger: defLogger{},
		sink:   noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt.applyInitialize(h)
		}
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	user := &User{}
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var token string

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByIdentifierTx(ctx, tx, event.Identifier)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		token, err = NewResetToken()
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint reset token")
		}

		// The token lands in storage before the mail attempt so a delivered
		// link is always redeemable.
		expiresAt := time.Now().Add(ResetTokenTTL)
		if err := h.repo.Users().SetResetTokenTx(ctx, tx, user.ID, token, expiresAt); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	resp.Email = user.Email
	resp.Link = resetLink(h.config.GetResetLinkBase(), token)

	go func() {
		if err := h.mailer.SendPasswordResetEmail(user.Email, resp.Link); err != nil {
			h.logger.Error("password reset email failed for %s: %v", user.Email, err)
		}
	}()

	h.recordActivity(ctx, user.ID.String())

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *InitializePasswordResetHandler) recordActivity(ctx context.Context, userID string) {
	err := normalizeActivitySink(h.sink).Record(ctx, ActivityEvent{
		EventType:  ActivityEventPasswordResetRequest,
		UserID:     userID,
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.logger.Warn("password reset activity sink error: %v", err)
	}
}

func resetLink(base, token string) string {
	base = strings.TrimSuffix(base, "/")
	return fmt.Sprintf("%s/reset-password/%s", base, token)
}

// PasswordResetOption configures the initialize and finalize handlers.
type PasswordResetOption interface {
	applyInitialize(*InitializePasswordResetHandler)
	applyFinalize(*FinalizePasswordResetHandler)
}

type passwordResetOption struct {
	initialize func(*InitializePasswordResetHandler)
	finalize   func(*FinalizePasswordResetHandler)
}

func (o passwordResetOption) applyInitialize(h *InitializePasswordResetHandler) {
	if o.initialize != nil {
		o.initialize(h)
	}
}

func (o passwordResetOption) applyFinalize(h *FinalizePasswordResetHandler) {
	if o.finalize != nil {
		o.finalize(h)
	}
}

func WithPasswordResetMailer(mailer Mailer) PasswordResetOption {
	return passwordResetOption{
		initialize: func(h *InitializePasswordResetHandler) {
			if mailer != nil {
				h.mailer = mailer
			}
		},
		finalize: func(h *FinalizePasswordResetHandler) {
			if mailer != nil {
				h.mailer = mailer
			}
		},
	}
}

func WithPasswordResetLogger(logger Logger) PasswordResetOption {
	return passwordResetOption{
		initialize: func(h *InitializePasswordResetHandler) {
			if logger != nil {
				h.logger = logger
			}
		},
		finalize: func(h *FinalizePasswordResetHandler) {
			if logger != nil {
				h.logger = logger
			}
		},
	}
}

func WithPasswordResetActivitySink(sink ActivitySink) PasswordResetOption {
	return passwordResetOption{
		initialize: func(h *InitializePasswordResetHandler) {
			h.sink = normalizeActivitySink(sink)
		},
		finalize: func(h *FinalizePasswordResetHandler) {
			h.sink = normalizeActivitySink(sink)
		},
	}
}
