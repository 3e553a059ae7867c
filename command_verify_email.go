package connectify

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Email      string `json:"email"`
	Code       string `json:"code"`
	OnResponse func(resp *AccountProjection)
}

func (e VerifyEmailMessage) Type() string { return "account.verify_email" }

type VerifyEmailHandler struct {
	repo    RepositoryManager
	tokens  TokenService
	machine AccountStateMachine
	mailer  Mailer
	logger  Logger
	sink    ActivitySink
}

func NewVerifyEmailHandler(repo RepositoryManager, tokens TokenService, opts ...VerifyEmailOption) *VerifyEmailHandler {
	h := &VerifyEmailHandler{
		repo:   repo,
		tokens: tokens,
		mailer: NoopMailer{},
		logger: defLogger{},
		sink:   noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.machine == nil {
		h.machine = NewAccountStateMachine(repo.Users(),
			WithStateMachineActivitySink(h.sink),
			WithStateMachineLogger(h.logger))
	}
	return h
}

type VerifyEmailOption func(*VerifyEmailHandler)

func WithVerifyEmailMailer(mailer Mailer) VerifyEmailOption {
	return func(h *VerifyEmailHandler) {
		if mailer != nil {
			h.mailer = mailer
		}
	}
}

func WithVerifyEmailLogger(logger Logger) VerifyEmailOption {
	return func(h *VerifyEmailHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithVerifyEmailActivitySink(sink ActivitySink) VerifyEmailOption {
	return func(h *VerifyEmailHandler) {
		h.sink = normalizeActivitySink(sink)
	}
}

func WithVerifyEmailStateMachine(machine AccountStateMachine) VerifyEmailOption {
	return func(h *VerifyEmailHandler) {
		h.machine = machine
	}
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByIdentifierTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification")
		}

		user.EnsureStatus()
		if user.IsVerified {
			return ErrAlreadyVerified
		}

		if user.VerificationToken == nil || *user.VerificationToken != event.Code {
			return ErrInvalidCode
		}

		if user.VerificationTokenExpiresAt == nil || time.Now().After(*user.VerificationTokenExpiresAt) {
			return ErrCodeExpired
		}

		if !h.machine.CanTransition(user.Status, AccountStatusVerified) {
			return ErrInvalidTransition.WithMetadata(map[string]any{
				"from": user.Status,
				"to":   AccountStatusVerified,
			})
		}

		// The consume update is keyed on the code itself, so a concurrent
		// attempt that already verified the account finds no row here.
		user, err = h.repo.Users().ConsumeVerificationTokenTx(ctx, tx, user.ID, event.Code)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidCode
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification code")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	token, err := h.tokens.Generate(NewUserIdentity(user))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session credential")
	}

	h.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventEmailVerified,
		UserID:     user.ID.String(),
		FromStatus: AccountStatusPending,
		ToStatus:   AccountStatusVerified,
	})

	go func() {
		if err := h.mailer.SendWelcomeEmail(user.Email, user.Username); err != nil {
			h.logger.Error("welcome email failed for %s: %v", user.Email, err)
		}
	}()

	if event.OnResponse != nil {
		event.OnResponse(NewAccountProjection(user, token))
	}

	return nil
}

func (h *VerifyEmailHandler) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := normalizeActivitySink(h.sink).Record(ctx, event); err != nil {
		h.logger.Warn("verify email activity sink error: %v", err)
	}
}
