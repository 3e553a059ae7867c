package connectify

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type SignupMessage struct {
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(email string)
}

func (e SignupMessage) Type() string { return "account.signup" }

type SignupHandler struct {
	repo   RepositoryManager
	mailer Mailer
	logger Logger
}

func NewSignupHandler(repo RepositoryManager, mailer Mailer, logger Logger) *SignupHandler {
	if mailer == nil {
		mailer = NoopMailer{}
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &SignupHandler{
		repo:   repo,
		mailer: mailer,
		logger: logger,
	}
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetByUsernameOrEmailTx(ctx, tx, event.Username, event.Email)
		if err == nil {
			return ConflictError(collidingField(existing, event.Email))
		}
		if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		code, err := NewVerificationCode()
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint verification code")
		}
		expiresAt := time.Now().Add(VerificationTokenTTL)

		user.PasswordHash = hash
		user.Email = event.Email
		user.FullName = event.FullName
		user.Username = getUsername(event.Username, event.Email)
		user.Status = AccountStatusPending
		user.VerificationToken = &code
		user.VerificationTokenExpiresAt = &expiresAt
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup transaction failed")
	}

	// Account is committed at this point; a failed send must not undo it.
	go func() {
		if user.VerificationToken == nil {
			return
		}
		if err := h.mailer.SendVerificationEmail(user.Email, *user.VerificationToken); err != nil {
			h.logger.Error("signup verification email failed for %s: %v", user.Email, err)
		}
	}()

	if event.OnResponse != nil {
		event.OnResponse(user.Email)
	}

	return nil
}

func collidingField(existing *User, email string) string {
	if existing != nil && strings.EqualFold(existing.Email, email) {
		return "email"
	}
	return "username"
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
