package connectify

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// LoginMessage carries a username-or-email identifier plus the candidate
// password.
type LoginMessage struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	OnResponse func(resp *LoginResponse)
}

func (e LoginMessage) Type() string { return "account.login" }

// LoginResponse carries the outcome of a credential check. Token is empty
// when the account exists but is not yet verified: the caller gets the
// projection so the client can route to the verification screen, but no
// session is established.
type LoginResponse struct {
	Account  *AccountProjection
	Token    string
	Verified bool
}

type LoginHandler struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
	sink   ActivitySink
}

func NewLoginHandler(repo RepositoryManager, tokens TokenService, opts ...LoginOption) *LoginHandler {
	h := &LoginHandler{
		repo:   repo,
		tokens: tokens,
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

type LoginOption func(*LoginHandler)

func WithLoginLogger(logger Logger) LoginOption {
	return func(h *LoginHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithLoginActivitySink(sink ActivitySink) LoginOption {
	return func(h *LoginHandler) {
		h.sink = normalizeActivitySink(sink)
	}
}

func (h *LoginHandler) Execute(ctx context.Context, event LoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during login",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginHandler) execute(ctx context.Context, event LoginMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByIdentifier(ctx, event.Identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for login")
	}

	user.EnsureStatus()
	if user.Status == AccountStatusDisabled {
		h.recordActivity(ctx, user.ID.String(), ActivityEventLoginFailure, map[string]any{
			"reason": "account disabled",
		})
		return ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(event.Password, user.PasswordHash); err != nil {
		h.recordActivity(ctx, user.ID.String(), ActivityEventLoginFailure, map[string]any{
			"reason": "password mismatch",
		})
		return ErrInvalidCredentials
	}

	resp := &LoginResponse{Verified: user.IsVerified}

	if user.IsVerified {
		token, err := h.tokens.Generate(NewUserIdentity(user))
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session credential")
		}
		resp.Token = token
		h.recordActivity(ctx, user.ID.String(), ActivityEventLoginSuccess, nil)
	}

	resp.Account = NewAccountProjection(user, resp.Token)

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *LoginHandler) recordActivity(ctx context.Context, userID string, eventType ActivityEventType, metadata map[string]any) {
	err := normalizeActivitySink(h.sink).Record(ctx, ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.logger.Warn("login activity sink error: %v", err)
	}
}
