package connectify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetUsername() string
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
}

// Identity is the subset of an account a session credential binds.
type Identity interface {
	ID() string
	Username() string
	Email() string
}

// TokenService issues and validates signed session credentials.
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// Mailer is the outbound email collaborator. Every send is best-effort:
// callers log failures and never roll back on them.
type Mailer interface {
	SendVerificationEmail(to, code string) error
	SendWelcomeEmail(to, username string) error
	SendPasswordResetEmail(to, link string) error
	SendResetSuccessEmail(to string) error
}

// AssetStore resolves user-provided media URLs into stored asset URLs.
// The actual upload pipeline lives outside this module.
type AssetStore interface {
	Upload(ctx context.Context, sourceURL string) (string, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetCookieName() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetResetLinkBase() string
}

const (
	// DefaultCookieName is the session cookie the web client expects.
	DefaultCookieName = "__connectify_token"
	// DefaultTokenLookup checks the cookie before falling back to a bearer header.
	DefaultTokenLookup = "cookie:" + DefaultCookieName + ",header:Authorization"
)

// SimpleConfig is a plain struct Config for hosts that do not bring
// their own configuration container.
type SimpleConfig struct {
	SigningKey      string
	SigningMethod   string
	ContextKey      string
	CookieName      string
	TokenExpiration int
	TokenLookup     string
	AuthScheme      string
	Issuer          string
	Audience        []string
	ResetLinkBase   string
}

var _ Config = (*SimpleConfig)(nil)

// NewConfig returns a SimpleConfig with the defaults this service ships with.
func NewConfig(signingKey string) *SimpleConfig {
	return &SimpleConfig{
		SigningKey:      signingKey,
		SigningMethod:   "HS256",
		ContextKey:      "session",
		CookieName:      DefaultCookieName,
		TokenExpiration: 24,
		TokenLookup:     DefaultTokenLookup,
		AuthScheme:      "Bearer",
		Issuer:          "connectify",
	}
}

func (c *SimpleConfig) GetSigningKey() string    { return c.SigningKey }
func (c *SimpleConfig) GetSigningMethod() string { return c.SigningMethod }
func (c *SimpleConfig) GetContextKey() string    { return c.ContextKey }

func (c *SimpleConfig) GetCookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c *SimpleConfig) GetTokenExpiration() int { return c.TokenExpiration }

func (c *SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return DefaultTokenLookup
	}
	return c.TokenLookup
}

func (c *SimpleConfig) GetAuthScheme() string    { return c.AuthScheme }
func (c *SimpleConfig) GetIssuer() string        { return c.Issuer }
func (c *SimpleConfig) GetAudience() []string    { return c.Audience }
func (c *SimpleConfig) GetResetLinkBase() string { return c.ResetLinkBase }

// NoopMailer discards every message. Useful for tests and local bring-up.
type NoopMailer struct{}

var _ Mailer = (*NoopMailer)(nil)

func (NoopMailer) SendVerificationEmail(string, string) error  { return nil }
func (NoopMailer) SendWelcomeEmail(string, string) error       { return nil }
func (NoopMailer) SendPasswordResetEmail(string, string) error { return nil }
func (NoopMailer) SendResetSuccessEmail(string) error          { return nil }

// PassthroughAssetStore returns the source URL untouched.
type PassthroughAssetStore struct{}

var _ AssetStore = (*PassthroughAssetStore)(nil)

func (PassthroughAssetStore) Upload(_ context.Context, sourceURL string) (string, error) {
	return sourceURL, nil
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CONNECTIFY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CONNECTIFY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CONNECTIFY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CONNECTIFY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
