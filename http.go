package connectify

import (
	"context"
	"time"

	"github.com/connectify/connectify/middleware/sessionware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator owns the cookie/bearer transport for session
// credentials: issuing the cookie, clearing it, resolving the current
// session, and guarding routes.
type RouteAuthenticator struct {
	tokens         TokenService
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
	ErrorHandler   func(c router.Context, err error) error
}

func NewRouteAuthenticator(tokens TokenService, cfg Config) (*RouteAuthenticator, error) {
	if tokens == nil {
		return nil, errors.New("token service is required", errors.CategoryBadInput)
	}

	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteAuthenticator{
		tokens:         tokens,
		cfg:            cfg,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// ProtectedRoute rejects requests without a valid session credential.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.MakeClientRouteAuthErrorHandler(false)
	}
	return sessionware.New(sessionware.Config{
		ErrorHandler:    errorHandler,
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		AuthScheme:      a.cfg.GetAuthScheme(),
		TokenValidator:  sessionValidator{tokens: a.tokens},
		ContextEnricher: enrichContextWithClaims,
	})
}

// OptionalRoute resolves the session when present and passes anonymous
// requests through untouched.
func (a *RouteAuthenticator) OptionalRoute() router.MiddlewareFunc {
	return sessionware.New(sessionware.Config{
		Optional:        true,
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		AuthScheme:      a.cfg.GetAuthScheme(),
		TokenValidator:  sessionValidator{tokens: a.tokens},
		ContextEnricher: enrichContextWithClaims,
	})
}

// IssueSession sets the session cookie on the response.
func (a *RouteAuthenticator) IssueSession(ctx router.Context, token string) {
	a.setCookieToken(ctx, token, a.cookieDuration)
}

// ClearSession expires the session cookie. Always succeeds.
func (a *RouteAuthenticator) ClearSession(ctx router.Context) {
	a.cookieDel(ctx, a.cfg.GetCookieName())
}

// CurrentSession resolves the request's credential (cookie first, bearer
// header fallback) into a Session. Any failure yields an anonymous request.
func (a *RouteAuthenticator) CurrentSession(ctx router.Context) (Session, bool) {
	raw, err := sessionware.ExtractRawTokenFromContext(
		ctx,
		sessionware.GetExtractors(a.cfg.GetTokenLookup(), a.cfg.GetAuthScheme()),
	)
	if err != nil || raw == "" {
		return nil, false
	}

	claims, err := a.tokens.Validate(raw)
	if err != nil {
		a.Logger.Debug("session credential rejected: %v", err)
		return nil, false
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		return nil, false
	}

	return session, true
}

func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Path:     "/",
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.JSON(richErr.Code, errorBody(richErr))
}

func errorBody(err *errors.Error) map[string]any {
	body := map[string]any{
		"message": err.Message,
	}
	if err.TextCode != "" {
		body["code"] = err.TextCode
	}
	if len(err.Metadata) > 0 {
		body["details"] = err.Metadata
	}
	return map[string]any{"error": body}
}

// sessionValidator bridges the TokenService into the middleware's local
// validator interface.
type sessionValidator struct {
	tokens TokenService
}

func (v sessionValidator) Validate(tokenString string) (sessionware.AuthClaims, error) {
	claims, err := v.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// enrichContextWithClaims propagates validated claims into the standard
// context so command handlers can resolve the actor.
func enrichContextWithClaims(ctx context.Context, claims sessionware.AuthClaims) context.Context {
	if authClaims, ok := claims.(AuthClaims); ok {
		return WithClaimsContext(ctx, authClaims)
	}
	return ctx
}
