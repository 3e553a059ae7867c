package connectify

import (
	stderrors "errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Domain failure taxonomy. Every value below is surfaced verbatim to the
// caller; anything else coming out of a handler is a wrapped internal fault.
var (
	// ErrAccountNotFound is returned when no account matches the identifier.
	ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
				WithTextCode("NOT_FOUND").
				WithCode(goerrors.CodeNotFound)

	// ErrAlreadyVerified is returned on a verification attempt for a verified account.
	ErrAlreadyVerified = goerrors.New("email is already verified", goerrors.CategoryConflict).
				WithTextCode("ALREADY_VERIFIED").
				WithCode(goerrors.CodeConflict)

	// ErrInvalidCode is returned when the submitted verification code does not match.
	ErrInvalidCode = goerrors.New("invalid verification code", goerrors.CategoryValidation).
			WithTextCode("INVALID_CODE").
			WithCode(goerrors.CodeBadRequest)

	// ErrCodeExpired is returned when the verification code is past its expiry.
	ErrCodeExpired = goerrors.New("verification code has expired", goerrors.CategoryValidation).
			WithTextCode("EXPIRED").
			WithCode(goerrors.CodeBadRequest)

	// ErrInvalidCredentials is returned on a failed password check.
	ErrInvalidCredentials = goerrors.New("incorrect password", goerrors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(goerrors.CodeUnauthorized)

	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = goerrors.New("passwords do not match", goerrors.CategoryValidation).
				WithTextCode("PASSWORD_MISMATCH").
				WithCode(goerrors.CodeBadRequest)

	// ErrInvalidResetToken covers both unknown and expired reset tokens; the
	// two cases are deliberately indistinguishable to the caller.
	ErrInvalidResetToken = goerrors.New("invalid or expired reset token", goerrors.CategoryNotFound).
				WithTextCode("INVALID_OR_EXPIRED_TOKEN").
				WithCode(goerrors.CodeNotFound)

	// ErrUnauthenticated is returned when an engagement action has no resolved actor.
	ErrUnauthenticated = goerrors.New("login or signup first", goerrors.CategoryAuth).
				WithTextCode("UNAUTHENTICATED").
				WithCode(goerrors.CodeUnauthorized)

	// ErrNotTrackAuthor is returned when a delete targets someone else's track.
	ErrNotTrackAuthor = goerrors.New("cannot delete someone else's track", goerrors.CategoryAuthz).
				WithTextCode("NOT_TRACK_AUTHOR").
				WithCode(goerrors.CodeForbidden)
)

// ConflictError reports a signup uniqueness violation, naming the field that
// collided so the caller can render a useful message.
func ConflictError(field string) *goerrors.Error {
	return goerrors.New(field+" is already in use", goerrors.CategoryConflict).
		WithTextCode("CONFLICT").
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"field": field})
}

// Session credential errors. These never escape to API callers: an
// unresolvable credential means an anonymous request, not a failure.
var (
	// ErrNoEmptyString rejects empty input where a value is required
	ErrNoEmptyString = stderrors.New("value should not be an empty string")

	// ErrMismatchedHashAndPassword is the constant-time compare failure
	ErrMismatchedHashAndPassword = stderrors.New("mismatched hash and password")

	// ErrUnableToFindSession is the error when our request has no credential
	ErrUnableToFindSession = stderrors.New("unable to find session")

	// ErrUnableToDecodeSession unable to decode JWT from session credential
	ErrUnableToDecodeSession = stderrors.New("unable to decode session")

	// ErrUnableToMapClaims unable to get claims from token
	ErrUnableToMapClaims = stderrors.New("unable to map claims")
)

// ErrTokenExpired is surfaced by the token service on expired credentials.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is surfaced by the token service on garbage input.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// isUniqueViolation detects a duplicate-key failure from the storage layer.
// A losing concurrent create on a relation pair is benign, not an error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "SQLSTATE 23505") || // postgres
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
