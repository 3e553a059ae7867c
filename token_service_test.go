package connectify_test

import (
	"testing"
	"time"

	"github.com/connectify/connectify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser() *connectify.User {
	return &connectify.User{
		ID:         uuid.New(),
		Username:   "ada",
		FullName:   "Ada Lovelace",
		Email:      "ada@example.com",
		IsVerified: true,
		Status:     connectify.AccountStatusVerified,
	}
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := connectify.NewTokenService([]byte("test-signing-key"), 24, "connectify", nil, nil)
	user := newTestUser()

	token, err := svc.Generate(connectify.NewUserIdentity(user))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, user.ID.String(), claims.Subject())
	assert.Equal(t, "ada", claims.Username())
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.Expires(), time.Minute)
}

func TestTokenServiceRejectsWrongKey(t *testing.T) {
	issuer := connectify.NewTokenService([]byte("key-one"), 24, "connectify", nil, nil)
	verifier := connectify.NewTokenService([]byte("key-two"), 24, "connectify", nil, nil)

	token, err := issuer.Generate(connectify.NewUserIdentity(newTestUser()))
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	assert.True(t, connectify.IsMalformedError(err))
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	svc := connectify.NewTokenService([]byte("test-signing-key"), -1, "connectify", nil, nil)

	token, err := svc.Generate(connectify.NewUserIdentity(newTestUser()))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, connectify.IsTokenExpiredError(err))
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	svc := connectify.NewTokenService([]byte("test-signing-key"), 24, "connectify", nil, nil)

	_, err := svc.Validate("not.a.token")
	require.Error(t, err)
	assert.True(t, connectify.IsMalformedError(err))
}

func TestSignClaimsStampsTokenID(t *testing.T) {
	svc := connectify.NewTokenService([]byte("test-signing-key"), 24, "connectify", nil, nil)
	user := newTestUser()

	token, err := svc.Generate(connectify.NewUserIdentity(user))
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	jwtClaims, ok := claims.(*connectify.JWTClaims)
	require.True(t, ok)
	assert.NotEmpty(t, jwtClaims.RegisteredClaims.ID)
}
