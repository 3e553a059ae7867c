package connectify_test

import (
	"context"
	"testing"

	"github.com/connectify/connectify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &connectify.User{ID: uuid.New(), Username: "ada"}

	ctx := connectify.WithContext(context.Background(), user)

	got, ok := connectify.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)

	_, ok = connectify.FromContext(context.Background())
	assert.False(t, ok)
}

func TestActorFromContext(t *testing.T) {
	// Anonymous context resolves to nil.
	assert.Equal(t, uuid.Nil, connectify.ActorFromContext(context.Background()))

	// User takes precedence.
	user := &connectify.User{ID: uuid.New()}
	ctx := connectify.WithContext(context.Background(), user)
	assert.Equal(t, user.ID, connectify.ActorFromContext(ctx))

	// Claims alone also resolve.
	id := uuid.New()
	claims := &connectify.JWTClaims{UID: id.String()}
	ctx = connectify.WithClaimsContext(context.Background(), claims)
	assert.Equal(t, id, connectify.ActorFromContext(ctx))
}
