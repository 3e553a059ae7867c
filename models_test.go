package connectify_test

import (
	"testing"

	"github.com/connectify/connectify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureStatus(t *testing.T) {
	tests := []struct {
		name string
		user connectify.User
		want connectify.AccountStatus
	}{
		{
			name: "Empty status, unverified",
			user: connectify.User{},
			want: connectify.AccountStatusPending,
		},
		{
			name: "Empty status, verified flag set",
			user: connectify.User{IsVerified: true},
			want: connectify.AccountStatusVerified,
		},
		{
			name: "Existing status untouched",
			user: connectify.User{Status: connectify.AccountStatusDisabled, IsVerified: true},
			want: connectify.AccountStatusDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.user.EnsureStatus()
			assert.Equal(t, tt.want, tt.user.Status)
		})
	}
}

func TestNewAccountProjection(t *testing.T) {
	user := &connectify.User{
		ID:         uuid.New(),
		Username:   "ada",
		FullName:   "Ada Lovelace",
		Email:      "ada@example.com",
		IsVerified: true,
	}

	p := connectify.NewAccountProjection(user, "some.jwt.token")
	require.NotNil(t, p.Token)
	assert.Equal(t, "some.jwt.token", *p.Token)
	assert.Equal(t, user.ID.String(), p.ID)
	assert.True(t, p.IsVerified)

	// Unverified logins carry no credential.
	p = connectify.NewAccountProjection(user, "")
	assert.Nil(t, p.Token)
}
