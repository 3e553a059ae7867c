package connectify_test

import (
	"testing"

	"github.com/connectify/connectify"
	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings!
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := connectify.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)

			err = connectify.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := connectify.HashPassword(password)
	assert.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  nil,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  connectify.ErrMismatchedHashAndPassword,
		},
		{
			name:     "Garbage hash",
			password: password,
			hash:     "not-a-bcrypt-hash",
			wantErr:  nil, // any error will do, just not a match
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := connectify.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.name == "Matching password" {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRandomPasswordHash(t *testing.T) {
	hash := connectify.RandomPasswordHash()
	assert.NotEmpty(t, hash)

	other := connectify.RandomPasswordHash()
	assert.NotEqual(t, hash, other)
}
