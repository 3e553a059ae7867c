package connectify_test

import (
	"strconv"
	"testing"

	"github.com/connectify/connectify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationCode(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 200; i++ {
		code, err := connectify.NewVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)

		seen[code] = true
	}

	// 200 draws from a 900k space collapsing to a handful of values would
	// mean the generator is broken.
	assert.Greater(t, len(seen), 150)
}

func TestNewResetToken(t *testing.T) {
	token, err := connectify.NewResetToken()
	require.NoError(t, err)

	// 20 random bytes, hex encoded
	assert.Len(t, token, 40)
	assert.Regexp(t, "^[0-9a-f]+$", token)

	other, err := connectify.NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
