package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidesa/internal/auth"
)

func TestNewResetSecret(t *testing.T) {
	a, err := auth.NewResetSecret()
	require.NoError(t, err)
	b, err := auth.NewResetSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64) // 32 random bytes, hex encoded
	assert.NotEqual(t, a, b)
}

func TestHashResetSecret(t *testing.T) {
	secret, err := auth.NewResetSecret()
	require.NoError(t, err)

	h1 := auth.HashResetSecret(secret)
	h2 := auth.HashResetSecret(secret)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, secret, h1)
	assert.Len(t, h1, 64)
}
