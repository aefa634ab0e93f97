package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashCredential(t *testing.T) {
	hash, err := HashCredential("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, IsHashedCredential(hash))

	assert.NoError(t, VerifyCredential(hash, "password123"))
	assert.ErrorIs(t, VerifyCredential(hash, "wrong"), ErrValidation)

	_, err = HashCredential("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIsHashedCredential(t *testing.T) {
	assert.False(t, IsHashedCredential("password123"))
	assert.False(t, IsHashedCredential(""))
}
