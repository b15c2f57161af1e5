package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	require.True(t, VerifyPassword(hash, "secret1"))
}

func TestVerifyPassword_SingleCharMutation(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)

	for _, mutated := range []string{"Secret1", "secret2", "secret", "secret1 "} {
		require.False(t, VerifyPassword(hash, mutated), "mutation %q must not verify", mutated)
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	require.False(t, VerifyPassword("not-a-bcrypt-hash", "secret1"))
	require.False(t, VerifyPassword("", "secret1"))
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("secret1", 0)
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, "secret1"))
}
