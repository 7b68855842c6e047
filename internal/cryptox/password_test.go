package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "hunter22")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword(hash, "hunter23")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, encoded := range []string{"", "nodigest", "zz:zz", "abcd:zz"} {
		_, err := VerifyPassword(encoded, "pw")
		require.Error(t, err, "encoded=%q", encoded)
	}
}
