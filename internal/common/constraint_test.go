package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateSiteName(t *testing.T) {
	require.NoError(t, ValidateSiteName("market"))
	require.NoError(t, ValidateSiteName("a"))
	require.ErrorIs(t, ValidateSiteName(""), ErrInvalidArgument)
	require.ErrorIs(t, ValidateSiteName(strings.Repeat("x", MaxSiteNameLength+1)), ErrInvalidArgument)
}

func TestValidateUsername(t *testing.T) {
	require.NoError(t, ValidateUsername("bob"))
	require.ErrorIs(t, ValidateUsername("ab"), ErrInvalidArgument)
	require.ErrorIs(t, ValidateUsername(strings.Repeat("u", MaxUsernameLength+1)), ErrInvalidArgument)
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("s3cr"))
	require.ErrorIs(t, ValidatePassword("abc"), ErrInvalidArgument)
}

func TestValidateTimezone(t *testing.T) {
	for _, tz := range []int{-12, 0, 12} {
		require.NoError(t, ValidateTimezone(tz))
	}
	require.ErrorIs(t, ValidateTimezone(-13), ErrInvalidArgument)
	require.ErrorIs(t, ValidateTimezone(13), ErrInvalidArgument)
}
