package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/auctionsite/internal/common"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(7, "42", secret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.SiteID)
	require.Equal(t, "42", claims.SessionID)
}

func TestParseToken_WrongKey(t *testing.T) {
	token, err := GenerateToken(7, "42", []byte("right-key"), time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("wrong-key"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken(7, "42", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.token", []byte("test-secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
