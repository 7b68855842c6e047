// Package auth signs session ids into JWTs at the HTTP boundary. The core
// services only ever see raw session ids; the token wrapper exists so the
// facade can hand clients something tamper-proof and self-expiring.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkuznecov/auctionsite/internal/common"
)

// Claims carries the site and session the token stands for.
type Claims struct {
	jwt.RegisteredClaims
	SiteID    int64  `json:"site_id"`
	SessionID string `json:"session_id"`
}

// GenerateToken signs an HS256 token for the session.
func GenerateToken(siteID int64, sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SiteID:    siteID,
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and returns the embedded claims.
// Anything malformed, forged or expired yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
