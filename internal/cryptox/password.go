// Package cryptox implements password hashing for auctionsite accounts using
// argon2id. Hashes are stored as "hex(salt):hex(digest)" so the salt travels
// with the digest.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mkuznecov/auctionsite/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

func deriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keySize)
}

// HashPassword derives an argon2id digest for password under a fresh random
// salt and returns the encoded hash.
func HashPassword(password string) (string, error) {
	salt, err := common.GenerateRandByteArray(saltSize)
	if err != nil {
		return "", err
	}
	digest := deriveKey([]byte(password), salt)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(digest), nil
}

// VerifyPassword reports whether candidate matches the encoded hash.
// Comparison of the derived key is constant-time.
func VerifyPassword(encoded string, candidate string) (bool, error) {
	saltHex, digestHex, ok := strings.Cut(encoded, ":")
	if !ok {
		return false, fmt.Errorf("malformed password hash")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("malformed password salt: %w", err)
	}
	digest, err := hex.DecodeString(digestHex)
	if err != nil {
		return false, fmt.Errorf("malformed password digest: %w", err)
	}
	derived := deriveKey([]byte(candidate), salt)
	return subtle.ConstantTimeCompare(digest, derived) == 1, nil
}
