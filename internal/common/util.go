package common

import (
	"crypto/rand"
	"fmt"
)

// GenerateRandByteArray returns size cryptographically random bytes.
func GenerateRandByteArray(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("error generating random bytes: %w", err)
	}
	return b, nil
}
