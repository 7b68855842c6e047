// Package common contains shared constants and sentinel errors used across
// auctionsite components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrNameInUse        = errors.New("name already in use")
	ErrForeignKey       = errors.New("referenced entity does not exist")
	ErrConcurrentChange = errors.New("concurrent modification")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Validation errors.
	ErrInvalidArgument = errors.New("invalid argument")

	// Session / auth errors.
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")
	ErrInvalidToken   = errors.New("invalid token")

	// Domain-rule errors.
	ErrInvalidOperation = errors.New("invalid operation")
	ErrTimeMachine      = errors.New("end time precedes current time")
	ErrUserIsWinning    = errors.New("user is winning a live auction")
)
