package common

import "fmt"

// Domain constraints shared by validation at every boundary.
const (
	MinSiteNameLength = 1
	MaxSiteNameLength = 128

	MinUsernameLength = 3
	MaxUsernameLength = 64

	MinPasswordLength = 4

	MinTimezone = -12
	MaxTimezone = 12
)

// ValidateSiteName checks the site name length bounds.
func ValidateSiteName(name string) error {
	if len(name) < MinSiteNameLength || len(name) > MaxSiteNameLength {
		return fmt.Errorf("%w: site name length must be in [%d, %d]",
			ErrInvalidArgument, MinSiteNameLength, MaxSiteNameLength)
	}
	return nil
}

// ValidateUsername checks the username length bounds.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: username length must be in [%d, %d]",
			ErrInvalidArgument, MinUsernameLength, MaxUsernameLength)
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrInvalidArgument, MinPasswordLength)
	}
	return nil
}

// ValidateTimezone checks that tz is a whole-hour UTC offset in [-12, 12].
func ValidateTimezone(tz int) error {
	if tz < MinTimezone || tz > MaxTimezone {
		return fmt.Errorf("%w: timezone must be in [%d, %d]",
			ErrInvalidArgument, MinTimezone, MaxTimezone)
	}
	return nil
}
