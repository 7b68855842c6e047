// Package models defines the value records the auction site operates on.
// Entities never carry storage handles; callers address them through
// (siteID, id) pairs passed to the service layer.
package models

// Site is a tenant: an auction marketplace with its own users, sessions,
// auctions, timezone and bidding rules.
type Site struct {
	ID                       int64
	Name                     string
	Timezone                 int
	SessionExpirationSeconds int
	MinimumBidIncrement      float64
}
