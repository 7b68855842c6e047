package models

import "time"

// Auction is a timed English auction with proxy-bid semantics.
//
// Price is the visible clearing price; HighestBid is the winning bidder's
// committed maximum and may exceed Price. Invariants maintained by the
// bidding engine: Price <= HighestBid always, and WinnerID is nil exactly
// until the first accepted bid (while it is nil, Price == HighestBid ==
// the starting price).
type Auction struct {
	ID          int64
	SiteID      int64
	SellerID    int64
	Description string
	EndsOn      time.Time
	Price       float64
	HighestBid  float64
	WinnerID    *int64

	// Version guards read-modify-write cycles on the bid state; every
	// committed update increments it.
	Version int64
}

// Ended reports whether the auction is closed at the given time.
func (a *Auction) Ended(now time.Time) bool {
	return a.EndsOn.Before(now)
}

// HasWinner reports whether any bid has ever been accepted.
func (a *Auction) HasWinner() bool {
	return a.WinnerID != nil
}

// WonBy reports whether userID currently holds the winning bid.
func (a *Auction) WonBy(userID int64) bool {
	return a.WinnerID != nil && *a.WinnerID == userID
}
