package models

import "time"

// Session is a user's login session. A user holds at most one session at a
// time; its ID is derived from the owning user's id.
type Session struct {
	ID         string
	SiteID     int64
	UserID     int64
	ValidUntil time.Time
}

// Expired reports whether the session is past its validity at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ValidUntil)
}
