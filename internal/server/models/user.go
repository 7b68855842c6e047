package models

// User is a registered account of one site; usernames are unique per site.
type User struct {
	ID           int64
	SiteID       int64
	Username     string
	PasswordHash string
}
