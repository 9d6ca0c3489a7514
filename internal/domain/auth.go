package domain

import "time"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
}

// Session is an issued token and its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}
