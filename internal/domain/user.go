package domain

import (
	"strings"
	"time"
)

const (
	DefaultLastName = "lastName"
	DefaultLocation = "my city"
)

// User is an account that owns job applications.
type User struct {
	ID           string
	Name         string
	LastName     string
	Email        string
	PasswordHash string
	Location     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
