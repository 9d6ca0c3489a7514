package dto

import (
	"time"

	"github.com/spec-kit/job-tracker/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Location string `json:"location"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest payload for profile updates.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Location string `json:"location"`
}

// UserResponse is the public view of a user; it never carries the password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Location  string       `json:"location"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email,
		Location:  u.Location,
		CreatedAt: u.CreatedAt,
	}
}

// NewAuthResponse maps a user and session.
func NewAuthResponse(u *domain.User, session domain.Session) AuthResponse {
	return AuthResponse{
		User:      NewUserResponse(u),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Location:  u.Location,
	}
}
