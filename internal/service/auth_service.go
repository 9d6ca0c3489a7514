package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/spec-kit/job-tracker/internal/auth"
	"github.com/spec-kit/job-tracker/internal/config"
	"github.com/spec-kit/job-tracker/internal/domain"
	"github.com/spec-kit/job-tracker/internal/events"
	"github.com/spec-kit/job-tracker/internal/repository"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

const errInvalidCredentials = "invalid credentials"

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	users          repository.UserRepository
	tokenMgr       *auth.TokenManager
	dispatcher     events.Dispatcher
	bcryptCost     int
	minPasswordLen int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string
	LastName string
	Email    string
	Password string
	Location string
}

// UpdateUserInput is the profile update payload. Every field is required.
type UpdateUserInput struct {
	Name     string
	LastName string
	Email    string
	Location string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	minLen := cfg.MinPasswordLength
	if minLen <= 0 {
		minLen = 6
	}
	return &AuthService{
		users:          deps.UserRepo,
		tokenMgr:       auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		dispatcher:     deps.Dispatcher,
		bcryptCost:     cfg.BcryptCost,
		minPasswordLen: minLen,
	}
}

// Register creates a new account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, domain.Session, error) {
	email, err := parseEmail(in.Email)
	if err != nil {
		return nil, domain.Session{}, err
	}
	if len(in.Password) < s.minPasswordLen {
		return nil, domain.Session{}, apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.minPasswordLen),
			map[string]any{"field": "password"})
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, domain.Session{}, apperrors.NewValidationError(
			fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes),
			map[string]any{"field": "password"})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.Session{}, apperrors.NewConflict("email already in use", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Session{}, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.Session{}, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		LastName:     orDefault(in.LastName, domain.DefaultLastName),
		Email:        email,
		PasswordHash: hash,
		Location:     orDefault(in.Location, domain.DefaultLocation),
	}
	if user.Name == "" {
		user.Name = email[:strings.IndexByte(email, '@')]
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.Session{}, apperrors.NewConflict("email already in use", nil)
		}
		return nil, domain.Session{}, err
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, domain.Session{}, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventUserRegistered,
		ActorID:   user.ID,
		SubjectID: user.ID,
		Payload:   events.UserPayload{Email: user.Email},
	})
	return user, session, nil
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Session{}, apperrors.NewValidationError("email and password required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Session{}, apperrors.NewUnauthorized(errInvalidCredentials)
		}
		return nil, domain.Session{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Session{}, apperrors.NewUnauthorized(errInvalidCredentials)
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, domain.Session{}, err
	}
	return user, session, nil
}

// CurrentUser returns the caller's account.
func (s *AuthService) CurrentUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser replaces the caller's profile fields and issues a fresh session.
func (s *AuthService) UpdateUser(ctx context.Context, identity domain.Identity, in UpdateUserInput) (*domain.User, domain.Session, error) {
	name := strings.TrimSpace(in.Name)
	lastName := strings.TrimSpace(in.LastName)
	location := strings.TrimSpace(in.Location)
	if name == "" || lastName == "" || location == "" || strings.TrimSpace(in.Email) == "" {
		return nil, domain.Session{}, apperrors.NewValidationError("please provide all values", nil)
	}
	email, err := parseEmail(in.Email)
	if err != nil {
		return nil, domain.Session{}, err
	}

	user, err := s.CurrentUser(ctx, identity)
	if err != nil {
		return nil, domain.Session{}, err
	}
	user.Name = name
	user.LastName = lastName
	user.Email = email
	user.Location = location

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, domain.Session{}, apperrors.NewConflict("email already in use", nil)
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.Session{}, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, domain.Session{}, err
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, domain.Session{}, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventUserUpdated,
		ActorID:   user.ID,
		SubjectID: user.ID,
		Payload:   events.UserPayload{Email: user.Email},
	})
	return user, session, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(userID string) (domain.Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(userID)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Token: token, ExpiresAt: exp}, nil
}

func parseEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if email == "" {
		return "", apperrors.NewValidationError("email required", map[string]any{"field": "email"})
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("please provide a valid email", map[string]any{"field": "email"})
	}
	return email, nil
}

func orDefault(val, fallback string) string {
	if v := strings.TrimSpace(val); v != "" {
		return v
	}
	return fallback
}
