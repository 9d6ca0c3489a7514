package service

import (
	"context"
	"strings"
	"testing"

	"github.com/spec-kit/job-tracker/internal/domain"
	"github.com/spec-kit/job-tracker/internal/events"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var published []events.Event
	f.dispatcher.Subscribe(events.EventUserRegistered, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	user, session, err := f.auth.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Name != "ada" || user.LastName != domain.DefaultLastName || user.Location != domain.DefaultLocation {
		t.Fatalf("defaults not applied: %+v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret123" {
		t.Fatal("password not hashed")
	}
	if session.Token == "" || session.ExpiresAt.IsZero() {
		t.Fatalf("no session issued: %+v", session)
	}
	claims, err := f.auth.TokenManager().ParseToken(session.Token)
	if err != nil || claims.UserID() != user.ID {
		t.Fatalf("token does not identify user: %v", err)
	}
	if len(published) != 1 || published[0].SubjectID != user.ID {
		t.Fatalf("expected one registration event, got %v", published)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Password: "secret123"}},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "secret123"}},
		{"display name email", RegisterInput{Email: "Ada <ada@example.com>", Password: "secret123"}},
		{"short password", RegisterInput{Email: "ada@example.com", Password: "123"}},
		{"password over bcrypt limit", RegisterInput{Email: "ada@example.com", Password: strings.Repeat("p", 80)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.auth.Register(context.Background(), tt.in)
			requireCode(t, err, apperrors.CodeValidation)
		})
	}
	if f.users.Calls.Create != 0 {
		t.Fatalf("invalid input reached the store %d times", f.users.Calls.Create)
	}
}

func TestRegisterLongestPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	password := strings.Repeat("p", 72)

	if _, _, err := f.auth.Register(ctx, RegisterInput{Email: "long@example.com", Password: password}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := f.auth.Login(ctx, "long@example.com", password); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestRegisterDuplicateLeavesOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original, _, err := f.auth.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = f.auth.Register(ctx, RegisterInput{Name: "Eve", Email: "ADA@example.com", Password: "other-pass"})
	requireCode(t, err, apperrors.CodeConflict)

	stored, err := f.users.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Name != "Ada" || stored.PasswordHash != original.PasswordHash {
		t.Fatalf("original user modified: %+v", stored)
	}
	if f.users.Calls.Create != 1 {
		t.Fatalf("expected one create, got %d", f.users.Calls.Create)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	identity := f.register(t, "ada@example.com")

	user, session, err := f.auth.Login(ctx, "ADA@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != identity.UserID || session.Token == "" {
		t.Fatalf("unexpected login result %+v", user)
	}

	_, _, err = f.auth.Login(ctx, "ada@example.com", "wrong-pass")
	requireCode(t, err, apperrors.CodeUnauthorized)

	_, _, err = f.auth.Login(ctx, "nobody@example.com", "secret123")
	requireCode(t, err, apperrors.CodeUnauthorized)

	_, _, err = f.auth.Login(ctx, "", "")
	requireCode(t, err, apperrors.CodeValidation)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.register(t, "ada@example.com")
	f.register(t, "eve@example.com")

	user, session, err := f.auth.UpdateUser(ctx, ada, UpdateUserInput{
		Name: "Ada", LastName: "Lovelace", Email: "ada.l@example.com", Location: "London",
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if user.LastName != "Lovelace" || user.Email != "ada.l@example.com" || session.Token == "" {
		t.Fatalf("unexpected update result %+v", user)
	}

	_, _, err = f.auth.UpdateUser(ctx, ada, UpdateUserInput{
		Name: "Ada", LastName: "Lovelace", Email: "eve@example.com", Location: "London",
	})
	requireCode(t, err, apperrors.CodeConflict)

	_, _, err = f.auth.UpdateUser(ctx, ada, UpdateUserInput{Name: "Ada", Email: "ada@example.com"})
	requireCode(t, err, apperrors.CodeValidation)

	_, _, err = f.auth.UpdateUser(ctx, domain.Identity{UserID: "ghost"}, UpdateUserInput{
		Name: "G", LastName: "H", Email: "g@example.com", Location: "x",
	})
	requireCode(t, err, apperrors.CodeUnauthorized)
}
