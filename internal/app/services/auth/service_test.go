package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "findy/internal/domain/auth"
	domainuser "findy/internal/domain/user"
	"findy/internal/infra/security"
	"findy/internal/infra/storage/memory"
)

func newTestService() *Service {
	return &Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterParams{
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.Token == "" {
		t.Fatal("register should issue a session token")
	}
	if registered.User.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", registered.User.Email)
	}

	loggedIn, err := svc.Login(ctx, LoginParams{Email: "alice@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Fatal("login resolved a different user")
	}

	resolved, err := svc.ResolveToken(ctx, loggedIn.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != registered.User.ID {
		t.Fatal("token resolved to a different user")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		params RegisterParams
		want   error
	}{
		{"missing email", RegisterParams{Name: "A", Password: "longenough"}, domainuser.ErrEmailRequired},
		{"missing name", RegisterParams{Email: "a@b.com", Password: "longenough"}, domainuser.ErrNameRequired},
		{"short password", RegisterParams{Email: "a@b.com", Name: "A", Password: "short"}, ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.params); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	params := RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"}
	if _, err := svc.Register(ctx, params); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, params); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Fatalf("got %v, want ErrEmailAlreadyUsed", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "wrong password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, LoginParams{Email: "nobody@b.com", Password: "longenough"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	result, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ResolveToken(ctx, result.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("got %v, want ErrSessionNotFound", err)
	}
}

func TestResolveTokenExpiry(t *testing.T) {
	svc := newTestService()
	svc.SessionTTL = time.Millisecond
	ctx := context.Background()
	result, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := svc.ResolveToken(ctx, result.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("expired token resolved: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	result, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	prefs := &domainuser.Preferences{PureVeg: true, NightOwl: true}
	updated, err := svc.UpdateProfile(ctx, result.User.ID, "Alice Renamed", "9999999999", "https://cdn/avatar.png", prefs)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Alice Renamed" || updated.Phone != "9999999999" {
		t.Fatalf("profile not applied: %+v", updated)
	}
	if !updated.Preferences.PureVeg || !updated.Preferences.NightOwl {
		t.Fatal("preferences not applied")
	}
}
