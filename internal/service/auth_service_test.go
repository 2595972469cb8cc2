package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
)

func newAuthService(t *testing.T) (*AuthService, *auth.JWTManager) {
	t.Helper()
	store := newSQLiteStore(t)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, discardLogger()), jwtManager
}

func TestAuthService_RegisterLoginCurrentUser(t *testing.T) {
	svc, jwtManager := newAuthService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice@example.com", "Alice", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if session.Token == "" || session.User.ID == "" {
		t.Fatalf("incomplete session: %+v", session)
	}

	login, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.ID != session.User.ID {
		t.Errorf("Login user = %s, want %s", login.User.ID, session.User.ID)
	}

	id, err := jwtManager.Verify(ctx, login.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id.UserID != session.User.ID {
		t.Errorf("token user = %s, want %s", id.UserID, session.User.ID)
	}

	me, err := svc.CurrentUser(withUser(session.User.ID))
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if me.DisplayName != "Alice" {
		t.Errorf("DisplayName = %s, want Alice", me.DisplayName)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@example.com", "Bob", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name, email, password string
	}{
		{"empty", "", ""},
		{"wrong password", "bob@example.com", "password124"},
		{"unknown user", "carol@example.com", "password123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.email, tt.password); !errors.Is(err, auth.ErrInvalidCredentials) {
				t.Errorf("Login error = %v, want ErrInvalidCredentials", err)
			}
		})
	}

	if _, err := svc.Register(ctx, "bob@example.com", "Bob", "password123"); !errors.Is(err, auth.ErrEmailExists) {
		t.Errorf("duplicate Register error = %v, want ErrEmailExists", err)
	}
}

func TestAuthService_CurrentUserExternalIdentity(t *testing.T) {
	svc, _ := newAuthService(t)

	me, err := svc.CurrentUser(withUser("oidc-subject"))
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if me.ID != "oidc-subject" || me.Email != "oidc-subject@example.com" {
		t.Errorf("unexpected user: %+v", me)
	}

	if _, err := svc.CurrentUser(context.Background()); !errors.Is(err, auth.ErrMissingToken) {
		t.Errorf("anonymous CurrentUser error = %v, want ErrMissingToken", err)
	}
}
