package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage"
)

type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func newTestAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(newMemoryUsers())
	a.cost = bcrypt.MinCost
	return a
}

func TestPasswordAuthenticator_RegisterAndAuthenticate(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	user, err := a.Register(ctx, "  Alice@Example.com ", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected user ID to be generated")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized alice@example.com", user.Email)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in plain text")
	}

	got, err := a.Authenticate(ctx, "ALICE@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Authenticate returned %q, want %q", got.ID, user.ID)
	}

	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Authenticate(ctx, "bob@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestPasswordAuthenticator_RegisterValidation(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	if _, err := a.Register(ctx, "carol@example.com", "", "longenough"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"duplicate email", "carol@example.com", "longenough", ErrEmailExists},
		{"duplicate email different case", "CAROL@example.com", "longenough", ErrEmailExists},
		{"short password", "dave@example.com", "short", ErrWeakPassword},
		{"bad email", "not-an-email", "longenough", ErrInvalidEmail},
		{"display name email", "Eve <eve@example.com>", "longenough", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, "", tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("Register error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPasswordAuthenticator_DefaultDisplayName(t *testing.T) {
	a := newTestAuthenticator()

	user, err := a.Register(context.Background(), "frank@example.com", "   ", "longenough")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.DisplayName != "frank" {
		t.Errorf("DisplayName = %q, want frank", user.DisplayName)
	}
}
