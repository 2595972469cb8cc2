package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
)

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-123", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	id, err := m.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.UserID != "user-123" {
		t.Errorf("UserID = %q, want user-123", id.UserID)
	}
	if id.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", id.Email)
	}
}

func TestJWTManager_RejectsBadTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-123", Email: "alice@example.com"}

	otherSecret, _ := NewJWTManager("other-secret", time.Hour).Generate(user)

	expiredManager := NewJWTManager("test-secret", time.Hour)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredManager.Generate(user)

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: "alice@example.com"}).
		SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", otherSecret},
		{"expired", expired},
		{"alg none", noneToken},
		{"missing user id", noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(context.Background(), tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
