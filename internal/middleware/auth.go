// Package middleware holds the gin middleware shared by all routes:
// session resolution, request logging and metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id.UserID)
	return context.WithValue(ctx, EmailKey, id.Email)
}

// bearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or malformed.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a verifiable bearer token and adds
// the caller's identity to the request context.
func RequireAuth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, auth.ErrMissingToken)
			return
		}

		token := bearerToken(header)
		if token == "" {
			abortUnauthorized(c, auth.ErrInvalidToken)
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, auth.ErrInvalidToken)
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is present and valid, but
// lets every request through. An invalid token is treated as anonymous.
func OptionalAuth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			id, err := verifier.Verify(c.Request.Context(), token)
			if err == nil {
				c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
			}
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"details": err.Error(),
	})
}
