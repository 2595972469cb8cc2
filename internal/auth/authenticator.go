package auth

import (
	"context"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
)

// Identity is the caller resolved from a session token. FoodLens reads only
// these two fields from whatever system issued the token.
type Identity struct {
	UserID string
	Email  string
}

// Verifier resolves a bearer token to an Identity. Implementations must be
// safe for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Authenticator manages locally registered accounts. It is only wired when
// tokens are issued by this server rather than an external provider.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
