package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/middleware"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage"
)

// TokenIssuer signs session tokens for local accounts.
type TokenIssuer interface {
	Generate(user *models.User) (string, error)
}

// Session is a user together with a freshly issued token.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles local account registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        TokenIssuer
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, tokens TokenIssuer, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		tokens:        tokens,
		users:         users,
		logger:        logger,
	}
}

// Register creates a new user account and signs them in.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	s.logger.Info("Register request", "email", email)

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", email, "error", err)
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return &Session{User: user, Token: token}, nil
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	s.logger.Info("Login request", "email", email)

	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// CurrentUser returns the authenticated caller. Identities issued by an
// external provider have no local row and are returned from token claims.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, auth.ErrMissingToken
	}

	if s.users != nil {
		user, err := s.users.GetUserByID(ctx, userID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	return &models.User{ID: userID, Email: middleware.GetEmail(ctx)}, nil
}
