// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
)

// ErrNotFound is returned when a requested row does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("not found")

// AnalysisStore persists analysis records and serves them back as history.
// Implementations exist for SQLite (single node) and PostgreSQL (hosted).
type AnalysisStore interface {
	// CreateAnalysis persists a new record. ID and CreatedAt are assigned by
	// the store when empty.
	CreateAnalysis(ctx context.Context, record *models.AnalysisRecord) error

	// ListAnalyses returns the user's records, newest first, at most limit rows.
	ListAnalyses(ctx context.Context, userID string, limit int) ([]*models.AnalysisRecord, error)

	// ListAnalysesSince returns every record of the user created at or after
	// since (Unix seconds), newest first.
	ListAnalysesSince(ctx context.Context, userID string, since int64) ([]*models.AnalysisRecord, error)

	// GetAnalysis returns one record owned by userID, or ErrNotFound.
	GetAnalysis(ctx context.Context, userID, id string) (*models.AnalysisRecord, error)
}

// UserStore persists locally registered accounts. Lookups return ErrNotFound
// for unknown users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	AnalysisStore
	UserStore

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
