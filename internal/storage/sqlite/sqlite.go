// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateAnalysis persists a new analysis record.
func (s *SQLiteStore) CreateAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO food_analyses
		 (id, user_id, image_url, food_name, is_healthy, health_reason, calories, carbs, protein, fat, health_tip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.ImageURL, record.FoodName, record.IsHealthy,
		record.HealthReason, record.Calories, record.Carbs, record.Protein, record.Fat,
		record.HealthTip, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	return nil
}

const selectAnalysis = `
	SELECT id, user_id, image_url, food_name, is_healthy, health_reason,
	       calories, carbs, protein, fat, health_tip, created_at
	FROM food_analyses`

// ListAnalyses returns the user's records, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, userID string, limit int) ([]*models.AnalysisRecord, error) {
	return s.queryAnalyses(ctx,
		selectAnalysis+" WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		userID, limit,
	)
}

// ListAnalysesSince returns the user's records created at or after since,
// newest first.
func (s *SQLiteStore) ListAnalysesSince(ctx context.Context, userID string, since int64) ([]*models.AnalysisRecord, error) {
	return s.queryAnalyses(ctx,
		selectAnalysis+" WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC, rowid DESC",
		userID, since,
	)
}

func (s *SQLiteStore) queryAnalyses(ctx context.Context, query string, args ...any) ([]*models.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := []*models.AnalysisRecord{}
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return records, nil
}

// GetAnalysis retrieves one record owned by userID.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, userID, id string) (*models.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, selectAnalysis+" WHERE id = ? AND user_id = ?", id, userID)
	record, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return record, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*models.AnalysisRecord, error) {
	r := &models.AnalysisRecord{}
	err := row.Scan(
		&r.ID, &r.UserID, &r.ImageURL, &r.FoodName, &r.IsHealthy, &r.HealthReason,
		&r.Calories, &r.Carbs, &r.Protein, &r.Fat, &r.HealthTip, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}
