// Package postgres implements storage.Store on a pgx connection pool for
// hosted deployments.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	db *pgxpool.Pool
}

// Connect opens a pool for databaseURL, installs the query tracer and runs
// migrations.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.ConnConfig.Tracer = &tracer{}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) CreateAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO food_analyses
		 (id, user_id, image_url, food_name, is_healthy, health_reason, calories, carbs, protein, fat, health_tip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
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

func (s *Store) ListAnalyses(ctx context.Context, userID string, limit int) ([]*models.AnalysisRecord, error) {
	return s.queryAnalyses(ctx,
		selectAnalysis+" WHERE user_id = $1 ORDER BY created_at DESC, seq DESC LIMIT $2",
		userID, limit,
	)
}

func (s *Store) ListAnalysesSince(ctx context.Context, userID string, since int64) ([]*models.AnalysisRecord, error) {
	return s.queryAnalyses(ctx,
		selectAnalysis+" WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at DESC, seq DESC",
		userID, since,
	)
}

func (s *Store) queryAnalyses(ctx context.Context, query string, args ...any) ([]*models.AnalysisRecord, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanAnalysis)
	if err != nil {
		return nil, fmt.Errorf("failed to scan analyses: %w", err)
	}
	if records == nil {
		records = []*models.AnalysisRecord{}
	}
	return records, nil
}

func (s *Store) GetAnalysis(ctx context.Context, userID, id string) (*models.AnalysisRecord, error) {
	rows, err := s.db.Query(ctx, selectAnalysis+" WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	record, err := pgx.CollectExactlyOneRow(rows, scanAnalysis)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return record, nil
}

func scanAnalysis(row pgx.CollectableRow) (*models.AnalysisRecord, error) {
	r := &models.AnalysisRecord{}
	err := row.Scan(
		&r.ID, &r.UserID, &r.ImageURL, &r.FoodName, &r.IsHealthy, &r.HealthReason,
		&r.Calories, &r.Carbs, &r.Protein, &r.Fat, &r.HealthTip, &r.CreatedAt,
	)
	return r, err
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", strings.ToLower(email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, created_at, updated_at
		 FROM users WHERE `+column+` = $1`,
		value,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return user, nil
}
