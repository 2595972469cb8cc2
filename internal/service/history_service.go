package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/calculator"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/middleware"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage"
)

// HistoryService serves a user's saved analyses.
type HistoryService struct {
	store        storage.AnalysisStore
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger

	now func() time.Time
}

// Summary windows, in days.
const (
	DefaultSummaryDays = 7
	MaxSummaryDays     = 90
)

func NewHistoryService(store storage.AnalysisStore, defaultLimit, maxLimit int, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		store:        store,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
		now:          time.Now,
	}
}

// List returns the caller's records, newest first. A non-positive limit
// selects the default; larger limits are clamped to the maximum.
func (s *HistoryService) List(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, auth.ErrMissingToken
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	records, err := s.store.ListAnalyses(ctx, userID, limit)
	if err != nil {
		s.logger.Error("Failed to list analyses", "user_id", userID, "error", err)
		return nil, err
	}
	return records, nil
}

// Get returns one of the caller's records or storage.ErrNotFound.
func (s *HistoryService) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, auth.ErrMissingToken
	}
	return s.store.GetAnalysis(ctx, userID, id)
}

// Summary totals the caller's meals over the last days calendar days in loc,
// today included.
func (s *HistoryService) Summary(ctx context.Context, days int, loc *time.Location) (*calculator.Summary, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, auth.ErrMissingToken
	}

	if days <= 0 {
		days = DefaultSummaryDays
	}
	if days > MaxSummaryDays {
		days = MaxSummaryDays
	}
	if loc == nil {
		loc = time.UTC
	}

	y, m, d := s.now().In(loc).Date()
	since := time.Date(y, m, d-(days-1), 0, 0, 0, 0, loc)

	records, err := s.store.ListAnalysesSince(ctx, userID, since.Unix())
	if err != nil {
		s.logger.Error("Failed to list analyses for summary", "user_id", userID, "error", err)
		return nil, err
	}
	return calculator.Summarize(records, since, loc), nil
}
