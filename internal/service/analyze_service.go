package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/extract"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/metrics"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/middleware"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/vision"
)

var ErrMissingImageURL = errors.New("imageUrl is required")

// Vision returns the model's raw reply for an image.
type Vision interface {
	Analyze(ctx context.Context, imageURL string) (*vision.Reply, error)
}

// ImageStore moves an image reference somewhere durable and returns the URL
// to persist.
type ImageStore interface {
	Store(ctx context.Context, userID, imageRef string) (string, error)
}

// Result is the outcome of one analyze call.
type Result struct {
	Analysis *models.Analysis

	// Fallback is set when the reply could not be parsed and Analysis is the
	// placeholder.
	Fallback bool

	// Persisted is set when a history record was written; RecordID is its id.
	Persisted bool
	RecordID  string
}

// AnalyzeService runs the vision, extraction and persistence pipeline.
type AnalyzeService struct {
	vision  Vision
	store   storage.AnalysisStore
	images  ImageStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAnalyzeService creates the pipeline. images and m may be nil.
func NewAnalyzeService(v Vision, store storage.AnalysisStore, images ImageStore, m *metrics.Metrics, logger *slog.Logger) *AnalyzeService {
	return &AnalyzeService{
		vision:  v,
		store:   store,
		images:  images,
		metrics: m,
		logger:  logger,
	}
}

// Analyze sends imageURL to the vision model and returns the extracted
// analysis. Upstream failures are returned as errors. An unparsable reply
// yields the fallback analysis, which is never persisted. A record is written
// only when ctx carries an authenticated user; write failures are logged and
// do not fail the call.
func (s *AnalyzeService) Analyze(ctx context.Context, imageURL string) (*Result, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, ErrMissingImageURL
	}

	reply, err := s.vision.Analyze(ctx, imageURL)
	if err != nil {
		s.metrics.Analysis(metrics.OutcomeError)
		s.logger.Error("Vision analysis failed", "error", err)
		return nil, err
	}
	s.metrics.VisionAttempts(reply.Attempts)

	analysis, ok := extract.Analysis(reply.Text)
	if !ok {
		s.metrics.Analysis(metrics.OutcomeFallback)
		s.logger.Warn("Could not extract analysis from reply, using fallback",
			"reply", truncate(reply.Text, 200),
		)
		return &Result{Analysis: models.FallbackAnalysis(), Fallback: true}, nil
	}
	s.metrics.Analysis(metrics.OutcomeSuccess)

	result := &Result{Analysis: analysis}

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		s.logger.Debug("No authenticated user, analysis not saved", "food", analysis.FoodName)
		return result, nil
	}

	record := models.NewAnalysisRecord(userID, s.storeImage(ctx, userID, imageURL), analysis)
	if err := s.store.CreateAnalysis(ctx, record); err != nil {
		s.metrics.PersistFailed()
		s.logger.Error("Failed to save analysis", "user_id", userID, "error", err)
		return result, nil
	}

	s.metrics.Persisted()
	result.Persisted = true
	result.RecordID = record.ID
	s.logger.Info("Analysis saved", "user_id", userID, "record_id", record.ID, "food", analysis.FoodName)
	return result, nil
}

// storeImage returns the reference to persist, falling back to imageURL when
// object storage is off or the upload fails.
func (s *AnalyzeService) storeImage(ctx context.Context, userID, imageURL string) string {
	if s.images == nil {
		return imageURL
	}
	url, err := s.images.Store(ctx, userID, imageURL)
	if err != nil {
		s.metrics.UploadFailed()
		s.logger.Warn("Failed to upload image, keeping original reference", "user_id", userID, "error", err)
		return imageURL
	}
	return url
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
