package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/middleware"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage/sqlite"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/vision"
)

const samosaReply = "```json\n" + `{"foodName":"Samosas","isHealthy":false,"healthReason":"Deep fried pastry","nutrition":{"calories":520,"carbs":48,"protein":9,"fat":32,"fiber":4,"sugar":3,"sodium":700},"healthTip":"Bake them instead","portionSize":"4 pieces","ingredients":["flour","potato","peas"],"allergens":["gluten"],"meme":"I samosa-d my diet goodbye"}` + "\n```"

const testImage = "data:image/jpeg;base64,AAAA"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withUser(userID string) context.Context {
	return middleware.WithIdentity(context.Background(), &auth.Identity{UserID: userID, Email: userID + "@example.com"})
}

// fakeVision replies with a fixed text or error and counts calls.
type fakeVision struct {
	reply    string
	attempts int
	err      error
	calls    int
}

func (v *fakeVision) Analyze(_ context.Context, _ string) (*vision.Reply, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	attempts := v.attempts
	if attempts == 0 {
		attempts = 1
	}
	return &vision.Reply{Text: v.reply, Attempts: attempts}, nil
}

// recordingStore captures inserts instead of writing them.
type recordingStore struct {
	mu      sync.Mutex
	inserts []*models.AnalysisRecord
	err     error
}

func (s *recordingStore) CreateAnalysis(_ context.Context, record *models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	record.ID = "rec-1"
	s.inserts = append(s.inserts, record)
	return nil
}

func (s *recordingStore) ListAnalyses(context.Context, string, int) ([]*models.AnalysisRecord, error) {
	return nil, errors.New("not implemented")
}

func (s *recordingStore) ListAnalysesSince(context.Context, string, int64) ([]*models.AnalysisRecord, error) {
	return nil, errors.New("not implemented")
}

func (s *recordingStore) GetAnalysis(context.Context, string, string) (*models.AnalysisRecord, error) {
	return nil, errors.New("not implemented")
}

type fakeImages struct {
	url   string
	err   error
	calls int
}

func (f *fakeImages) Store(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.url, f.err
}

func newSQLiteStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
