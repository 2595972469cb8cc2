package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFileToDataURL(t *testing.T) {
	path := writeFile(t, "meal.bin", pngBytes)

	got, err := FileToDataURL(path)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes), got)

	_, err = FileToDataURL(writeFile(t, "notes.txt", []byte("grocery list")))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = FileToDataURL(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestAnalyzeFile(t *testing.T) {
	var gotAuth, gotImage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze-food", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotImage = body["imageUrl"]

		w.Header().Set("X-Analysis-Fallback", "false")
		w.Header().Set("X-Analysis-Persisted", "true")
		w.Write([]byte(`{"foodName":"Samosas","isHealthy":false,"healthReason":"fried","nutrition":{"calories":520},"healthTip":"bake"}`))
	}))
	defer srv.Close()

	path := writeFile(t, "samosa.png", pngBytes)
	c := New(srv.URL+"/", "token-123")

	result, err := c.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.True(t, strings.HasPrefix(gotImage, "data:image/png;base64,"))
	assert.Equal(t, "Samosas", result.FoodName)
	assert.True(t, result.Persisted)
	assert.False(t, result.Fallback)
	assert.True(t, strings.HasPrefix(result.DisplayURL, "file://"))
	assert.True(t, strings.HasSuffix(result.DisplayURL, "/samosa.png"))
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"rate limited", 500, `{"error":"Failed to analyze food image","details":"vision API error: 429 - slow down"}`, MsgRateLimited},
		{"unauthorized", 401, `{"error":"Unauthorized","details":"invalid or expired token"}`, MsgUnauthorized},
		{"bad request", 400, `{"error":"Failed to analyze food image","details":"imageUrl is required"}`, MsgBadRequest},
		{"server error", 500, `{"error":"Failed to analyze food image","details":"vision API key not configured"}`, MsgGeneric},
		{"not json", 502, `<html>bad gateway</html>`, MsgGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "").Analyze(context.Background(), "data:image/png;base64,AAAA")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.want, FriendlyMessage(err))
		})
	}
}

func TestFriendlyMessage(t *testing.T) {
	assert.Equal(t, "", FriendlyMessage(nil))
	assert.Equal(t, MsgNotImage, FriendlyMessage(ErrNotImage))
	assert.Equal(t, MsgGeneric, FriendlyMessage(errors.New("connection refused")))
	assert.Equal(t, MsgRateLimited, FriendlyMessage(errors.New("status 429")))
}

func TestHistoryAndLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"tok","user":{"id":"u1","email":"alice@example.com"}}`))
		case "/history":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.Write([]byte(`{"analyses":[{"id":"r1","food_name":"Salad","is_healthy":true,"calories":150,"created_at":1700000000}]}`))
		case "/history/summary":
			assert.Equal(t, "3", r.URL.Query().Get("days"))
			assert.Equal(t, "Europe/Berlin", r.URL.Query().Get("tz"))
			w.Write([]byte(`{"days":[{"date":"2024-03-10","meals":1,"calories":150}],"meals":1,"calories":150,"average_daily_calories":150}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	session, err := c.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.User.ID)

	c = New(srv.URL, session.Token)
	records, err := c.History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Salad", records[0].FoodName)
	assert.Equal(t, 150.0, records[0].Calories)

	summary, err := c.Summary(context.Background(), 3, "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Meals)
	require.Len(t, summary.Days, 1)
	assert.Equal(t, "2024-03-10", summary.Days[0].Date)
}
