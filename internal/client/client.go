// Package client is the Go client for the FoodLens HTTP API, used by the
// command-line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/calculator"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
)

// APIError is a non-2xx response from the server. Its message embeds the
// status code so FriendlyMessage can classify it.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// AnalysisResult is the server's analysis plus client-side context.
type AnalysisResult struct {
	*models.Analysis

	// DisplayURL points at the original local file.
	DisplayURL string

	// Fallback and Persisted come from the response headers.
	Fallback  bool
	Persisted bool
}

// Session is returned by Login and Register.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the server at baseURL. token may be empty for
// anonymous use.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 3 * time.Minute},
	}
}

// AnalyzeFile encodes the image at path and submits it for analysis.
func (c *Client) AnalyzeFile(ctx context.Context, path string) (*AnalysisResult, error) {
	dataURL, err := FileToDataURL(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	result, err := c.Analyze(ctx, dataURL)
	if err != nil {
		return nil, err
	}
	result.DisplayURL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	return result, nil
}

// Analyze submits an image reference (a data URL or an https URL).
func (c *Client) Analyze(ctx context.Context, imageURL string) (*AnalysisResult, error) {
	var analysis models.Analysis
	resp, err := c.do(ctx, http.MethodPost, "/analyze-food", map[string]string{"imageUrl": imageURL}, &analysis)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{
		Analysis:  &analysis,
		Fallback:  resp.Header.Get("X-Analysis-Fallback") == "true",
		Persisted: resp.Header.Get("X-Analysis-Persisted") == "true",
	}, nil
}

// History lists the signed-in user's saved analyses, newest first. A
// non-positive limit uses the server default.
func (c *Client) History(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	path := "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Analyses []*models.AnalysisRecord `json:"analyses"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Analyses, nil
}

// Summary fetches meal totals for the last days days, grouped by calendar
// day in the IANA zone tz. Zero values use the server defaults.
func (c *Client) Summary(ctx context.Context, days int, tz string) (*calculator.Summary, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	if tz != "" {
		q.Set("tz", tz)
	}
	path := "/history/summary"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var summary calculator.Summary
	if _, err := c.do(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password, "displayName": displayName}
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		var eb struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Details = eb.Details
		}
		return resp, apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp, nil
}
