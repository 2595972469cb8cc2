// Package vision calls an OpenAI-compatible chat-completions API with a meal
// image and returns the model's raw reply.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey is returned before any request is made when no API key
	// is configured.
	ErrMissingAPIKey = errors.New("vision API key not configured")

	// ErrRateLimited marks a StatusError for a 429 that outlived all retries.
	ErrRateLimited = errors.New("vision API rate limit exceeded")

	// ErrEmptyReply is returned when the API answers 200 without choices.
	ErrEmptyReply = errors.New("vision API returned no choices")
)

// StatusError is a non-success HTTP response from the API.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vision API error: %d - %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Is lets errors.Is(err, ErrRateLimited) match an exhausted 429.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// Options configures a Client. Temperature and MaxRetries are used as given,
// so zero means greedy sampling and no retries; start from DefaultOptions to
// get the hosted settings. The other fields fall back to their defaults when
// zero.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64

	// MaxRetries is how many times a 429 is retried; attempt n+1 waits
	// n*RetryDelay.
	MaxRetries int
	RetryDelay time.Duration

	HTTPClient *http.Client
}

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.3
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = time.Second
)

// DefaultOptions returns the settings the service runs with when nothing is
// configured. APIKey is left empty.
func DefaultOptions() Options {
	return Options{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		MaxRetries:  DefaultMaxRetries,
		RetryDelay:  DefaultRetryDelay,
	}
}

// Client sends meal images to the chat-completions endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	maxRetries  int
	retryDelay  time.Duration
	http        *http.Client

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Client. A missing API key is not an error here; Analyze
// reports it so the server can start and answer with a configuration error.
func New(opts Options) *Client {
	c := &Client{
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		http:        opts.HTTPClient,
		sleep:       sleepContext,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxTokens == 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.retryDelay == 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model returns the model identifier sent upstream.
func (c *Client) Model() string {
	return c.model
}

// Reply is the model's answer for one image.
type Reply struct {
	// Text is the assistant message content, unparsed.
	Text string
	// Attempts is the number of HTTP requests made, including retries.
	Attempts int
}

// Analyze sends imageURL (a data URL or an https URL) with the analysis
// instructions and returns the assistant's reply text.
func (c *Client) Analyze(ctx context.Context, imageURL string) (*Reply, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(c.newRequest(imageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.post(ctx, body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusOK {
			text, err := decodeReply(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}
			return &Reply{Text: text, Attempts: attempt}, nil
		}

		statusErr := readStatusError(resp)
		if resp.StatusCode != http.StatusTooManyRequests || attempt > c.maxRetries {
			return nil, statusErr
		}

		delay := time.Duration(attempt) * c.retryDelay
		slog.Warn("Vision API rate limited, retrying",
			"attempt", attempt,
			"delay", delay,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("waiting to retry: %w", err)
		}
	}
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	return resp, nil
}

func readStatusError(resp *http.Response) *StatusError {
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		b = nil
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(b),
	}
}

func decodeReply(r io.Reader) (string, error) {
	var cr chatResponse
	if err := json.NewDecoder(r).Decode(&cr); err != nil {
		return "", fmt.Errorf("failed to decode vision API response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return cr.Choices[0].Message.Content, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
