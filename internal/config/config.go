// Package config reads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type (
	// Config is the complete server configuration.
	Config struct {
		LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
		LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

		Vision  VisionConfig  `envPrefix:"OPENAI_"`
		Auth    AuthConfig    `envPrefix:"AUTH_"`
		S3      S3Config      `envPrefix:"S3_"`
		Server  ServerConfig  `envPrefix:"HTTP_"`
		History HistoryConfig `envPrefix:"HISTORY_"`

		// DATABASE_URL and DB_PATH are unprefixed.
		DB DBConfig
	}

	// VisionConfig configures the upstream chat-completions API.
	VisionConfig struct {
		APIKey      string        `env:"API_KEY"`
		BaseURL     string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
		Model       string        `env:"MODEL" envDefault:"gpt-4o-mini"`
		MaxTokens   int           `env:"MAX_TOKENS" envDefault:"1000"`
		Temperature float64       `env:"TEMPERATURE" envDefault:"0.3"`
		Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
		RetryDelay  time.Duration `env:"RETRY_DELAY" envDefault:"1s"`
		MaxRetries  int           `env:"MAX_RETRIES" envDefault:"3"`
	}

	// DBConfig selects the storage backend. A non-empty URL selects Postgres,
	// otherwise SQLite at Path is used.
	DBConfig struct {
		URL  string `env:"DATABASE_URL"`
		Path string `env:"DB_PATH" envDefault:"./data/foodlens.db"`
	}

	// AuthConfig configures session verification. When OIDCIssuer is set,
	// bearer tokens are verified against that provider; otherwise they are
	// HS256 tokens signed with JWTSecret.
	AuthConfig struct {
		JWTSecret    string        `env:"JWT_SECRET"`
		TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"72h"`
		OIDCIssuer   string        `env:"OIDC_ISSUER"`
		OIDCClientID string        `env:"OIDC_CLIENT_ID"`
	}

	// S3Config configures optional object storage for uploaded images.
	S3Config struct {
		Endpoint  string `env:"ENDPOINT"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"foodlens"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
		PublicURL string `env:"PUBLIC_URL"`
	}

	// ServerConfig configures the HTTP listener.
	ServerConfig struct {
		Port         int           `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"120s"`
		MaxBodyBytes int64         `env:"MAX_BODY_BYTES" envDefault:"20971520"`
		Pprof        bool          `env:"PPROF" envDefault:"false"`
	}

	// HistoryConfig bounds history listings.
	HistoryConfig struct {
		DefaultLimit int `env:"DEFAULT_LIMIT" envDefault:"50"`
		MaxLimit     int `env:"MAX_LIMIT" envDefault:"200"`
	}
)

var ErrNoVerifier = errors.New("either AUTH_JWT_SECRET or AUTH_OIDC_ISSUER must be set")

// DefaultEnvFiles are loaded by Load when no files are given.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Load reads the given dotenv files, skipping missing ones, and parses the
// environment. Variables already set in the process win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("dotenv file not found", "file", f)
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse parses the process environment into a Config.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late. A missing vision
// API key is deliberately not an error here: the analyze endpoint reports it
// per request.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" && c.Auth.OIDCIssuer == "" {
		return ErrNoVerifier
	}
	if c.Auth.OIDCIssuer != "" && c.Auth.OIDCClientID == "" {
		return fmt.Errorf("AUTH_OIDC_CLIENT_ID is required with AUTH_OIDC_ISSUER")
	}
	if c.Vision.MaxRetries < 0 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must not be negative")
	}
	if c.History.DefaultLimit <= 0 || c.History.MaxLimit < c.History.DefaultLimit {
		return fmt.Errorf("invalid history limits: default %d, max %d", c.History.DefaultLimit, c.History.MaxLimit)
	}
	return nil
}

// ObjectStorageEnabled reports whether uploaded images go to object storage.
func (c *Config) ObjectStorageEnabled() bool {
	return c.S3.Endpoint != "" && c.S3.AccessKey != "" && c.S3.SecretKey != ""
}
