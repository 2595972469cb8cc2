package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/api"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/config"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/imagestore"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/metrics"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/service"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage/postgres"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage/sqlite"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/vision"
	"github.com/0xkrishu/meal-snap-ai-guide/pkg/logging"
)

const shutdownTimeout = 15 * time.Second

var envFiles = flag.StringSliceP("env-file", "e", config.DefaultEnvFiles, "dotenv files to load before reading the environment")

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logging.SetupJSON(os.Stdout, level)
	} else {
		logging.SetupWithLevel(level)
	}
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	verifier, jwtManager, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}
	localAccounts := jwtManager != nil

	var images service.ImageStore
	if cfg.ObjectStorageEnabled() {
		uploader, err := imagestore.NewFromConfig(cfg.S3)
		if err != nil {
			return err
		}
		if err := uploader.EnsureBucket(ctx); err != nil {
			return err
		}
		images = uploader
		slog.Info("Object storage enabled", "endpoint", cfg.S3.Endpoint, "bucket", cfg.S3.Bucket)
	}

	visionClient := vision.New(vision.Options{
		APIKey:      cfg.Vision.APIKey,
		BaseURL:     cfg.Vision.BaseURL,
		Model:       cfg.Vision.Model,
		MaxTokens:   cfg.Vision.MaxTokens,
		Temperature: cfg.Vision.Temperature,
		MaxRetries:  cfg.Vision.MaxRetries,
		RetryDelay:  cfg.Vision.RetryDelay,
		HTTPClient:  &http.Client{Timeout: cfg.Vision.Timeout},
	})
	if !visionClient.Configured() {
		slog.Warn("OPENAI_API_KEY is not set; analyze requests will fail")
	}

	logger := slog.Default()
	m := metrics.New()

	accounts := service.NewAuthService(nil, nil, store, logger)
	if localAccounts {
		accounts = service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger)
	}

	router := api.NewRouter(api.Options{
		Analyze:       service.NewAnalyzeService(visionClient, store, images, m, logger),
		History:       service.NewHistoryService(store, cfg.History.DefaultLimit, cfg.History.MaxLimit, logger),
		Accounts:      accounts,
		Verifier:      verifier,
		LocalAccounts: localAccounts,
		Ping:          store.Ping,
		Metrics:       m,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		Pprof:         cfg.Server.Pprof,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting",
			"address", srv.Addr,
			"model", visionClient.Model(),
			"local_accounts", localAccounts,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore picks Postgres when DATABASE_URL is set and SQLite otherwise.
func openStore(ctx context.Context, cfg config.DBConfig) (storage.Store, error) {
	if cfg.URL != "" {
		store, err := postgres.Connect(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", "postgres")
		return store, nil
	}

	store, err := sqlite.New(cfg.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.Path)
	return store, nil
}

// newVerifier returns the session verifier. An OIDC issuer takes precedence
// over a JWT secret; the JWT manager is non-nil only when this server issues
// its own tokens.
func newVerifier(ctx context.Context, cfg config.AuthConfig) (auth.Verifier, *auth.JWTManager, error) {
	if cfg.OIDCIssuer != "" {
		v, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Verifying sessions with OIDC provider", "issuer", cfg.OIDCIssuer)
		return v, nil, nil
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	return jwtManager, jwtManager, nil
}
