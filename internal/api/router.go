// Package api exposes the FoodLens HTTP interface on gin.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/metrics"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/middleware"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/service"
)

const (
	HeaderFallback  = "X-Analysis-Fallback"
	HeaderPersisted = "X-Analysis-Persisted"
)

// Options wires the router.
type Options struct {
	Analyze  *service.AnalyzeService
	History  *service.HistoryService
	Accounts *service.AuthService
	Verifier auth.Verifier

	// LocalAccounts mounts /auth/register and /auth/login. It is off when
	// sessions come from an external identity provider.
	LocalAccounts bool

	// Ping reports backend health for GET /health.
	Ping func(ctx context.Context) error

	Metrics      *metrics.Metrics
	MaxBodyBytes int64
	Pprof        bool
	Logger       *slog.Logger
}

// NewRouter builds the engine with CORS, logging, metrics and all routes.
func NewRouter(opts Options) *gin.Engine {
	h := &Handler{
		analyze:      opts.Analyze,
		history:      opts.History,
		accounts:     opts.Accounts,
		ping:         opts.Ping,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       opts.Logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig()))
	router.Use(middleware.RequestLogger())
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Preflights carrying an Origin are answered by the CORS middleware;
	// every other OPTIONS request gets the same empty 200.
	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/health", h.Health)
	router.POST("/analyze-food", middleware.OptionalAuth(opts.Verifier), h.AnalyzeFood)

	history := router.Group("/history", middleware.RequireAuth(opts.Verifier))
	history.GET("", h.ListHistory)
	history.GET("/summary", h.HistorySummary)
	history.GET("/:id", h.GetHistory)

	authGroup := router.Group("/auth")
	if opts.LocalAccounts {
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
	authGroup.GET("/me", middleware.RequireAuth(opts.Verifier), h.Me)

	if opts.Pprof {
		pprof.Register(router)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "Not found", Details: c.Request.URL.Path})
	})

	return router
}

// corsConfig allows any origin and answers preflight requests with an
// empty 200.
func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"authorization", "x-client-info", "apikey", "content-type"},
		ExposeHeaders:             []string{HeaderFallback, HeaderPersisted},
		OptionsResponseStatusCode: http.StatusOK,
	}
}
