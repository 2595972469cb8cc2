package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/service"
)

// Handler implements the HTTP routes on top of the services.
type Handler struct {
	analyze      *service.AnalyzeService
	history      *service.HistoryService
	accounts     *service.AuthService
	ping         func(ctx context.Context) error
	maxBodyBytes int64
	logger       *slog.Logger
}

type analyzeRequest struct {
	ImageURL string `json:"imageUrl"`
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

const analyzeFailed = "Failed to analyze food image"

// AnalyzeFood handles POST /analyze-food. The body is the analysis itself;
// whether it is the fallback and whether it was saved is reported in headers.
func (h *Handler) AnalyzeFood(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, bindStatus(err), analyzeFailed, fmt.Errorf("invalid request body: %w", err))
		return
	}

	result, err := h.analyze.Analyze(c.Request.Context(), req.ImageURL)
	if err != nil {
		abort(c, statusFor(err), analyzeFailed, err)
		return
	}

	c.Header(HeaderFallback, strconv.FormatBool(result.Fallback))
	c.Header(HeaderPersisted, strconv.FormatBool(result.Persisted))
	c.JSON(http.StatusOK, result.Analysis)
}

// ListHistory handles GET /history?limit=N.
func (h *Handler) ListHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abort(c, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		abort(c, statusFor(err), "Failed to load history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": records})
}

// HistorySummary handles GET /history/summary?days=N&tz=Area/City.
func (h *Handler) HistorySummary(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abort(c, http.StatusBadRequest, "Invalid days", err)
			return
		}
		days = n
	}

	loc := time.UTC
	if tz := c.Query("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			abort(c, http.StatusBadRequest, "Invalid timezone", err)
			return
		}
		loc = l
	}

	summary, err := h.history.Summary(c.Request.Context(), days, loc)
	if err != nil {
		abort(c, statusFor(err), "Failed to load summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetHistory handles GET /history/:id.
func (h *Handler) GetHistory(c *gin.Context) {
	record, err := h.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, statusFor(err), "Failed to load analysis", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, bindStatus(err), "Registration failed", err)
		return
	}

	session, err := h.accounts.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		abort(c, statusFor(err), "Registration failed", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, bindStatus(err), "Login failed", err)
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abort(c, statusFor(err), "Login failed", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.accounts.CurrentUser(c.Request.Context())
	if err != nil {
		abort(c, statusFor(err), "Failed to load user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Health reports whether the backing store answers.
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			abort(c, http.StatusServiceUnavailable, "unhealthy", errors.New("storage unavailable"))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
