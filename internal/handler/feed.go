package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zizouhuweidi/slidequiz/internal/auth"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// FeedProvider serves question batches
type FeedProvider interface {
	GetNextBatch(ctx context.Context, identity auth.Identity) ([]domain.Question, error)
}

// RateLimiter reports whether key has exceeded limit within window
type RateLimiter interface {
	RateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// FeedHandlerOptions configures FeedHandler. A nil Limiter or a zero
// RateLimit disables rate limiting.
type FeedHandlerOptions struct {
	Limiter        RateLimiter
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
}

// FeedHandler handles feed HTTP requests
type FeedHandler struct {
	feed   FeedProvider
	opts   FeedHandlerOptions
	logger *slog.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feed FeedProvider, opts FeedHandlerOptions, logger *slog.Logger) *FeedHandler {
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{feed: feed, opts: opts, logger: logger}
}

// Register registers the feed routes
func (h *FeedHandler) Register(g *echo.Group) {
	g.GET("/feed/next", h.Next)
}

// Next godoc
// @Summary Next question batch
// @Description Returns the next ordered batch of questions for the caller
// @Tags feed
// @Produce json
// @Success 200 {array} domain.Question
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/feed/next [get]
func (h *FeedHandler) Next(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Authentication required",
		})
	}

	ctx := c.Request().Context()
	if h.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.RequestTimeout)
		defer cancel()
	}

	if h.opts.Limiter != nil && h.opts.RateLimit > 0 {
		limited, err := h.opts.Limiter.RateLimit(ctx, identity.UserID, h.opts.RateLimit, h.opts.RateWindow)
		if err != nil {
			h.logger.Warn("rate limiter unavailable", "user_id", identity.UserID, "error", err)
		} else if limited {
			return c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "Too many requests",
			})
		}
	}

	batch, err := h.feed.GetNextBatch(ctx, identity)
	if err != nil {
		h.logger.Error("failed to serve feed", "user_id", identity.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, batch)
}
