package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zizouhuweidi/slidequiz/internal/service"
)

// WebhookSecretHeader carries the shared secret on provider webhooks
const WebhookSecretHeader = "X-Webhook-Secret"

// Provider account event types
const (
	eventUserCreated = "user.created"
	eventUserUpdated = "user.updated"
)

// AccountSyncer mirrors provider accounts locally
type AccountSyncer interface {
	Sync(ctx context.Context, account service.ProviderAccount) (string, error)
}

// WebhookHandler handles identity provider webhooks
type WebhookHandler struct {
	accounts AccountSyncer
	secret   string
	logger   *slog.Logger
}

// NewWebhookHandler creates a new webhook handler. An empty secret accepts every request.
func NewWebhookHandler(accounts AccountSyncer, secret string, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{accounts: accounts, secret: secret, logger: logger}
}

// Register registers the webhook routes
func (h *WebhookHandler) Register(g *echo.Group) {
	g.POST("/webhooks/accounts", h.Accounts)
}

// AccountEvent is the provider's user lifecycle event
type AccountEvent struct {
	Type string           `json:"type"`
	Data AccountEventData `json:"data"`
}

// AccountEventData describes the affected provider account
type AccountEventData struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

// EmailAddress is one of the account's addresses
type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// WebhookResponse acknowledges a delivered event
type WebhookResponse struct {
	Received bool `json:"received"`
}

// Accounts godoc
// @Summary Account lifecycle webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param event body AccountEvent true "Provider event"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/webhooks/accounts [post]
func (h *WebhookHandler) Accounts(c echo.Context) error {
	if h.secret != "" {
		got := c.Request().Header.Get(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error: "Invalid webhook secret",
			})
		}
	}

	var event AccountEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
		})
	}

	if event.Type != eventUserCreated && event.Type != eventUserUpdated {
		h.logger.Debug("ignoring account event", "type", event.Type)
		return c.JSON(http.StatusOK, WebhookResponse{Received: true})
	}

	account := service.ProviderAccount{
		ProviderID: event.Data.ID,
		Username:   event.Data.Username,
	}
	if len(event.Data.EmailAddresses) > 0 {
		account.Email = event.Data.EmailAddresses[0].EmailAddress
	}

	if _, err := h.accounts.Sync(c.Request().Context(), account); err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: validationErr.Error(),
			})
		default:
			h.logger.Error("failed to sync account", "provider_id", account.ProviderID, "error", err)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "Internal server error",
			})
		}
	}

	return c.JSON(http.StatusOK, WebhookResponse{Received: true})
}
