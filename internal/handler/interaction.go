package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zizouhuweidi/slidequiz/internal/auth"
	"github.com/zizouhuweidi/slidequiz/internal/service"
)

// InteractionRecorder stores client-reported interactions
type InteractionRecorder interface {
	Record(ctx context.Context, identity auth.Identity, in service.InteractionInput) error
}

// InteractionHandler handles interaction HTTP requests
type InteractionHandler struct {
	interactions InteractionRecorder
	logger       *slog.Logger
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(interactions InteractionRecorder, logger *slog.Logger) *InteractionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InteractionHandler{interactions: interactions, logger: logger}
}

// Register registers the interaction routes
func (h *InteractionHandler) Register(g *echo.Group) {
	g.POST("/interaction", h.Record)
}

// InteractionRequest represents a reported interaction
type InteractionRequest struct {
	QuestionID string         `json:"questionId" validate:"required"`
	Type       string         `json:"type" validate:"required"`
	Answer     *AnswerRequest `json:"answer"`
}

// AnswerRequest carries the optional answer outcome. TimeSpent is in milliseconds.
type AnswerRequest struct {
	Correct   bool  `json:"correct"`
	TimeSpent int64 `json:"timeSpent" validate:"gte=0"`
}

// Record godoc
// @Summary Record an interaction
// @Tags interactions
// @Accept json
// @Produce json
// @Param interaction body InteractionRequest true "Interaction"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/interaction [post]
func (h *InteractionHandler) Record(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Authentication required",
		})
	}

	var req InteractionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
		})
	}

	in := service.InteractionInput{
		QuestionID: req.QuestionID,
		Type:       req.Type,
	}
	if req.Answer != nil {
		in.Correct = req.Answer.Correct
		in.TimeSpentMs = req.Answer.TimeSpent
	}

	if err := h.interactions.Record(c.Request().Context(), identity, in); err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: validationErr.Error(),
			})
		default:
			h.logger.Error("failed to record interaction", "user_id", identity.UserID, "error", err)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "Internal server error",
			})
		}
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
