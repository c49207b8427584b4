// Package generation talks to the remote question generation service.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
	"github.com/zizouhuweidi/slidequiz/internal/validation"
)

// Failure kinds. Every error returned by Generate wraps exactly one of these.
var (
	ErrTimeout         = errors.New("generation timed out")
	ErrUnreachable     = errors.New("generation service unreachable")
	ErrInvalidResponse = errors.New("generation service returned an invalid response")
)

const generatePath = "/generate"

// Client invokes the generation service. A call is a single bounded attempt; it never retries.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &Client{http: http, logger: logger}
}

type generateRequest struct {
	Text string `json:"text"`
}

// Generate asks the service for questions about text. The returned questions
// carry no id; ids are assigned when they are persisted.
func (c *Client) Generate(ctx context.Context, text string, timeout time.Duration) ([]domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{Text: text}).
		Post(generatePath)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode())
	}

	var candidates []domain.Question
	if err := json.Unmarshal(resp.Body(), &candidates); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	questions := make([]domain.Question, 0, len(candidates))
	for i, candidate := range candidates {
		candidate = validation.NormalizeQuestion(candidate)
		candidate.ID = ""
		if err := validation.ValidateQuestion(candidate); err != nil {
			c.logger.Warn("dropping invalid generated question", "index", i, "error", err)
			continue
		}
		questions = append(questions, candidate)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no usable questions in %d candidates", ErrInvalidResponse, len(candidates))
	}

	return questions, nil
}

// classifyTransportError maps a failed round trip to a failure kind. Caller
// cancellation is reported as a timeout so the kinds stay exhaustive.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnreachable, err)
}

// Kind returns the failure kind wrapped by err, or nil
func Kind(err error) error {
	for _, kind := range []error{ErrTimeout, ErrUnreachable, ErrInvalidResponse} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
