package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zizouhuweidi/slidequiz/internal/auth"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
	"github.com/zizouhuweidi/slidequiz/internal/repository/memory"
	"github.com/zizouhuweidi/slidequiz/internal/service"
)

type fakeFeed struct {
	batch    []domain.Question
	err      error
	identity auth.Identity
	deadline bool
}

func (f *fakeFeed) GetNextBatch(ctx context.Context, identity auth.Identity) ([]domain.Question, error) {
	f.identity = identity
	_, f.deadline = ctx.Deadline()
	return f.batch, f.err
}

type fakeLimiter struct {
	limited bool
	err     error
	keys    []string
}

func (l *fakeLimiter) RateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.limited, l.err
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

func serve(e *echo.Echo, method, target, body string, identity *auth.Identity, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	if identity != nil {
		e.Pre(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				auth.WithIdentity(c, *identity)
				return next(c)
			}
		})
	}
	e.ServeHTTP(rec, req)
	return rec
}

var caller = &auth.Identity{UserID: "user_1", Email: "ada@example.com"}

func feedEcho(feed FeedProvider, opts FeedHandlerOptions) *echo.Echo {
	e := newEcho()
	NewFeedHandler(feed, opts, nil).Register(e.Group("/api"))
	return e
}

func TestFeedNext(t *testing.T) {
	feed := &fakeFeed{batch: []domain.Question{{ID: "q1", Type: domain.QuestionTypeTrueFalse, Prompt: "Is water wet?"}}}
	rec := serve(feedEcho(feed, FeedHandlerOptions{RequestTimeout: time.Second}), http.MethodGet, "/api/feed/next", "", caller, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"q1","type":"true_false","question":"Is water wet?","explanation":"","learning_objective":"","key_concept":"","bloom_level":"","difficulty":0}]`, rec.Body.String())
	assert.Equal(t, "user_1", feed.identity.UserID)
	assert.True(t, feed.deadline)
}

func TestFeedNextRequiresIdentity(t *testing.T) {
	rec := serve(feedEcho(&fakeFeed{}, FeedHandlerOptions{}), http.MethodGet, "/api/feed/next", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFeedNextInternalError(t *testing.T) {
	feed := &fakeFeed{err: service.ErrPersistenceFailed}
	rec := serve(feedEcho(feed, FeedHandlerOptions{}), http.MethodGet, "/api/feed/next", "", caller, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestFeedNextRateLimited(t *testing.T) {
	limiter := &fakeLimiter{limited: true}
	rec := serve(feedEcho(&fakeFeed{}, FeedHandlerOptions{Limiter: limiter, RateLimit: 1}), http.MethodGet, "/api/feed/next", "", caller, nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, []string{"user_1"}, limiter.keys)
}

func TestFeedNextLimiterFailsOpen(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	feed := &fakeFeed{batch: []domain.Question{}}
	rec := serve(feedEcho(feed, FeedHandlerOptions{Limiter: limiter, RateLimit: 1}), http.MethodGet, "/api/feed/next", "", caller, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func interactionEcho(store *memory.Store) *echo.Echo {
	e := newEcho()
	NewInteractionHandler(service.NewInteractionService(store), nil).Register(e.Group("/api"))
	return e
}

func TestInteractionRecord(t *testing.T) {
	store := memory.NewStore()
	body := `{"questionId":"q1","type":"answered","answer":{"correct":true,"timeSpent":1500}}`
	rec := serve(interactionEcho(store), http.MethodPost, "/api/interaction", body, caller, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	events := store.Interactions()
	require.Len(t, events, 1)
	assert.Equal(t, "user_1", events[0].UserID)
	assert.True(t, events[0].Correct)
	assert.Equal(t, int64(1500), events[0].TimeSpentMs)
}

func TestInteractionRecordWithoutAnswer(t *testing.T) {
	store := memory.NewStore()
	rec := serve(interactionEcho(store), http.MethodPost, "/api/interaction", `{"questionId":"q1","type":"viewed"}`, caller, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	events := store.Interactions()
	require.Len(t, events, 1)
	assert.False(t, events[0].Correct)
	assert.Zero(t, events[0].TimeSpentMs)
}

func TestInteractionRecordBadRequest(t *testing.T) {
	cases := map[string]string{
		"missing question": `{"type":"viewed"}`,
		"missing type":     `{"questionId":"q1"}`,
		"negative time":    `{"questionId":"q1","type":"answered","answer":{"timeSpent":-5}}`,
		"not json":         `{"questionId":`,
		"blank type":       `{"questionId":"q1","type":"   "}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := memory.NewStore()
			rec := serve(interactionEcho(store), http.MethodPost, "/api/interaction", body, caller, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, store.Interactions())
		})
	}
}

func webhookEcho(store *memory.Store, secret string) *echo.Echo {
	e := newEcho()
	NewWebhookHandler(service.NewAccountService(store), secret, nil).Register(e.Group("/api"))
	return e
}

func TestWebhookCreatesUser(t *testing.T) {
	store := memory.NewStore()
	body := `{"type":"user.created","data":{"id":"user_9","email_addresses":[{"email_address":"grace@example.com"}]}}`
	rec := serve(webhookEcho(store, "s3cret"), http.MethodPost, "/api/webhooks/accounts", body, nil, map[string]string{WebhookSecretHeader: "s3cret"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())

	user, err := store.GetByProviderID(context.Background(), "user_9")
	require.NoError(t, err)
	assert.Equal(t, "grace", user.Username)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	store := memory.NewStore()
	rec := serve(webhookEcho(store, ""), http.MethodPost, "/api/webhooks/accounts", `{"type":"session.created","data":{}}`, nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	store := memory.NewStore()
	body := `{"type":"user.created","data":{"id":"user_9","email_addresses":[{"email_address":"grace@example.com"}]}}`
	rec := serve(webhookEcho(store, "s3cret"), http.MethodPost, "/api/webhooks/accounts", body, nil, map[string]string{WebhookSecretHeader: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, err := store.GetByProviderID(context.Background(), "user_9")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestWebhookRejectsMissingEmail(t *testing.T) {
	rec := serve(webhookEcho(memory.NewStore(), ""), http.MethodPost, "/api/webhooks/accounts", `{"type":"user.updated","data":{"id":"user_9"}}`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/health", Health)
	rec := serve(e, http.MethodGet, "/health", "", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"slidequiz-backend"}`, rec.Body.String())
}
