//go:build integration

package session

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return NewManager(client, nil)
}

func TestRateLimit(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	user := "user-" + uuid.NewString()

	for i := 0; i < 3; i++ {
		limited, err := m.RateLimit(ctx, user, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, limited)
	}
	limited, err := m.RateLimit(ctx, user, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, limited)
}

type sink struct {
	mu     sync.Mutex
	events []domain.PoolEvent
}

func (s *sink) PublishPoolEvent(ctx context.Context, event domain.PoolEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestRelayPoolEvents(t *testing.T) {
	m := testManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := &sink{}
	done := make(chan error, 1)
	go func() { done <- m.RelayPoolEvents(ctx, received) }()

	require.Eventually(t, func() bool {
		_ = m.PublishPoolEvent(ctx, domain.PoolEvent{Type: domain.EventFallbackServed, Reason: "no_content"})
		return received.count() > 0
	}, 2*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
