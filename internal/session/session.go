// Package session keeps cross-instance request state in Redis: per-user
// rate limits and the pool event channel.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

const (
	// Redis key prefixes
	rateLimitPrefix = "ratelimit:feed:"

	// Pub/sub channel carrying pool events between instances
	poolEventsChannel = "pool:events"
)

// Manager handles rate limits and pool event fan-out
type Manager struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewManager creates a new session manager
func NewManager(redis *redis.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{redis: redis, logger: logger}
}

// RateLimit counts a request for userID in a fixed window and reports
// whether the user has exceeded limit
func (m *Manager) RateLimit(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	key := rateLimitPrefix + userID
	count, err := m.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := m.redis.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count > int64(limit), nil
}

// PublishPoolEvent implements domain.EventPublisher over Redis pub/sub
func (m *Manager) PublishPoolEvent(ctx context.Context, event domain.PoolEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal pool event: %w", err)
	}

	if err := m.redis.Publish(ctx, poolEventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish pool event: %w", err)
	}
	return nil
}

// SubscribePoolEvents subscribes to pool events from every instance
func (m *Manager) SubscribePoolEvents(ctx context.Context) *redis.PubSub {
	return m.redis.Subscribe(ctx, poolEventsChannel)
}

// RelayPoolEvents forwards pool events received over Redis to sink until ctx is done
func (m *Manager) RelayPoolEvents(ctx context.Context, sink domain.EventPublisher) error {
	sub := m.SubscribePoolEvents(ctx)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to pool events: %w", err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event domain.PoolEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				m.logger.Warn("dropping malformed pool event", "error", err)
				continue
			}
			if err := sink.PublishPoolEvent(ctx, event); err != nil {
				m.logger.Warn("failed to relay pool event", "type", event.Type, "error", err)
			}
		}
	}
}
