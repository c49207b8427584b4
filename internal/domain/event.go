package domain

import (
	"context"
	"time"
)

// Pool event types
const (
	EventQuestionsGenerated = "questions_generated"
	EventFallbackServed     = "fallback_served"
)

// PoolEvent describes a change in the question pool worth telling observers about
type PoolEvent struct {
	Type       string    `json:"type"`
	ChunkID    string    `json:"chunk_id,omitempty"`
	Count      int       `json:"count,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers pool events. Delivery is best effort.
type EventPublisher interface {
	PublishPoolEvent(ctx context.Context, event PoolEvent) error
}
