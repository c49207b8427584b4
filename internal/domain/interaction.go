package domain

import (
	"context"
	"time"
)

// InteractionEvent is an append-only record of a user's engagement with a question
type InteractionEvent struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	QuestionID      string    `json:"question_id"`
	InteractionType string    `json:"interaction_type"`
	Correct         bool      `json:"correct"`
	TimeSpentMs     int64     `json:"time_spent_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// InteractionRepository persists interaction events
type InteractionRepository interface {
	// Create appends an event, assigning its ID when empty
	Create(ctx context.Context, event *InteractionEvent) error
}
