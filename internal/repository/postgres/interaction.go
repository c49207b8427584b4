package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// InteractionRepository implements domain.InteractionRepository
type InteractionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(pool *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{pool: pool}
}

// Create appends an interaction event
func (r *InteractionRepository) Create(ctx context.Context, event *domain.InteractionEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO user_interactions (
			id, user_id, question_id, interaction_type,
			answer_correct, time_spent_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.QuestionID,
		event.InteractionType,
		event.Correct,
		event.TimeSpentMs,
		event.CreatedAt,
	)
	if err != nil {
		return domain.NewStorageError("insert interaction", err)
	}

	return nil
}
