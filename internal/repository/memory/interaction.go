package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// Create implements domain.InteractionRepository
func (s *Store) Create(ctx context.Context, event *domain.InteractionEvent) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("insert interaction", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}
	s.interactions = append(s.interactions, *event)
	return nil
}

// Interactions returns a copy of all recorded events
func (s *Store) Interactions() []domain.InteractionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.InteractionEvent(nil), s.interactions...)
}
