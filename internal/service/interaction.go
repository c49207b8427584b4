package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/zizouhuweidi/slidequiz/internal/auth"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// InteractionInput is a client-reported interaction with a served question
type InteractionInput struct {
	QuestionID  string
	Type        string
	Correct     bool
	TimeSpentMs int64
}

// InteractionService appends interaction events. It never touches the
// aggregate fields on stored questions.
type InteractionService struct {
	interactions domain.InteractionRepository
}

// NewInteractionService creates a new interaction service
func NewInteractionService(interactions domain.InteractionRepository) *InteractionService {
	return &InteractionService{interactions: interactions}
}

// Record stores one interaction event for the caller
func (s *InteractionService) Record(ctx context.Context, identity auth.Identity, in InteractionInput) error {
	in.QuestionID = strings.TrimSpace(in.QuestionID)
	in.Type = strings.TrimSpace(in.Type)

	var issues issueCollector
	if identity.UserID == "" {
		issues.add("userId", "is required")
	}
	if in.QuestionID == "" {
		issues.add("questionId", "is required")
	}
	if in.Type == "" {
		issues.add("type", "is required")
	}
	if in.TimeSpentMs < 0 {
		issues.add("timeSpent", "must not be negative")
	}
	if err := issues.result(); err != nil {
		return err
	}

	event := &domain.InteractionEvent{
		UserID:          identity.UserID,
		QuestionID:      in.QuestionID,
		InteractionType: in.Type,
		Correct:         in.Correct,
		TimeSpentMs:     in.TimeSpentMs,
	}
	if err := s.interactions.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}
