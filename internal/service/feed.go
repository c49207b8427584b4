package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zizouhuweidi/slidequiz/internal/auth"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
	"github.com/zizouhuweidi/slidequiz/internal/generation"
)

// Generator produces candidate questions from chunk text
type Generator interface {
	Generate(ctx context.Context, text string, timeout time.Duration) ([]domain.Question, error)
}

// ChunkSelector picks the chunk to generate from next
type ChunkSelector interface {
	SelectChunk(ctx context.Context) (*domain.ContentChunk, error)
}

// FeedOptions tunes batch sizing and pool exposure
type FeedOptions struct {
	BatchSize         int
	MinPoolThreshold  int
	ExposureCap       int
	DefaultEngagement float64
	GenerationTimeout time.Duration
}

// DefaultFeedOptions returns the production defaults
func DefaultFeedOptions() FeedOptions {
	return FeedOptions{
		BatchSize:         5,
		MinPoolThreshold:  3,
		ExposureCap:       10,
		DefaultEngagement: 0.5,
		GenerationTimeout: 10 * time.Second,
	}
}

// Fallback reasons carried on pool events
const (
	reasonNoContent          = "no_content"
	reasonGenerationTimeout  = "generation_timeout"
	reasonGenerationDown     = "generation_unreachable"
	reasonGenerationRejected = "generation_invalid_response"
)

// FeedService assembles question batches, serving from the pool when it is
// deep enough and generating new questions when it is not
type FeedService struct {
	questions domain.QuestionRepository
	chunks    ChunkSelector
	generator Generator
	events    domain.EventPublisher
	opts      FeedOptions
	logger    *slog.Logger
}

// NewFeedService creates a new FeedService. events may be nil.
func NewFeedService(
	questions domain.QuestionRepository,
	chunks ChunkSelector,
	generator Generator,
	events domain.EventPublisher,
	opts FeedOptions,
	logger *slog.Logger,
) *FeedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedService{
		questions: questions,
		chunks:    chunks,
		generator: generator,
		events:    events,
		opts:      opts,
		logger:    logger,
	}
}

// GetNextBatch returns up to BatchSize questions for the caller. Generation
// failures and an empty content library are answered with the fallback batch.
// Errors are returned only for pool read failures, a cancelled context, or
// when none of the generated questions could be stored.
func (s *FeedService) GetNextBatch(ctx context.Context, identity auth.Identity) ([]domain.Question, error) {
	logger := s.logger.With("user_id", identity.UserID)

	pool, err := s.questions.RankedPool(ctx, s.opts.ExposureCap, s.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read question pool: %w", err)
	}

	if len(pool) >= s.opts.MinPoolThreshold {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("serving from pool", "size", len(pool))
		s.markShown(ctx, logger, pool)
		batch := make([]domain.Question, len(pool))
		for i, record := range pool {
			batch[i] = record.Question
		}
		return batch, nil
	}

	logger.Info("question pool below threshold", "size", len(pool), "threshold", s.opts.MinPoolThreshold)
	batch, _, err := s.runMissPath(ctx, logger)
	if err == nil {
		// Every stored question stays in the pool; only the head is served.
		if len(batch) > s.opts.BatchSize {
			batch = batch[:s.opts.BatchSize]
		}
		return batch, nil
	}

	reason, ok := fallbackReason(err)
	if !ok {
		return nil, err
	}
	logger.Warn("serving fallback batch", "reason", reason, "error", err)
	s.publish(ctx, domain.PoolEvent{Type: domain.EventFallbackServed, Reason: reason})
	return FallbackBatch(), nil
}

// Replenish runs one generation cycle when the under-exposed pool is below
// MinPoolThreshold and returns the number of questions stored
func (s *FeedService) Replenish(ctx context.Context) (int, error) {
	available, err := s.questions.CountAvailable(ctx, s.opts.ExposureCap)
	if err != nil {
		return 0, fmt.Errorf("failed to count question pool: %w", err)
	}
	if available >= s.opts.MinPoolThreshold {
		return 0, nil
	}

	_, stored, err := s.runMissPath(ctx, s.logger.With("job", "replenish"))
	if errors.Is(err, errNoContent) {
		return 0, nil
	}
	return stored, err
}

// markShown increments every record concurrently. Failures are logged and
// do not affect the batch.
func (s *FeedService) markShown(ctx context.Context, logger *slog.Logger, records []domain.QuestionRecord) {
	var wg sync.WaitGroup
	for _, record := range records {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.questions.IncrementShown(ctx, id); err != nil {
				logger.Warn("failed to increment times shown", "question_id", id, "error", err)
			}
		}(record.ID)
	}
	wg.Wait()
}

// runMissPath selects a chunk, generates from it and persists the result.
// Steps run strictly in order and none starts once ctx is done.
func (s *FeedService) runMissPath(ctx context.Context, logger *slog.Logger) ([]domain.Question, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	chunk, err := s.chunks.SelectChunk(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select content chunk: %w", err)
	}
	if chunk == nil {
		return nil, 0, errNoContent
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	candidates, err := s.generator.Generate(ctx, chunk.Text, s.opts.GenerationTimeout)
	if err != nil {
		return nil, 0, err
	}
	if len(candidates) == 0 {
		return nil, 0, fmt.Errorf("%w: empty batch", generation.ErrInvalidResponse)
	}

	stored := make([]domain.Question, 0, len(candidates))
	var lastErr error
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}
		record := domain.QuestionRecord{
			Question:        candidate,
			ChunkID:         chunk.ID,
			TimesShown:      0,
			CorrectRate:     0,
			EngagementScore: s.opts.DefaultEngagement,
		}
		id, err := s.questions.Insert(ctx, record)
		if err != nil {
			lastErr = err
			logger.Error("failed to store generated question", "chunk_id", chunk.ID, "error", err)
			continue
		}
		candidate.ID = id
		stored = append(stored, candidate)
	}

	if len(stored) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %w", ErrPersistenceFailed, lastErr)
	}
	if len(stored) < len(candidates) {
		logger.Warn("stored a partial generated batch", "chunk_id", chunk.ID, "stored", len(stored), "generated", len(candidates))
	}

	logger.Info("generated questions", "chunk_id", chunk.ID, "count", len(stored))
	s.publish(ctx, domain.PoolEvent{Type: domain.EventQuestionsGenerated, ChunkID: chunk.ID, Count: len(stored)})
	return stored, len(stored), nil
}

func (s *FeedService) publish(ctx context.Context, event domain.PoolEvent) {
	if s.events == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	if err := s.events.PublishPoolEvent(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish pool event", "type", event.Type, "error", err)
	}
}

// fallbackReason reports whether err should be answered with the fallback batch
func fallbackReason(err error) (string, bool) {
	switch {
	case errors.Is(err, errNoContent):
		return reasonNoContent, true
	case errors.Is(err, generation.ErrTimeout):
		return reasonGenerationTimeout, true
	case errors.Is(err, generation.ErrUnreachable):
		return reasonGenerationDown, true
	case errors.Is(err, generation.ErrInvalidResponse):
		return reasonGenerationRejected, true
	}
	return "", false
}
