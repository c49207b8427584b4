package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
	"github.com/zizouhuweidi/slidequiz/internal/repository/memory"
)

var errStorageDown = errors.New("storage down")

type fakeGenerator struct {
	mu        sync.Mutex
	calls     int
	texts     []string
	questions []domain.Question
	err       error
	onCall    func()
}

func (g *fakeGenerator) Generate(ctx context.Context, text string, timeout time.Duration) ([]domain.Question, error) {
	g.mu.Lock()
	g.calls++
	g.texts = append(g.texts, text)
	g.mu.Unlock()
	if g.onCall != nil {
		g.onCall()
	}
	if g.err != nil {
		return nil, g.err
	}
	return cloneQuestions(g.questions), nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// flakyRepository wraps the memory store and injects failures
type flakyRepository struct {
	*memory.Store
	poolErr      error
	failInsertAt map[int]bool
	failAll      bool
	failIncrID   string
	onPool       func()

	mu      sync.Mutex
	inserts int
}

func (r *flakyRepository) RankedPool(ctx context.Context, exposureCap, limit int) ([]domain.QuestionRecord, error) {
	if r.poolErr != nil {
		return nil, domain.NewStorageError("query question pool", r.poolErr)
	}
	records, err := r.Store.RankedPool(ctx, exposureCap, limit)
	if r.onPool != nil {
		r.onPool()
	}
	return records, err
}

func (r *flakyRepository) Insert(ctx context.Context, record domain.QuestionRecord) (string, error) {
	r.mu.Lock()
	r.inserts++
	n := r.inserts
	r.mu.Unlock()
	if r.failAll || r.failInsertAt[n] {
		return "", domain.NewStorageError("insert question", errStorageDown)
	}
	return r.Store.Insert(ctx, record)
}

func (r *flakyRepository) IncrementShown(ctx context.Context, id string) error {
	if id == r.failIncrID {
		return domain.NewStorageError("increment times shown", errStorageDown)
	}
	return r.Store.IncrementShown(ctx, id)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.PoolEvent
}

func (p *recordingPublisher) PublishPoolEvent(ctx context.Context, event domain.PoolEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) recorded() []domain.PoolEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.PoolEvent(nil), p.events...)
}

func intPtr(v int) *int { return &v }

func sampleQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			Type:         domain.QuestionTypeMultipleChoice,
			Prompt:       "generated question",
			Options:      []string{"a", "b", "c"},
			CorrectIndex: intPtr(i % 3),
			Difficulty:   0.4,
		}
	}
	return questions
}

func seedPool(t *testing.T, store *memory.Store, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id, err := store.Insert(context.Background(), domain.QuestionRecord{
			Question:        domain.Question{Type: domain.QuestionTypeTrueFalse, Prompt: "pooled"},
			ChunkID:         "pooled-chunk",
			EngagementScore: 0.5,
		})
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}
