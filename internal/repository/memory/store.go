// Package memory provides an in-process implementation of the repository
// interfaces. All state is guarded by a single mutex, which serializes
// increments the same way a row lock does in Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

type questionEntry struct {
	seq    int64
	record domain.QuestionRecord
}

// Store keeps questions, chunks, interactions and users in memory
type Store struct {
	mu           sync.RWMutex
	nextSeq      int64
	questions    map[string]*questionEntry
	chunks       []domain.ContentChunk
	interactions []domain.InteractionEvent
	users        map[string]*domain.User
	now          func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		questions: make(map[string]*questionEntry),
		users:     make(map[string]*domain.User),
		now:       time.Now,
	}
}

// AddChunk registers an ingested chunk. Ingestion is external in production;
// this exists for development seeding and tests.
func (s *Store) AddChunk(chunk domain.ContentChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	s.chunks = append(s.chunks, chunk)
}

// RankedPool implements domain.QuestionRepository
func (s *Store) RankedPool(ctx context.Context, exposureCap, limit int) ([]domain.QuestionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("query question pool", err)
	}

	s.mu.RLock()
	entries := make([]*questionEntry, 0, len(s.questions))
	for _, entry := range s.questions {
		if entry.record.TimesShown < exposureCap {
			copied := *entry
			entries = append(entries, &copied)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return poolLess(entries[i], entries[j])
	})

	if limit < len(entries) {
		entries = entries[:limit]
	}
	records := make([]domain.QuestionRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entry.record)
	}
	return records, nil
}

// poolLess orders entries by exploration, learning need, engagement, difficulty, then insertion
func poolLess(a, b *questionEntry) bool {
	aShown, bShown := a.record.TimesShown > 0, b.record.TimesShown > 0
	if aShown != bShown {
		return !aShown
	}
	if a.record.CorrectRate != b.record.CorrectRate {
		return a.record.CorrectRate < b.record.CorrectRate
	}
	if a.record.EngagementScore != b.record.EngagementScore {
		return a.record.EngagementScore > b.record.EngagementScore
	}
	if a.record.Difficulty != b.record.Difficulty {
		return a.record.Difficulty < b.record.Difficulty
	}
	return a.seq < b.seq
}

// IncrementShown implements domain.QuestionRepository
func (s *Store) IncrementShown(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("increment times shown", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	entry.record.TimesShown++
	return nil
}

// Insert implements domain.QuestionRepository
func (s *Store) Insert(ctx context.Context, record domain.QuestionRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewStorageError("insert question", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	record.ID = uuid.NewString()
	record.CreatedAt = s.now().UTC()
	record.Options = append([]string(nil), record.Options...)
	s.questions[record.ID] = &questionEntry{seq: s.nextSeq, record: record}
	return record.ID, nil
}

// CountAvailable implements domain.QuestionRepository
func (s *Store) CountAvailable(ctx context.Context, exposureCap int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStorageError("count question pool", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, entry := range s.questions {
		if entry.record.TimesShown < exposureCap {
			count++
		}
	}
	return count, nil
}

// Question returns a copy of the stored record
func (s *Store) Question(id string) (domain.QuestionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.questions[id]
	if !ok {
		return domain.QuestionRecord{}, false
	}
	return entry.record, true
}

// QuestionCount returns the number of stored questions
func (s *Store) QuestionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}
