package domain

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrQuestionNotFound = errors.New("question not found")
)

// QuestionType enumerates the supported question formats
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeFillInTheBlank QuestionType = "fill_in_the_blank"
)

// Valid reports whether t is one of the supported question types
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeFillInTheBlank:
		return true
	}
	return false
}

// Question is the payload served to clients. ID is empty until the question is persisted.
type Question struct {
	ID                string       `json:"id,omitempty" yaml:"id"`
	Type              QuestionType `json:"type" yaml:"type"`
	Prompt            string       `json:"question" yaml:"question"`
	Options           []string     `json:"options,omitempty" yaml:"options"`
	CorrectIndex      *int         `json:"correct_index,omitempty" yaml:"correct_index"`
	Explanation       string       `json:"explanation" yaml:"explanation"`
	LearningObjective string       `json:"learning_objective" yaml:"learning_objective"`
	KeyConcept        string       `json:"key_concept" yaml:"key_concept"`
	BloomLevel        string       `json:"bloom_level" yaml:"bloom_level"`
	Difficulty        float64      `json:"difficulty" yaml:"difficulty"`
}

// QuestionRecord is the stored form of a question together with its exposure
// and engagement fields. TimesShown only ever changes through IncrementShown.
type QuestionRecord struct {
	Question
	ChunkID         string    `json:"chunk_id"`
	TimesShown      int       `json:"times_shown"`
	CorrectRate     float64   `json:"correct_rate"`
	EngagementScore float64   `json:"engagement_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// QuestionRepository defines the storage contract for generated questions
type QuestionRepository interface {
	// RankedPool returns up to limit records with times_shown below exposureCap,
	// never-shown first, then ascending correct_rate, descending engagement_score,
	// ascending difficulty, then insertion order.
	RankedPool(ctx context.Context, exposureCap, limit int) ([]QuestionRecord, error)

	// IncrementShown atomically adds one to times_shown.
	// Returns ErrQuestionNotFound for an unknown id.
	IncrementShown(ctx context.Context, id string) error

	// Insert persists a record under a freshly generated id and returns it.
	Insert(ctx context.Context, record QuestionRecord) (string, error)

	// CountAvailable counts records with times_shown below exposureCap.
	CountAvailable(ctx context.Context, exposureCap int) (int, error)
}
