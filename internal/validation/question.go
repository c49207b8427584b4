package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// Candidate validation errors
var (
	ErrEmptyPrompt       = errors.New("question text is empty")
	ErrUnknownType       = errors.New("unknown question type")
	ErrTooFewOptions     = errors.New("multiple choice needs at least two options")
	ErrCorrectOutOfRange = errors.New("correct index out of range")
)

// NormalizeQuestion trims free-text fields and lower-cases the type
func NormalizeQuestion(q domain.Question) domain.Question {
	q.Type = domain.QuestionType(strings.ToLower(strings.TrimSpace(string(q.Type))))
	q.Prompt = strings.TrimSpace(q.Prompt)
	q.Explanation = strings.TrimSpace(q.Explanation)
	q.LearningObjective = strings.TrimSpace(q.LearningObjective)
	q.KeyConcept = strings.TrimSpace(q.KeyConcept)
	q.BloomLevel = strings.TrimSpace(q.BloomLevel)

	if len(q.Options) > 0 {
		options := make([]string, 0, len(q.Options))
		for _, option := range q.Options {
			options = append(options, strings.TrimSpace(option))
		}
		q.Options = options
	}
	return q
}

// ValidateQuestion checks that a generated question can be served
func ValidateQuestion(q domain.Question) error {
	if q.Prompt == "" {
		return ErrEmptyPrompt
	}
	if !q.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, q.Type)
	}

	switch q.Type {
	case domain.QuestionTypeMultipleChoice:
		if len(q.Options) < 2 {
			return ErrTooFewOptions
		}
		if q.CorrectIndex != nil && !inRange(*q.CorrectIndex, len(q.Options)) {
			return fmt.Errorf("%w: %d of %d options", ErrCorrectOutOfRange, *q.CorrectIndex, len(q.Options))
		}
	case domain.QuestionTypeTrueFalse:
		// true/false may omit options; the index then addresses [true, false]
		n := len(q.Options)
		if n == 0 {
			n = 2
		}
		if q.CorrectIndex != nil && !inRange(*q.CorrectIndex, n) {
			return fmt.Errorf("%w: %d of %d options", ErrCorrectOutOfRange, *q.CorrectIndex, n)
		}
	}
	return nil
}

func inRange(index, n int) bool {
	return index >= 0 && index < n
}
