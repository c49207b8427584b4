package service

import (
	"bytes"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
	"github.com/zizouhuweidi/slidequiz/internal/validation"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackFile struct {
	Questions []domain.Question `yaml:"questions"`
}

var defaultFallback = mustParseFallback(fallbackYAML)

// parseFallback decodes and validates a static question set
func parseFallback(data []byte) ([]domain.Question, error) {
	var file fallbackFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse fallback questions: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("parse fallback questions: no questions defined")
	}
	for i, q := range file.Questions {
		q = validation.NormalizeQuestion(q)
		if q.ID == "" {
			return nil, fmt.Errorf("fallback question %d: id is required", i)
		}
		if err := validation.ValidateQuestion(q); err != nil {
			return nil, fmt.Errorf("fallback question %s: %w", q.ID, err)
		}
		file.Questions[i] = q
	}
	return file.Questions, nil
}

func mustParseFallback(data []byte) []domain.Question {
	questions, err := parseFallback(data)
	if err != nil {
		panic(err)
	}
	return questions
}

// FallbackBatch returns a copy of the built-in question set served when
// nothing can be generated
func FallbackBatch() []domain.Question {
	return cloneQuestions(defaultFallback)
}

func cloneQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		if q.CorrectIndex != nil {
			index := *q.CorrectIndex
			q.CorrectIndex = &index
		}
		out[i] = q
	}
	return out
}
