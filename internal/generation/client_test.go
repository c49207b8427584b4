package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, nil)
}

func TestGenerateSuccess(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cells divide", body["text"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "should-be-dropped", "type": "Multiple_Choice", "question": " What divides? ", "options": ["cells", "rocks"], "correct_index": 0, "difficulty": 0.3, "bloom_level": "recall"},
			{"type": "true_false", "question": "Cells divide.", "correct_index": 1}
		]`))
	})

	questions, err := client.Generate(context.Background(), "cells divide", time.Second)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Empty(t, questions[0].ID)
	assert.Equal(t, domain.QuestionTypeMultipleChoice, questions[0].Type)
	assert.Equal(t, "What divides?", questions[0].Prompt)
	assert.Equal(t, []string{"cells", "rocks"}, questions[0].Options)
	require.NotNil(t, questions[0].CorrectIndex)
	assert.Equal(t, 0, *questions[0].CorrectIndex)
	assert.Equal(t, domain.QuestionTypeTrueFalse, questions[1].Type)
}

func TestGenerateDropsInvalidCandidates(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"type": "multiple_choice", "question": "One option?", "options": ["only"]},
			{"type": "essay", "question": "Unknown type"},
			{"type": "fill_in_the_blank", "question": "The sky is ____."}
		]`))
	})

	questions, err := client.Generate(context.Background(), "text", time.Second)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "The sky is ____.", questions[0].Prompt)
}

func TestGenerateFailureKinds(t *testing.T) {
	cases := map[string]struct {
		handler http.HandlerFunc
		kind    error
	}{
		"malformed json": {
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"not": "a list"`)) },
			kind:    ErrInvalidResponse,
		},
		"object instead of list": {
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"questions": []}`)) },
			kind:    ErrInvalidResponse,
		},
		"no usable candidates": {
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`[{"type": "essay", "question": ""}]`)) },
			kind:    ErrInvalidResponse,
		},
		"empty list": {
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`[]`)) },
			kind:    ErrInvalidResponse,
		},
		"server error": {
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			kind:    ErrInvalidResponse,
		},
		"slow service": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			kind: ErrTimeout,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := newServer(t, tc.handler)

			questions, err := client.Generate(context.Background(), "text", 100*time.Millisecond)
			assert.Nil(t, questions)
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, tc.kind, Kind(err))
		})
	}
}

func TestGenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Generate(context.Background(), "text", time.Second)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestGenerateCallerCancelled(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "text", time.Second)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestKindUnknown(t *testing.T) {
	assert.Nil(t, Kind(assert.AnError))
}
