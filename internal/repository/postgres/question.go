package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// QuestionRepository implements the domain.QuestionRepository interface
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{
		pool: pool,
	}
}

// questionData is the JSONB payload stored in generated_questions.question_data
type questionData struct {
	Question          string   `json:"question"`
	Options           []string `json:"options,omitempty"`
	CorrectIndex      *int     `json:"correct_index,omitempty"`
	Explanation       string   `json:"explanation"`
	LearningObjective string   `json:"learning_objective"`
	KeyConcept        string   `json:"key_concept"`
	BloomLevel        string   `json:"bloom_level"`
	Difficulty        float64  `json:"difficulty"`
}

// RankedPool retrieves under-exposed questions in serving order
func (r *QuestionRepository) RankedPool(ctx context.Context, exposureCap, limit int) ([]domain.QuestionRecord, error) {
	query := `
		SELECT id, chunk_id, question_data, question_type, difficulty,
			engagement_score, times_shown, correct_rate, created_at
		FROM generated_questions
		WHERE times_shown < $1
		ORDER BY
			CASE WHEN times_shown = 0 THEN 0 ELSE 1 END,
			correct_rate ASC,
			engagement_score DESC,
			difficulty ASC,
			seq ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, exposureCap, limit)
	if err != nil {
		return nil, domain.NewStorageError("query question pool", err)
	}
	defer rows.Close()

	records := make([]domain.QuestionRecord, 0, limit)
	for rows.Next() {
		var (
			record domain.QuestionRecord
			raw    []byte
			qtype  string
		)
		if err := rows.Scan(
			&record.ID,
			&record.ChunkID,
			&raw,
			&qtype,
			&record.Difficulty,
			&record.EngagementScore,
			&record.TimesShown,
			&record.CorrectRate,
			&record.CreatedAt,
		); err != nil {
			return nil, domain.NewStorageError("scan question", err)
		}

		var data questionData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, domain.NewStorageError("decode question data", err)
		}
		record.Type = domain.QuestionType(qtype)
		applyQuestionData(&record.Question, data)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate question pool", err)
	}

	return records, nil
}

// IncrementShown bumps times_shown in a single UPDATE so concurrent callers never lose an increment
func (r *QuestionRepository) IncrementShown(ctx context.Context, id string) error {
	query := `UPDATE generated_questions SET times_shown = times_shown + 1 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return domain.NewStorageError("increment times shown", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// Insert creates a new question record and returns its id
func (r *QuestionRepository) Insert(ctx context.Context, record domain.QuestionRecord) (string, error) {
	payload, err := json.Marshal(toQuestionData(record.Question))
	if err != nil {
		return "", fmt.Errorf("failed to marshal question data: %w", err)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO generated_questions (
			id, chunk_id, question_data, question_type, difficulty,
			engagement_score, times_shown, correct_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		id,
		record.ChunkID,
		payload,
		string(record.Type),
		record.Difficulty,
		record.EngagementScore,
		record.TimesShown,
		record.CorrectRate,
	)
	if err != nil {
		return "", domain.NewStorageError("insert question", err)
	}

	return id, nil
}

// CountAvailable counts questions still under the exposure cap
func (r *QuestionRepository) CountAvailable(ctx context.Context, exposureCap int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM generated_questions
		WHERE times_shown < $1
	`, exposureCap).Scan(&count)
	if err != nil {
		return 0, domain.NewStorageError("count question pool", err)
	}
	return count, nil
}

func toQuestionData(q domain.Question) questionData {
	return questionData{
		Question:          q.Prompt,
		Options:           q.Options,
		CorrectIndex:      q.CorrectIndex,
		Explanation:       q.Explanation,
		LearningObjective: q.LearningObjective,
		KeyConcept:        q.KeyConcept,
		BloomLevel:        q.BloomLevel,
		Difficulty:        q.Difficulty,
	}
}

// applyQuestionData copies the JSONB payload onto q. The difficulty column is authoritative.
func applyQuestionData(q *domain.Question, data questionData) {
	q.Prompt = data.Question
	q.Options = data.Options
	q.CorrectIndex = data.CorrectIndex
	q.Explanation = data.Explanation
	q.LearningObjective = data.LearningObjective
	q.KeyConcept = data.KeyConcept
	q.BloomLevel = data.BloomLevel
}
