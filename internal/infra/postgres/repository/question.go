package repository

import (
	"context"
	"fmt"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres"
)

// QuestionFilter selects questions of one topic, or the whole pool when All is set.
type QuestionFilter struct {
	TopicID string
	All     bool
}

// QuestionRepository provides read access to the question pool.
type QuestionRepository struct {
	db postgres.DBTX
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(db postgres.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListQuestions returns normalized questions matching filter in storage order.
// Rows with a malformed correct answer are skipped.
func (r *QuestionRepository) ListQuestions(ctx context.Context, filter QuestionFilter) ([]entities.Question, error) {
	query := `
		SELECT id, topic_id, question, option_a, option_b, option_c, option_d,
		       correct_answer, explanation, difficulty
		FROM questions
	`
	var args []any
	if !filter.All {
		query += " WHERE topic_id = $1"
		args = append(args, filter.TopicID)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []entities.Question
	for rows.Next() {
		var rec entities.QuestionRecord
		var difficulty string
		if err := rows.Scan(
			&rec.ID,
			&rec.TopicID,
			&rec.Question,
			&rec.OptionA,
			&rec.OptionB,
			&rec.OptionC,
			&rec.OptionD,
			&rec.CorrectAnswer,
			&rec.Explanation,
			&difficulty,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		rec.Difficulty = entities.Difficulty(difficulty)

		q, err := rec.Normalize()
		if err != nil {
			continue
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// GetByID retrieves one normalized question.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*entities.Question, error) {
	query := `
		SELECT id, topic_id, question, option_a, option_b, option_c, option_d,
		       correct_answer, explanation, difficulty
		FROM questions
		WHERE id = $1
	`

	var rec entities.QuestionRecord
	var difficulty string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.TopicID,
		&rec.Question,
		&rec.OptionA,
		&rec.OptionB,
		&rec.OptionC,
		&rec.OptionD,
		&rec.CorrectAnswer,
		&rec.Explanation,
		&difficulty,
	)
	if err != nil {
		return nil, notFound(err, ErrQuestionNotFound, "get question")
	}
	rec.Difficulty = entities.Difficulty(difficulty)

	q, err := rec.Normalize()
	if err != nil {
		return nil, err
	}
	return &q, nil
}
