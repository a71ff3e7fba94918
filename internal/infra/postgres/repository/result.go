package repository

import (
	"context"
	"fmt"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres"
)

// ResultRepository stores completed game results.
type ResultRepository struct {
	db postgres.DBTX
	tr txRunner
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(db postgres.DBTX, tr txRunner) *ResultRepository {
	return &ResultRepository{db: db, tr: tr}
}

// Save writes the result to the player's history and to the global results
// in one transaction.
func (r *ResultRepository) Save(ctx context.Context, result *entities.GameResult) error {
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		return saveResult(ctx, tx, result)
	})
}

func saveResult(ctx context.Context, db postgres.DBTX, result *entities.GameResult) error {
	args := []any{
		result.UserID,
		string(result.Mode),
		result.TopicID,
		result.Score,
		result.CorrectAnswers,
		result.TotalQuestions,
		result.TimeTaken,
		result.MaxCombo,
		result.CompletedAt,
	}

	err := db.QueryRow(ctx, `
		INSERT INTO user_game_results (
			user_id, game_mode, topic_id, score, correct_answers,
			total_questions, time_taken, max_combo, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, args...).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("save user game result: %w", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO game_results (
			user_id, game_mode, topic_id, score, correct_answers,
			total_questions, time_taken, max_combo, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, args...)
	if err != nil {
		return fmt.Errorf("save global game result: %w", err)
	}

	return nil
}

// ListRecent returns the latest results of a player, newest first.
func (r *ResultRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]entities.GameResult, error) {
	query := `
		SELECT id, user_id, game_mode, topic_id, score, correct_answers,
		       total_questions, time_taken, max_combo, completed_at
		FROM user_game_results
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []entities.GameResult
	for rows.Next() {
		var res entities.GameResult
		var mode string
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&mode,
			&res.TopicID,
			&res.Score,
			&res.CorrectAnswers,
			&res.TotalQuestions,
			&res.TimeTaken,
			&res.MaxCombo,
			&res.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Mode = entities.GameMode(mode)
		results = append(results, res)
	}

	return results, rows.Err()
}
