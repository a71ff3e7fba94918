package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres"
)

// bestColumns maps score-ranked modes to their record column.
var bestColumns = map[entities.GameMode]string{
	entities.ModeTimed:     "timed_best",
	entities.ModeSurvival:  "survival_record",
	entities.ModeLightning: "lightning_high",
	entities.ModeBoss:      "boss_level",
}

var ErrNoBestStat = errors.New("mode has no best statistic")

// StatisticsRepository provides access to per-player statistics.
type StatisticsRepository struct {
	db postgres.DBTX
}

// NewStatisticsRepository creates a new StatisticsRepository.
func NewStatisticsRepository(db postgres.DBTX) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Get returns statistics of a player, or zero statistics when none exist yet.
func (r *StatisticsRepository) Get(ctx context.Context, userID int64) (*entities.UserStatistics, error) {
	query := `
		SELECT user_id, timed_best, survival_record, lightning_high, boss_level,
		       daily_streak, last_daily_at, total_games_played, total_correct_answers,
		       total_questions_attempted, last_played_at
		FROM user_statistics
		WHERE user_id = $1
	`

	var s entities.UserStatistics
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.TimedBest,
		&s.SurvivalRecord,
		&s.LightningHigh,
		&s.BossLevel,
		&s.DailyStreak,
		&s.LastDailyAt,
		&s.TotalGamesPlayed,
		&s.TotalCorrectAnswers,
		&s.TotalQuestionsAttempted,
		&s.LastPlayedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entities.UserStatistics{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get statistics: %w", err)
	}

	return &s, nil
}

// UpdateBest raises the record of mode to value if value is strictly greater.
// It reports whether the stored value changed.
func (r *StatisticsRepository) UpdateBest(ctx context.Context, userID int64, mode entities.GameMode, value int) (bool, error) {
	column, ok := bestColumns[mode]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNoBestStat, mode)
	}

	// column comes from bestColumns, never from input.
	query := fmt.Sprintf(`
		INSERT INTO user_statistics (user_id, %[1]s)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			%[1]s = EXCLUDED.%[1]s
		WHERE user_statistics.%[1]s < EXCLUDED.%[1]s
	`, column)

	tag, err := r.db.Exec(ctx, query, userID, value)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", column, err)
	}

	return tag.RowsAffected() > 0, nil
}

// RecordGame bumps the aggregate counters after a completed game.
func (r *StatisticsRepository) RecordGame(ctx context.Context, userID int64, correct, total int, playedAt time.Time) error {
	query := `
		INSERT INTO user_statistics (
			user_id, total_games_played, total_correct_answers,
			total_questions_attempted, last_played_at
		) VALUES ($1, 1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			total_games_played = user_statistics.total_games_played + 1,
			total_correct_answers = user_statistics.total_correct_answers + EXCLUDED.total_correct_answers,
			total_questions_attempted = user_statistics.total_questions_attempted + EXCLUDED.total_questions_attempted,
			last_played_at = EXCLUDED.last_played_at
	`

	if _, err := r.db.Exec(ctx, query, userID, correct, total, playedAt); err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	return nil
}

// SetDailyStreak stores the daily streak and the time of the last daily challenge.
func (r *StatisticsRepository) SetDailyStreak(ctx context.Context, userID int64, streak int, at time.Time) error {
	query := `
		INSERT INTO user_statistics (user_id, daily_streak, last_daily_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			daily_streak = EXCLUDED.daily_streak,
			last_daily_at = EXCLUDED.last_daily_at
	`

	if _, err := r.db.Exec(ctx, query, userID, streak, at); err != nil {
		return fmt.Errorf("set daily streak: %w", err)
	}
	return nil
}
