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

var ErrSettingsNotFound = errors.New("settings not found")

// SettingsRepository provides access to user settings data in the database.
type SettingsRepository struct {
	db postgres.DBTX
}

// NewSettingsRepository creates a new SettingsRepository with the provided database pool.
func NewSettingsRepository(db postgres.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Create creates default settings for a user.
func (r *SettingsRepository) Create(ctx context.Context, userID int64) error {
	defaults := entities.NewUserSettings(userID)
	query := `
		INSERT INTO user_settings (
			user_id, question_count, name_preference, leaderboard_anonymity,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		userID,
		defaults.QuestionCount,
		string(defaults.NamePreference),
		defaults.LeaderboardAnonymity,
	)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}

	return nil
}

// GetByUserID retrieves settings for a user.
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	query := `
		SELECT user_id, question_count, name_preference, leaderboard_anonymity,
		       created_at, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var (
		settings entities.UserSettings
		pref     string
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.QuestionCount,
		&pref,
		&settings.LeaderboardAnonymity,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	settings.NamePreference = entities.NamePreference(pref)

	return &settings, nil
}

// UpdateQuestionCount updates the length of timed and lightning games.
func (r *SettingsRepository) UpdateQuestionCount(ctx context.Context, userID int64, count int) error {
	return r.update(ctx, "question count", "question_count", count, userID)
}

// UpdateNamePreference updates how the player is shown to others.
func (r *SettingsRepository) UpdateNamePreference(ctx context.Context, userID int64, pref entities.NamePreference) error {
	return r.update(ctx, "name preference", "name_preference", string(pref), userID)
}

// UpdateLeaderboardAnonymity toggles hiding the name on leaderboards.
func (r *SettingsRepository) UpdateLeaderboardAnonymity(ctx context.Context, userID int64, anonymous bool) error {
	return r.update(ctx, "leaderboard anonymity", "leaderboard_anonymity", anonymous, userID)
}

func (r *SettingsRepository) update(ctx context.Context, op, column string, value any, userID int64) error {
	query := fmt.Sprintf(`
		UPDATE user_settings
		SET %s = $1, updated_at = $2
		WHERE user_id = $3
	`, column)

	result, err := r.db.Exec(ctx, query, value, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("update %s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}

	return nil
}
