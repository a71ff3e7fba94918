package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// ResultService is the result store of finished single-player sessions.
type ResultService struct {
	results     ResultRepository
	stats       StatisticsRepository
	leaderboard Leaderboard
	logger      *zap.Logger
	now         func() time.Time
}

func NewResultService(
	results ResultRepository,
	stats StatisticsRepository,
	leaderboard Leaderboard,
	logger *zap.Logger,
) *ResultService {
	return &ResultService{
		results:     results,
		stats:       stats,
		leaderboard: leaderboard,
		logger:      logger,
		now:         time.Now,
	}
}

// Record persists result and updates the derived statistics. Only a failure to
// store the result itself is returned; statistic and leaderboard failures are
// logged so one broken step does not lose the others.
func (s *ResultService) Record(ctx context.Context, result entities.GameResult, meta SessionMeta) error {
	if err := s.RecordGameResult(ctx, &result); err != nil {
		return err
	}

	log := s.logger.With(
		zap.Int64("user_id", result.UserID),
		zap.String("mode", string(result.Mode)),
	)

	switch result.Mode {
	case entities.ModeBoss:
		if result.Passed() {
			level := meta.TopicIndex + 1
			if _, err := s.UpdateBestStat(ctx, result.UserID, entities.ModeBoss, level); err != nil {
				log.Error("failed to raise boss level", zap.Int("level", level), zap.Error(err))
			}
		}
	case entities.ModeDaily:
		if err := s.extendDailyStreak(ctx, result.UserID, result.CompletedAt); err != nil {
			log.Error("failed to update daily streak", zap.Error(err))
		}
	default:
		if _, err := s.UpdateBestStat(ctx, result.UserID, result.Mode, result.Score); err != nil {
			log.Error("failed to update best score", zap.Error(err))
		}
	}

	if err := s.stats.RecordGame(ctx, result.UserID, result.CorrectAnswers, result.TotalQuestions, result.CompletedAt); err != nil {
		log.Error("failed to update aggregate statistics", zap.Error(err))
	}

	if result.Mode != entities.ModeBoss && s.leaderboard != nil {
		err := s.leaderboard.Submit(ctx, result.Mode, result.TopicID, result.UserID, meta.DisplayName, result.Score)
		if err != nil {
			log.Warn("failed to submit leaderboard score", zap.Error(err))
		}
	}

	log.Info("game result recorded",
		zap.Int("score", result.Score),
		zap.Int("correct", result.CorrectAnswers),
		zap.Int("total", result.TotalQuestions),
	)
	return nil
}

// RecordGameResult writes the result to the player's history and the global results.
func (s *ResultService) RecordGameResult(ctx context.Context, result *entities.GameResult) error {
	if err := s.results.Save(ctx, result); err != nil {
		return fmt.Errorf("record game result: %w", err)
	}
	return nil
}

// UpdateBestStat raises the stored best of mode to value if it is strictly greater.
// For boss mode value is the unlocked topic level.
func (s *ResultService) UpdateBestStat(ctx context.Context, userID int64, mode entities.GameMode, value int) (bool, error) {
	changed, err := s.stats.UpdateBest(ctx, userID, mode, value)
	if err != nil {
		return false, fmt.Errorf("update best stat: %w", err)
	}
	return changed, nil
}

func (s *ResultService) extendDailyStreak(ctx context.Context, userID int64, at time.Time) error {
	stats, err := s.stats.Get(ctx, userID)
	if err != nil {
		return err
	}
	streak := entities.NextDailyStreak(stats.DailyStreak, stats.LastDailyAt, at)
	return s.stats.SetDailyStreak(ctx, userID, streak, at)
}

// Statistics returns the stored statistics of a player.
func (s *ResultService) Statistics(ctx context.Context, userID int64) (*entities.UserStatistics, error) {
	return s.stats.Get(ctx, userID)
}

// History returns the latest results of a player, newest first. A limit
// outside 1..50 falls back to 10 or is capped at 50.
func (s *ResultService) History(ctx context.Context, userID int64, limit int) ([]entities.GameResult, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	results, err := s.results.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("game history: %w", err)
	}
	return results, nil
}
