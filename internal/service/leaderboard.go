package service

import (
	"context"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/redis"
)

const DefaultLeaderboardSize = 10

type LeaderboardService struct {
	board Leaderboard
}

func NewLeaderboardService(board Leaderboard) *LeaderboardService {
	return &LeaderboardService{board: board}
}

// Top returns the best players of mode, globally when topicID is empty.
// Boss mode has no score board.
func (s *LeaderboardService) Top(ctx context.Context, mode entities.GameMode, topicID string, limit int64) ([]redis.LeaderboardEntry, error) {
	if mode.Config().Mode == "" || mode == entities.ModeBoss {
		return nil, entities.ErrUnknownGameMode
	}
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return s.board.Top(ctx, mode, topicID, limit)
}

// Rank returns the 1-based global rank of the player in mode, 0 if unranked.
func (s *LeaderboardService) Rank(ctx context.Context, mode entities.GameMode, userID int64) (int64, error) {
	return s.board.Rank(ctx, mode, "", userID)
}
