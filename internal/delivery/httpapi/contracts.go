package httpapi

import (
	"context"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/redis"
)

// MatchSource reads matches and reports their changes.
type MatchSource interface {
	Get(ctx context.Context, matchID string) (*entities.Match, error)
	Subscribe(matchID string, onChange func()) func()
}

type LeaderboardSource interface {
	Top(ctx context.Context, mode entities.GameMode, topicID string, limit int64) ([]redis.LeaderboardEntry, error)
}
