package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

const namesKey = "leaderboard:names"

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Score  int64  `json:"score"`
	Rank   int64  `json:"rank"`
}

// Leaderboard keeps the best score of every player per mode, globally and per topic.
type Leaderboard struct {
	client *goredis.Client
}

func NewLeaderboard(client *goredis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func boardKey(mode entities.GameMode, topicID string) string {
	if topicID == "" {
		return "leaderboard:" + string(mode)
	}
	return "leaderboard:" + string(mode) + ":" + topicID
}

// Submit raises the player's score for mode in the global and topic boards.
// Lower scores never replace a higher one.
func (l *Leaderboard) Submit(ctx context.Context, mode entities.GameMode, topicID string, userID int64, name string, score int) error {
	member := goredis.Z{Score: float64(score), Member: strconv.FormatInt(userID, 10)}

	_, err := l.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZAddGT(ctx, boardKey(mode, ""), member)
		if topicID != "" {
			pipe.ZAddGT(ctx, boardKey(mode, topicID), member)
		}
		pipe.HSet(ctx, namesKey, member.Member, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("submit %s score: %w", mode, err)
	}
	return nil
}

// Top returns the best limit players of mode, optionally restricted to a topic.
func (l *Leaderboard) Top(ctx context.Context, mode entities.GameMode, topicID string, limit int64) ([]LeaderboardEntry, error) {
	results, err := l.client.ZRevRangeWithScores(ctx, boardKey(mode, topicID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", mode, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	members := make([]string, len(results))
	for i, z := range results {
		members[i], _ = z.Member.(string)
	}
	names, err := l.client.HMGet(ctx, namesKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard names: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, z := range results {
		id, err := strconv.ParseInt(members[i], 10, 64)
		if err != nil {
			continue
		}
		name, _ := names[i].(string)
		entries = append(entries, LeaderboardEntry{
			UserID: id,
			Name:   name,
			Score:  int64(z.Score),
			Rank:   int64(i) + 1,
		})
	}

	return entries, nil
}

// Rank returns the 1-based rank of the player, or 0 when they have no score.
func (l *Leaderboard) Rank(ctx context.Context, mode entities.GameMode, topicID string, userID int64) (int64, error) {
	rank, err := l.client.ZRevRank(ctx, boardKey(mode, topicID), strconv.FormatInt(userID, 10)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rank %s: %w", mode, err)
	}
	return rank + 1, nil
}
