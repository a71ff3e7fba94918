package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

const (
	presenceSeenKey  = "presence:last_seen"
	presenceStateKey = "presence:state"
	presenceNameKey  = "presence:name"
)

// PresenceStore tracks who is online. Last-seen times live in a sorted set
// scored by unix seconds so stale players can be dropped by range.
type PresenceStore struct {
	client *goredis.Client
}

func NewPresenceStore(client *goredis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

// Touch records activity of a player.
func (s *PresenceStore) Touch(ctx context.Context, p entities.Presence) error {
	member := strconv.FormatInt(p.UserID, 10)

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZAdd(ctx, presenceSeenKey, goredis.Z{Score: float64(p.LastSeen.Unix()), Member: member})
		pipe.HSet(ctx, presenceStateKey, member, string(p.State))
		if p.DisplayName != "" {
			pipe.HSet(ctx, presenceNameKey, member, p.DisplayName)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("touch presence: %w", err)
	}
	return nil
}

// Online returns players seen after since, most recent first.
func (s *PresenceStore) Online(ctx context.Context, since time.Time, limit int64) ([]entities.Presence, error) {
	results, err := s.client.ZRevRangeByScoreWithScores(ctx, presenceSeenKey, &goredis.ZRangeBy{
		Min:   strconv.FormatInt(since.Unix(), 10),
		Max:   "+inf",
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("online players: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	members := make([]string, len(results))
	for i, z := range results {
		members[i], _ = z.Member.(string)
	}

	var states, names *goredis.SliceCmd
	_, err = s.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		states = pipe.HMGet(ctx, presenceStateKey, members...)
		names = pipe.HMGet(ctx, presenceNameKey, members...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("presence details: %w", err)
	}

	out := make([]entities.Presence, 0, len(results))
	for i, z := range results {
		id, err := strconv.ParseInt(members[i], 10, 64)
		if err != nil {
			continue
		}
		state, _ := states.Val()[i].(string)
		name, _ := names.Val()[i].(string)
		if state == "" {
			state = string(entities.PresenceOnline)
		}
		out = append(out, entities.Presence{
			UserID:      id,
			DisplayName: name,
			State:       entities.PresenceState(state),
			LastSeen:    time.Unix(int64(z.Score), 0),
		})
	}

	return out, nil
}

// Prune removes players not seen since before and returns how many were dropped.
func (s *PresenceStore) Prune(ctx context.Context, before time.Time) (int, error) {
	upper := "(" + strconv.FormatInt(before.Unix(), 10)
	stale, err := s.client.ZRangeByScore(ctx, presenceSeenKey, &goredis.ZRangeBy{Min: "-inf", Max: upper}).Result()
	if err != nil {
		return 0, fmt.Errorf("stale presence: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	members := make([]any, len(stale))
	for i, m := range stale {
		members[i] = m
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRem(ctx, presenceSeenKey, members...)
		pipe.HDel(ctx, presenceStateKey, stale...)
		pipe.HDel(ctx, presenceNameKey, stale...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune presence: %w", err)
	}

	return len(stale), nil
}
