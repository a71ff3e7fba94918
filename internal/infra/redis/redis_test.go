package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLeaderboardSubmitKeepsBest(t *testing.T) {
	ctx := context.Background()
	board := NewLeaderboard(newTestClient(t))

	submits := []struct {
		userID int64
		name   string
		score  int
	}{
		{userID: 1, name: "Alice", score: 1200},
		{userID: 2, name: "Bob", score: 900},
		{userID: 1, name: "Alice", score: 300},
		{userID: 2, name: "Anonymous", score: 1500},
	}
	for _, s := range submits {
		if err := board.Submit(ctx, entities.ModeTimed, "contracts", s.userID, s.name, s.score); err != nil {
			t.Fatalf("Submit(%d, %d) error = %v", s.userID, s.score, err)
		}
	}

	tests := []struct {
		name    string
		mode    entities.GameMode
		topicID string
		limit   int64
		want    []LeaderboardEntry
	}{
		{
			name:  "global",
			mode:  entities.ModeTimed,
			limit: 10,
			want: []LeaderboardEntry{
				{UserID: 2, Name: "Anonymous", Score: 1500, Rank: 1},
				{UserID: 1, Name: "Alice", Score: 1200, Rank: 2},
			},
		},
		{
			name:    "topic with limit",
			mode:    entities.ModeTimed,
			topicID: "contracts",
			limit:   1,
			want:    []LeaderboardEntry{{UserID: 2, Name: "Anonymous", Score: 1500, Rank: 1}},
		},
		{name: "other mode is empty", mode: entities.ModeLightning, limit: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := board.Top(ctx, tt.mode, tt.topicID, tt.limit)
			if err != nil {
				t.Fatalf("Top() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Top() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Top()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}

	rank, err := board.Rank(ctx, entities.ModeTimed, "", 1)
	if err != nil || rank != 2 {
		t.Errorf("Rank() = %d, %v, want 2", rank, err)
	}
	rank, err = board.Rank(ctx, entities.ModeTimed, "", 99)
	if err != nil || rank != 0 {
		t.Errorf("Rank() of unknown player = %d, %v, want 0", rank, err)
	}
}

func TestPresenceStore(t *testing.T) {
	ctx := context.Background()
	store := NewPresenceStore(newTestClient(t))
	now := time.Unix(1_700_000_000, 0)

	touches := []entities.Presence{
		{UserID: 1, DisplayName: "Alice", State: entities.PresenceOnline, LastSeen: now.Add(-time.Hour)},
		{UserID: 2, DisplayName: "Bob", State: entities.PresenceInGame, LastSeen: now.Add(-time.Minute)},
		{UserID: 3, DisplayName: "Cara", State: entities.PresenceOnline, LastSeen: now},
	}
	for _, p := range touches {
		if err := store.Touch(ctx, p); err != nil {
			t.Fatalf("Touch(%d) error = %v", p.UserID, err)
		}
	}

	online, err := store.Online(ctx, now.Add(-5*time.Minute), 10)
	if err != nil {
		t.Fatalf("Online() error = %v", err)
	}
	if len(online) != 2 || online[0].UserID != 3 || online[1].UserID != 2 {
		t.Fatalf("Online() = %+v, want players 3 then 2", online)
	}
	if online[1].State != entities.PresenceInGame || online[1].DisplayName != "Bob" {
		t.Errorf("Online()[1] = %+v", online[1])
	}

	pruned, err := store.Prune(ctx, now.Add(-5*time.Minute))
	if err != nil || pruned != 1 {
		t.Fatalf("Prune() = %d, %v, want 1", pruned, err)
	}
	all, err := store.Online(ctx, time.Unix(0, 0), 10)
	if err != nil || len(all) != 2 {
		t.Errorf("Online() after prune = %+v, %v, want 2 players", all, err)
	}
}
