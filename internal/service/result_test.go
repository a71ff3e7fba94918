package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

func newTestResultService() (*ResultService, *fakeResults, *fakeStats, *fakeLeaderboard) {
	results := &fakeResults{}
	stats := newFakeStats()
	board := &fakeLeaderboard{}
	return NewResultService(results, stats, board, zap.NewNop()), results, stats, board
}

func TestRecordTimedResult(t *testing.T) {
	svc, results, stats, board := newTestResultService()
	ctx := context.Background()
	meta := SessionMeta{UserID: 3, DisplayName: "Carol", TopicID: "torts"}

	for _, score := range []int{900, 500} {
		res := entities.GameResult{UserID: 3, Mode: entities.ModeTimed, TopicID: "torts", Score: score, CorrectAnswers: 5, TotalQuestions: 10, CompletedAt: time.Now()}
		if err := svc.Record(ctx, res, meta); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if len(results.saved) != 2 {
		t.Errorf("saved %d results, want 2", len(results.saved))
	}
	got, _ := stats.Get(ctx, 3)
	if got.TimedBest != 900 {
		t.Errorf("TimedBest = %d, want 900", got.TimedBest)
	}
	if got.TotalGamesPlayed != 2 || got.TotalQuestionsAttempted != 20 || got.TotalCorrectAnswers != 10 {
		t.Errorf("aggregates = %+v", got)
	}
	if len(board.submissions) != 2 || board.submissions[0].name != "Carol" || board.submissions[0].topicID != "torts" {
		t.Errorf("leaderboard submissions = %+v", board.submissions)
	}
}

func TestRecordBossResult(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		total     int
		index     int
		wantLevel int
	}{
		{name: "pass unlocks next topic", correct: 11, total: 15, index: 2, wantLevel: 3},
		{name: "exactly seventy percent passes", correct: 7, total: 10, index: 0, wantLevel: 1},
		{name: "fail keeps level", correct: 10, total: 15, index: 2, wantLevel: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, stats, board := newTestResultService()
			ctx := context.Background()
			res := entities.GameResult{UserID: 4, Mode: entities.ModeBoss, CorrectAnswers: tt.correct, TotalQuestions: tt.total, CompletedAt: time.Now()}

			if err := svc.Record(ctx, res, SessionMeta{UserID: 4, TopicIndex: tt.index}); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			got, _ := stats.Get(ctx, 4)
			if got.BossLevel != tt.wantLevel {
				t.Errorf("BossLevel = %d, want %d", got.BossLevel, tt.wantLevel)
			}
			if len(board.submissions) != 0 {
				t.Error("boss result submitted to a leaderboard")
			}
		})
	}
}

func TestBossLevelNeverDecreases(t *testing.T) {
	svc, _, stats, _ := newTestResultService()
	ctx := context.Background()
	pass := entities.GameResult{UserID: 4, Mode: entities.ModeBoss, CorrectAnswers: 15, TotalQuestions: 15, CompletedAt: time.Now()}

	_ = svc.Record(ctx, pass, SessionMeta{UserID: 4, TopicIndex: 3})
	_ = svc.Record(ctx, pass, SessionMeta{UserID: 4, TopicIndex: 0})

	got, _ := stats.Get(ctx, 4)
	if got.BossLevel != 4 {
		t.Errorf("BossLevel = %d, want 4", got.BossLevel)
	}
}

func TestRecordDailyStreak(t *testing.T) {
	svc, _, stats, _ := newTestResultService()
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	steps := []struct {
		at   time.Time
		want int
	}{
		{at: day, want: 1},
		{at: day.Add(2 * time.Hour), want: 1},
		{at: day.AddDate(0, 0, 1), want: 2},
		{at: day.AddDate(0, 0, 3), want: 1},
	}

	for i, step := range steps {
		res := entities.GameResult{UserID: 5, Mode: entities.ModeDaily, TopicID: entities.DailyTopicID, Score: 100, TotalQuestions: 9, CompletedAt: step.at}
		if err := svc.Record(ctx, res, SessionMeta{UserID: 5}); err != nil {
			t.Fatal(err)
		}
		got, _ := stats.Get(ctx, 5)
		if got.DailyStreak != step.want {
			t.Errorf("step %d: streak = %d, want %d", i, got.DailyStreak, step.want)
		}
	}
}

func TestRecordSaveFailure(t *testing.T) {
	svc, results, stats, board := newTestResultService()
	results.saveErr = errors.New("connection refused")
	ctx := context.Background()

	err := svc.Record(ctx, entities.GameResult{UserID: 6, Mode: entities.ModeTimed, Score: 100}, SessionMeta{UserID: 6})
	if err == nil {
		t.Fatal("Record() error = nil, want failure")
	}
	got, _ := stats.Get(ctx, 6)
	if got.TimedBest != 0 || got.TotalGamesPlayed != 0 || len(board.submissions) != 0 {
		t.Error("statistics changed after a failed save")
	}
}

func TestResultHistory(t *testing.T) {
	svc, _, _, _ := newTestResultService()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 60; i++ {
		userID := int64(1)
		if i%2 == 1 {
			userID = 2
		}
		res := entities.GameResult{UserID: userID, Mode: entities.ModeTimed, TopicID: "torts", Score: i, TotalQuestions: 10, CompletedAt: start.Add(time.Duration(i) * time.Minute)}
		if err := svc.Record(ctx, res, SessionMeta{UserID: userID}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		limit     int
		wantLen   int
		wantFirst int
	}{
		{name: "default limit", limit: 0, wantLen: defaultHistoryLimit, wantFirst: 58},
		{name: "explicit limit", limit: 3, wantLen: 3, wantFirst: 58},
		{name: "capped", limit: 500, wantLen: 30, wantFirst: 58},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.History(ctx, 1, tt.limit)
			if err != nil {
				t.Fatalf("History() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("History() returned %d results, want %d", len(got), tt.wantLen)
			}
			if got[0].Score != tt.wantFirst {
				t.Errorf("newest score = %d, want %d", got[0].Score, tt.wantFirst)
			}
			for _, r := range got {
				if r.UserID != 1 {
					t.Errorf("result of user %d in history of user 1", r.UserID)
				}
			}
		})
	}
}
