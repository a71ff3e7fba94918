package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/service"
)

func testMatch(status entities.MatchStatus) entities.Match {
	questions := make([]entities.Question, entities.MatchQuestionCount)
	for i := range questions {
		questions[i] = entities.Question{
			ID:      "q",
			Prompt:  "Which court?",
			Options: [entities.OptionsCount]string{"A court", "B court", "C court", "D court"},
		}
	}

	m := entities.NewMatch("m-1", "torts", "Torts",
		entities.Player{UserID: 1, DisplayName: "Alice"},
		entities.Player{UserID: 2, DisplayName: "Bob"},
		questions,
	)
	m.Status = status
	return *m
}

func TestBuildMatchKeyboard(t *testing.T) {
	answered := testMatch(entities.MatchActive)
	answered.Players[0].Answers = []int{0}

	tests := []struct {
		name     string
		match    entities.Match
		userID   int64
		wantNil  bool
		wantData string
	}{
		{name: "challenger waits", match: testMatch(entities.MatchWaiting), userID: 1, wantNil: true},
		{name: "opponent can accept", match: testMatch(entities.MatchWaiting), userID: 2, wantData: buildAcceptCallback("m-1")},
		{name: "active unanswered", match: testMatch(entities.MatchActive), userID: 1, wantData: buildMatchAnswerCallback("m-1", 0, 0)},
		{name: "active answered", match: answered, userID: 1, wantNil: true},
		{name: "finished offers rematch", match: testMatch(entities.MatchFinished), userID: 2, wantData: buildChallengeTopicCallback(1, "torts")},
		{name: "declined", match: testMatch(entities.MatchDeclined), userID: 1, wantNil: true},
		{name: "stranger", match: testMatch(entities.MatchActive), userID: 3, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := buildMatchKeyboard(tt.match, tt.userID)
			if tt.wantNil {
				if kb != nil {
					t.Fatalf("buildMatchKeyboard() = %+v, want nil", kb)
				}
				return
			}
			if kb == nil {
				t.Fatal("buildMatchKeyboard() = nil")
			}
			first := kb.InlineKeyboard[0][0].CallbackData
			if first == nil || *first != tt.wantData {
				t.Errorf("first button data = %v, want %q", first, tt.wantData)
			}
		})
	}
}

func TestBuildTopicKeyboardLocksBosses(t *testing.T) {
	topics := []entities.Topic{
		{ID: "contracts", Name: "Contracts"},
		{ID: "torts", Name: "Torts"},
		{ID: "crime", Name: "Criminal Law"},
	}

	kb := buildTopicKeyboard(entities.ModeBoss, topics, 1)

	want := []string{"1. Contracts", "2. Torts", "🔒 Criminal Law", "« Modes"}
	for i, w := range want {
		if got := kb.InlineKeyboard[i][0].Text; got != w {
			t.Errorf("row %d = %q, want %q", i, got, w)
		}
	}
}

func TestFormatMatchWinner(t *testing.T) {
	m := testMatch(entities.MatchFinished)
	m.Players[0].Score = 300
	m.Players[1].Score = 100
	m.Winner = entities.WinnerFor(1)

	if got := formatMatch(m, 1); !strings.Contains(got, "You won") {
		t.Errorf("winner view = %q", got)
	}
	if got := formatMatch(m, 2); !strings.Contains(got, "Alice won") {
		t.Errorf("loser view = %q", got)
	}

	m.Winner = entities.WinnerDraw
	if got := formatMatch(m, 2); !strings.Contains(got, "draw") {
		t.Errorf("draw view = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("Негативная давность", 5); got != "Нега…" {
		t.Errorf("truncate() = %q", got)
	}
}

func TestBuildReviewKeyboard(t *testing.T) {
	page := func(index, total int) *service.ReviewPage {
		return &service.ReviewPage{
			Topic:    entities.Topic{ID: "torts", Name: "Torts"},
			Question: entities.Question{ID: "torts-q1"},
			Index:    index,
			Total:    total,
		}
	}

	tests := []struct {
		name    string
		page    *service.ReviewPage
		wantNav []string
	}{
		{name: "first of many", page: page(0, 3), wantNav: []string{buildReviewCallback("torts", 1)}},
		{name: "middle", page: page(1, 3), wantNav: []string{buildReviewCallback("torts", 0), buildReviewCallback("torts", 2)}},
		{name: "last", page: page(2, 3), wantNav: []string{buildReviewCallback("torts", 1)}},
		{name: "single question", page: page(0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := buildReviewKeyboard(tt.page)

			rows := kb.InlineKeyboard
			wantRows := 2
			if len(tt.wantNav) > 0 {
				wantRows = 3
			}
			if len(rows) != wantRows {
				t.Fatalf("rows = %d, want %d", len(rows), wantRows)
			}
			for i, want := range tt.wantNav {
				if got := *rows[0][i].CallbackData; got != want {
					t.Errorf("nav[%d] = %q, want %q", i, got, want)
				}
			}
			if got := *rows[len(rows)-2][0].CallbackData; got != buildReportCallback("torts-q1") {
				t.Errorf("report button = %q", got)
			}
			if got := *rows[len(rows)-1][0].CallbackData; got != actionReview {
				t.Errorf("back button = %q, want %q", got, actionReview)
			}
		})
	}
}

func TestFormatReviewPageMarksAnswer(t *testing.T) {
	text := formatReviewPage(&service.ReviewPage{
		Topic: entities.Topic{Name: "Torts"},
		Question: entities.Question{
			Prompt:       "Who owes a duty of care?",
			Options:      [entities.OptionsCount]string{"Nobody", "Everyone nearby", "The defendant", "The judge"},
			CorrectIndex: 2,
			Explanation:  "Neighbour principle",
		},
		Index: 0,
		Total: 4,
	})

	if !strings.Contains(text, "*✅ C\\) The defendant*") {
		t.Errorf("correct option not highlighted:\n%s", text)
	}
	if !strings.Contains(text, "1/4") || !strings.Contains(text, "_Neighbour principle_") {
		t.Errorf("missing position or explanation:\n%s", text)
	}
}

func TestFormatHistory(t *testing.T) {
	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	text := formatHistory([]entities.GameResult{
		{Mode: entities.ModeTimed, TopicID: "torts", Score: 1200, CorrectAnswers: 8, TotalQuestions: 10, CompletedAt: at},
		{Mode: entities.ModeDaily, Score: 500, CorrectAnswers: 4, TotalQuestions: 9, CompletedAt: at},
	}, map[string]string{"torts": "Torts"})

	for _, want := range []string{"Torts", "mixed", "May 4 09:30", "1200", "8/10 \\(80%\\)"} {
		if !strings.Contains(text, want) {
			t.Errorf("history is missing %q:\n%s", want, text)
		}
	}
}
