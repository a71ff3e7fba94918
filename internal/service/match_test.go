package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

type matchObserver struct {
	mu      sync.Mutex
	seen    []entities.Match
	notices []error
}

func (o *matchObserver) MatchChanged(_ context.Context, _ int64, m entities.Match) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, m)
}

func (o *matchObserver) MatchNotice(_ context.Context, _ int64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notices = append(o.notices, err)
}

func (o *matchObserver) lastSeen() (entities.Match, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.seen) == 0 {
		return entities.Match{}, false
	}
	return o.seen[len(o.seen)-1], true
}

var (
	challenger = entities.Player{UserID: 1, DisplayName: "Alice"}
	opponent   = entities.Player{UserID: 2, DisplayName: "Bob"}
)

func newTestCoordinator() (*MatchCoordinator, *fakeMatches) {
	feed := newFakeFeed()
	matches := newFakeMatches(feed)
	questions := &fakeQuestions{byTopic: map[string][]entities.Question{
		"contracts": makeQuestions("contracts", 8),
		"tiny":      makeQuestions("tiny", 4),
	}}
	topics := &fakeTopics{topics: []entities.Topic{
		{ID: "contracts", Name: "Contracts"},
		{ID: "tiny", Name: "Tiny"},
	}}

	c := NewMatchCoordinator(matches, questions, topics, feed, Pacing{}, zap.NewNop())
	c.shuffle = noShuffle
	c.newID = func() string { return "match-1" }
	return c, matches
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCreateChallenge(t *testing.T) {
	c, _ := newTestCoordinator()
	ctx := context.Background()

	tests := []struct {
		name     string
		opponent entities.Player
		topicID  string
		wantErr  error
	}{
		{name: "self challenge", opponent: challenger, topicID: "contracts", wantErr: ErrSelfChallenge},
		{name: "not enough questions", opponent: opponent, topicID: "tiny", wantErr: ErrNotEnoughQuestions},
		{name: "ok", opponent: opponent, topicID: "contracts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := c.CreateChallenge(ctx, challenger, tt.opponent, tt.topicID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateChallenge() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if m.Status != entities.MatchWaiting || len(m.Questions) != entities.MatchQuestionCount {
				t.Errorf("match = status %s with %d questions", m.Status, len(m.Questions))
			}
			if m.TopicName != "Contracts" || m.OpponentID != opponent.UserID {
				t.Errorf("match topic/opponent = %q/%d", m.TopicName, m.OpponentID)
			}

			incoming, err := c.ListIncoming(ctx, opponent.UserID)
			if err != nil || len(incoming) != 1 {
				t.Fatalf("ListIncoming() = %d matches, %v", len(incoming), err)
			}
		})
	}
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	t.Run("only the opponent responds", func(t *testing.T) {
		c, _ := newTestCoordinator()
		m, _ := c.CreateChallenge(ctx, challenger, opponent, "contracts")
		if _, err := c.Respond(ctx, m.ID, challenger.UserID, true); !errors.Is(err, ErrNotOpponent) {
			t.Errorf("Respond() error = %v, want ErrNotOpponent", err)
		}
	})

	t.Run("decline is final", func(t *testing.T) {
		c, _ := newTestCoordinator()
		m, _ := c.CreateChallenge(ctx, challenger, opponent, "contracts")
		got, err := c.Respond(ctx, m.ID, opponent.UserID, false)
		if err != nil || got.Status != entities.MatchDeclined {
			t.Fatalf("Respond(decline) = %v, %v", got, err)
		}
		if _, err := c.Respond(ctx, m.ID, opponent.UserID, true); !errors.Is(err, entities.ErrInvalidTransition) {
			t.Errorf("accept after decline error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("accept twice", func(t *testing.T) {
		c, _ := newTestCoordinator()
		m, _ := c.CreateChallenge(ctx, challenger, opponent, "contracts")
		if _, err := c.Respond(ctx, m.ID, opponent.UserID, true); err != nil {
			t.Fatalf("Respond(accept) error = %v", err)
		}
		if _, err := c.Respond(ctx, m.ID, opponent.UserID, true); !errors.Is(err, entities.ErrInvalidTransition) {
			t.Errorf("second accept error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestSubmitAnswerOncePerQuestion(t *testing.T) {
	c, matches := newTestCoordinator()
	ctx := context.Background()
	m, _ := c.CreateChallenge(ctx, challenger, opponent, "contracts")

	if ok, err := c.SubmitAnswer(ctx, m.ID, challenger.UserID, 0, 0); ok || err != nil {
		t.Fatalf("answer on waiting match = %v, %v", ok, err)
	}
	if _, err := c.Respond(ctx, m.ID, opponent.UserID, true); err != nil {
		t.Fatal(err)
	}

	q := m.Questions[0]
	if ok, err := c.SubmitAnswer(ctx, m.ID, challenger.UserID, 0, q.CorrectIndex); !ok || err != nil {
		t.Fatalf("first answer = %v, %v", ok, err)
	}
	if ok, err := c.SubmitAnswer(ctx, m.ID, challenger.UserID, 0, wrong(q)); ok || err != nil {
		t.Fatalf("duplicate answer = %v, %v", ok, err)
	}
	if _, err := c.SubmitAnswer(ctx, m.ID, 99, 0, 0); !errors.Is(err, entities.ErrNotParticipant) {
		t.Errorf("stranger answer error = %v", err)
	}

	got, _ := matches.Get(ctx, m.ID)
	if got.Players[0].Score != entities.PointsPerCorrect || len(got.Players[0].Answers) != 1 {
		t.Errorf("challenger = %+v", got.Players[0])
	}
	if got.CurrentQuestionIndex != 0 {
		t.Errorf("index advanced with one answer: %d", got.CurrentQuestionIndex)
	}
}

func TestMatchPlaysToFinish(t *testing.T) {
	c, matches := newTestCoordinator()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := c.CreateChallenge(ctx, challenger, opponent, "contracts")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Respond(ctx, m.ID, opponent.UserID, true); err != nil {
		t.Fatal(err)
	}

	obs1, obs2 := &matchObserver{}, &matchObserver{}
	stop1, err := c.Watch(ctx, m.ID, challenger.UserID, obs1)
	if err != nil {
		t.Fatal(err)
	}
	defer stop1()
	stop2, err := c.Watch(ctx, m.ID, opponent.UserID, obs2)
	if err != nil {
		t.Fatal(err)
	}
	defer stop2()

	for i, q := range m.Questions {
		if _, err := c.SubmitAnswer(ctx, m.ID, challenger.UserID, i, q.CorrectIndex); err != nil {
			t.Fatal(err)
		}
		if _, err := c.SubmitAnswer(ctx, m.ID, opponent.UserID, i, wrong(q)); err != nil {
			t.Fatal(err)
		}
		waitFor(t, "advance", func() bool {
			cur, _ := matches.Get(ctx, m.ID)
			return cur.CurrentQuestionIndex > i || cur.Status == entities.MatchFinished
		})
	}

	final, _ := matches.Get(ctx, m.ID)
	if final.Status != entities.MatchFinished {
		t.Fatalf("status = %s, want finished", final.Status)
	}
	if final.Winner != entities.WinnerFor(challenger.UserID) {
		t.Errorf("winner = %q", final.Winner)
	}
	if final.Players[0].Score != 500 || final.Players[1].Score != 0 {
		t.Errorf("scores = %d/%d, want 500/0", final.Players[0].Score, final.Players[1].Score)
	}
	if final.CurrentQuestionIndex != entities.MatchQuestionCount-1 {
		t.Errorf("final index = %d", final.CurrentQuestionIndex)
	}

	for _, obs := range []*matchObserver{obs1, obs2} {
		waitFor(t, "final render", func() bool {
			last, ok := obs.lastSeen()
			return ok && last.Status == entities.MatchFinished
		})
		obs.mu.Lock()
		if len(obs.notices) != 0 {
			t.Errorf("unexpected notices: %v", obs.notices)
		}
		obs.mu.Unlock()
	}
}

func TestWatchRejectsStrangers(t *testing.T) {
	c, _ := newTestCoordinator()
	ctx := context.Background()
	m, _ := c.CreateChallenge(ctx, challenger, opponent, "contracts")

	if _, err := c.Watch(ctx, m.ID, 42, &matchObserver{}); !errors.Is(err, entities.ErrNotParticipant) {
		t.Errorf("Watch() error = %v, want ErrNotParticipant", err)
	}
}
