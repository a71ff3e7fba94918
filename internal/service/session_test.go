package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

type sessionEvent struct {
	kind    string
	snap    SessionSnapshot
	outcome entities.AnswerOutcome
	result  entities.GameResult
}

type recordingObserver struct {
	mu     sync.Mutex
	events []sessionEvent
}

func (o *recordingObserver) QuestionShown(_ context.Context, _ int64, snap SessionSnapshot) {
	o.add(sessionEvent{kind: "question", snap: snap})
}

func (o *recordingObserver) AnswerRevealed(_ context.Context, _ int64, snap SessionSnapshot, outcome entities.AnswerOutcome) {
	o.add(sessionEvent{kind: "answer", snap: snap, outcome: outcome})
}

func (o *recordingObserver) SessionFinished(_ context.Context, _ int64, result entities.GameResult) {
	o.add(sessionEvent{kind: "finished", result: result})
}

func (o *recordingObserver) add(e sessionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) kinds() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.kind
	}
	return out
}

func (o *recordingObserver) last() sessionEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func newTestEngine(t *testing.T, mode entities.GameMode, questions []entities.Question, pacing Pacing) (*SessionEngine, *recordingObserver, *fakeRecorder) {
	t.Helper()
	session, err := entities.NewGameSession(mode, questions)
	if err != nil {
		t.Fatalf("NewGameSession() error = %v", err)
	}
	obs := &recordingObserver{}
	rec := &fakeRecorder{}
	meta := SessionMeta{UserID: 7, DisplayName: "Ada", TopicID: "contracts"}
	return NewSessionEngine(session, meta, pacing, obs, rec, zap.NewNop()), obs, rec
}

func waitDone(t *testing.T, e *SessionEngine) {
	t.Helper()
	select {
	case <-e.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
}

func TestSessionEngineRunsToResult(t *testing.T) {
	questions := makeQuestions("contracts", 5)
	engine, obs, rec := newTestEngine(t, entities.ModeTimed, questions, Pacing{})

	engine.Start(context.Background())
	for _, q := range questions {
		if !engine.Answer(q.CorrectIndex) {
			t.Fatalf("answer for %s was ignored", q.ID)
		}
	}
	waitDone(t, engine)

	result, ok := engine.Result()
	if !ok {
		t.Fatal("Result() not available after finish")
	}
	// (100 + 30*2) * (1+2+3+4+5)
	if result.Score != 2400 {
		t.Errorf("Score = %d, want 2400", result.Score)
	}
	if result.CorrectAnswers != 5 || result.TotalQuestions != 5 {
		t.Errorf("correct/total = %d/%d, want 5/5", result.CorrectAnswers, result.TotalQuestions)
	}
	if result.MaxCombo != 6 {
		t.Errorf("MaxCombo = %d, want 6", result.MaxCombo)
	}

	kinds := obs.kinds()
	if len(kinds) != 11 || kinds[0] != "question" || kinds[len(kinds)-1] != "finished" {
		t.Errorf("observer events = %v", kinds)
	}
	if rec.count() != 1 {
		t.Fatalf("recorded %d results, want 1", rec.count())
	}
	if rec.results[0].meta.TopicID != "contracts" {
		t.Errorf("recorded topic = %q", rec.results[0].meta.TopicID)
	}
}

func TestSessionEngineIgnoresInputWhileRevealing(t *testing.T) {
	questions := makeQuestions("torts", 3)
	engine, obs, rec := newTestEngine(t, entities.ModeTimed, questions, Pacing{ExplanationDelay: time.Hour})

	engine.Start(context.Background())
	if !engine.Answer(questions[0].CorrectIndex) {
		t.Fatal("first answer ignored")
	}
	if engine.Answer(questions[0].CorrectIndex) {
		t.Error("second answer accepted during explanation")
	}
	engine.Tick()

	if got := obs.kinds(); len(got) != 2 {
		t.Errorf("observer events = %v, want question and answer", got)
	}
	if snap := engine.Snapshot(); snap.Index != 0 || snap.Score != 160 {
		t.Errorf("snapshot index/score = %d/%d, want 0/160", snap.Index, snap.Score)
	}

	engine.Stop()
	waitDone(t, engine)
	if rec.count() != 0 {
		t.Error("stopped session recorded a result")
	}
	if _, ok := engine.Result(); ok {
		t.Error("stopped session has a result")
	}
}

func TestSessionEngineTimeout(t *testing.T) {
	questions := makeQuestions("torts", 2)
	engine, obs, _ := newTestEngine(t, entities.ModeLightning, questions, Pacing{})

	engine.Start(context.Background())
	for i := 0; i < entities.ModeLightning.Config().TimePerQuestion; i++ {
		engine.Tick()
	}

	events := obs.kinds()
	if len(events) != 3 || events[1] != "answer" || events[2] != "question" {
		t.Fatalf("observer events = %v", events)
	}
	answer := obs.events[1].outcome
	if !answer.TimedOut || answer.Correct || answer.Selected != entities.NoAnswer {
		t.Errorf("timeout outcome = %+v", answer)
	}
	if snap := engine.Snapshot(); snap.Index != 1 || snap.TimeLeft == nil || *snap.TimeLeft != 15 {
		t.Errorf("after timeout snapshot = %+v", snap)
	}
	engine.Stop()
}

func TestSessionEngineSurvivalEndsOnLives(t *testing.T) {
	questions := makeQuestions("crim", 10)
	engine, obs, rec := newTestEngine(t, entities.ModeSurvival, questions, Pacing{})

	engine.Start(context.Background())
	for i := 0; i < 3; i++ {
		engine.Answer(wrong(questions[i]))
	}
	waitDone(t, engine)

	if last := obs.last(); last.kind != "finished" {
		t.Fatalf("last event = %s, want finished", last.kind)
	}
	result, _ := engine.Result()
	if result.CorrectAnswers != 0 || result.Score != 0 {
		t.Errorf("result = %+v", result)
	}
	if rec.count() != 1 {
		t.Errorf("recorded %d results, want 1", rec.count())
	}
}

func TestSessionEngineUntimedBossHasNoTicks(t *testing.T) {
	questions := makeQuestions("boss", 15)
	engine, obs, _ := newTestEngine(t, entities.ModeBoss, questions, Pacing{TickInterval: time.Millisecond})

	engine.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	if got := obs.kinds(); len(got) != 1 {
		t.Errorf("untimed session produced events %v", got)
	}
	if snap := engine.Snapshot(); snap.TimeLeft != nil || snap.Lives == nil || *snap.Lives != 3 {
		t.Errorf("boss snapshot = %+v", snap)
	}
	engine.Stop()
}
