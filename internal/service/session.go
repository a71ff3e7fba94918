package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

// SessionSnapshot is a read-only copy of session state for display.
type SessionSnapshot struct {
	Mode         entities.GameMode
	TopicID      string
	Index        int
	Total        int
	Question     entities.Question
	Score        int
	Lives        *int
	TimeLeft     *int
	Combo        int
	ComboEnabled bool
}

// SessionObserver is told about every visible change of a session. Calls are
// made outside the engine lock and one at a time per session.
type SessionObserver interface {
	QuestionShown(ctx context.Context, userID int64, snap SessionSnapshot)
	AnswerRevealed(ctx context.Context, userID int64, snap SessionSnapshot, outcome entities.AnswerOutcome)
	SessionFinished(ctx context.Context, userID int64, result entities.GameResult)
}

// ResultRecorder persists a finished session.
type ResultRecorder interface {
	Record(ctx context.Context, result entities.GameResult, meta SessionMeta) error
}

// SessionMeta is what the engine knows about the player and topic of a session.
type SessionMeta struct {
	UserID      int64
	DisplayName string
	TopicID     string
	TopicIndex  int // position of the topic in display order, used by boss unlocks
}

// SessionEngine drives one GameSession from three event sources: answers,
// countdown ticks and the end of the explanation delay.
type SessionEngine struct {
	mu        sync.Mutex
	session   *entities.GameSession
	meta      SessionMeta
	pacing    Pacing
	observer  SessionObserver
	recorder  ResultRecorder
	logger    *zap.Logger
	now       func() time.Time
	startedAt time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	revealing bool
	stopped   bool
	result    *entities.GameResult
	done      chan struct{}
	notify    sync.Mutex // keeps observer calls ordered
}

func NewSessionEngine(
	session *entities.GameSession,
	meta SessionMeta,
	pacing Pacing,
	observer SessionObserver,
	recorder ResultRecorder,
	logger *zap.Logger,
) *SessionEngine {
	return &SessionEngine{
		session:  session,
		meta:     meta,
		pacing:   pacing,
		observer: observer,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start shows the first question and starts the countdown.
func (e *SessionEngine) Start(ctx context.Context) {
	e.mu.Lock()
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.startedAt = e.now()
	snap := e.snapshot()
	e.mu.Unlock()

	if e.session.Mode.Config().IsTimed() && e.pacing.TickInterval > 0 {
		go e.tickLoop()
	}

	e.notify.Lock()
	e.observer.QuestionShown(e.ctx, e.meta.UserID, snap)
	e.notify.Unlock()
}

// Answer submits the player's choice for the current question. It returns false
// when the answer was ignored: already answered, explanation showing, or over.
func (e *SessionEngine) Answer(selected int) bool {
	e.mu.Lock()
	if e.stopped || e.revealing {
		e.mu.Unlock()
		return false
	}
	outcome, ok := e.session.SubmitAnswer(selected)
	if !ok {
		e.mu.Unlock()
		return false
	}
	e.reveal(outcome)
	return true
}

// Tick advances the countdown by one second.
func (e *SessionEngine) Tick() {
	e.mu.Lock()
	if e.stopped || e.revealing {
		e.mu.Unlock()
		return
	}
	outcome, timedOut := e.session.Tick()
	if !timedOut {
		e.mu.Unlock()
		return
	}
	e.reveal(outcome)
}

// reveal is called with e.mu held and releases it.
func (e *SessionEngine) reveal(outcome entities.AnswerOutcome) {
	e.revealing = true
	snap := e.snapshot()
	ctx := e.ctx
	e.mu.Unlock()

	e.notify.Lock()
	e.observer.AnswerRevealed(ctx, e.meta.UserID, snap, outcome)
	e.notify.Unlock()

	after(e.pacing.ExplanationDelay, e.proceed)
}

// proceed runs when the explanation delay has elapsed.
func (e *SessionEngine) proceed() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.revealing = false

	if ended := e.session.Advance(); !ended {
		snap := e.snapshot()
		ctx := e.ctx
		e.mu.Unlock()

		e.notify.Lock()
		e.observer.QuestionShown(ctx, e.meta.UserID, snap)
		e.notify.Unlock()
		return
	}

	e.finish()
}

// finish is called with e.mu held and releases it.
func (e *SessionEngine) finish() {
	now := e.now()
	result := e.session.Result(e.meta.UserID, e.meta.TopicID, now.Sub(e.startedAt), now)
	e.result = &result
	e.stopped = true
	ctx := e.ctx
	e.cancel()
	e.mu.Unlock()

	e.notify.Lock()
	e.observer.SessionFinished(ctx, e.meta.UserID, result)
	e.notify.Unlock()

	go e.persist(result)
}

func (e *SessionEngine) persist(result entities.GameResult) {
	defer close(e.done)

	// The session context is already canceled; persistence outlives it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(e.ctx), 10*time.Second)
	defer cancel()

	if err := e.recorder.Record(ctx, result, e.meta); err != nil {
		e.logger.Error("failed to record game result",
			zap.Int64("user_id", result.UserID),
			zap.String("mode", string(result.Mode)),
			zap.Error(err),
		)
	}
}

// Stop abandons the session without recording a result.
func (e *SessionEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	if e.cancel != nil {
		e.cancel()
	}
	close(e.done)
}

// Done is closed once the session ended and its result was handed to the recorder,
// or when it was stopped.
func (e *SessionEngine) Done() <-chan struct{} {
	return e.done
}

// Result returns the final result once the session has finished.
func (e *SessionEngine) Result() (entities.GameResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return entities.GameResult{}, false
	}
	return *e.result, true
}

// Snapshot returns the current state of the session.
func (e *SessionEngine) Snapshot() SessionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *SessionEngine) Meta() SessionMeta {
	return e.meta
}

func (e *SessionEngine) tickLoop() {
	t := time.NewTicker(e.pacing.TickInterval)
	defer t.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-t.C:
			e.Tick()
		}
	}
}

func (e *SessionEngine) snapshot() SessionSnapshot {
	s := e.session
	snap := SessionSnapshot{
		Mode:         s.Mode,
		TopicID:      e.meta.TopicID,
		Index:        s.Index,
		Total:        len(s.Questions),
		Question:     s.Current(),
		Score:        s.Score,
		Combo:        s.Combo,
		ComboEnabled: s.Mode.Config().ComboEnabled,
	}
	if s.Lives != nil {
		lives := *s.Lives
		snap.Lives = &lives
	}
	if s.TimeLeft != nil {
		left := *s.TimeLeft
		snap.TimeLeft = &left
	}
	return snap
}
