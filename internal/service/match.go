package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
)

var (
	ErrSelfChallenge = errors.New("cannot challenge yourself")
	ErrNotOpponent   = errors.New("only the challenged player can respond")
)

// MatchObserver renders a match for one participant.
type MatchObserver interface {
	MatchChanged(ctx context.Context, userID int64, m entities.Match)
	// MatchNotice reports a failed write that the next change will retry.
	MatchNotice(ctx context.Context, userID int64, err error)
}

// MatchCoordinator runs 1v1 matches over the shared match record. Each
// participant watches the record and applies entities.NextAction as a
// conditional write, so both of them doing it at once is harmless.
type MatchCoordinator struct {
	matches   MatchRepository
	questions QuestionStore
	topics    TopicRepository
	feed      MatchFeed
	pacing    Pacing
	logger    *zap.Logger
	newID     func() string
	shuffle   func(n int, swap func(i, j int))
}

func NewMatchCoordinator(
	matches MatchRepository,
	questions QuestionStore,
	topics TopicRepository,
	feed MatchFeed,
	pacing Pacing,
	logger *zap.Logger,
) *MatchCoordinator {
	return &MatchCoordinator{
		matches:   matches,
		questions: questions,
		topics:    topics,
		feed:      feed,
		pacing:    pacing,
		logger:    logger,
		newID:     uuid.NewString,
		shuffle:   rand.Shuffle,
	}
}

// CreateChallenge stores a waiting match between challenger and opponent over
// MatchQuestionCount random questions of topicID.
func (c *MatchCoordinator) CreateChallenge(ctx context.Context, challenger, opponent entities.Player, topicID string) (*entities.Match, error) {
	if challenger.UserID == opponent.UserID {
		return nil, ErrSelfChallenge
	}

	topic, err := c.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	pool, err := c.questions.ListQuestions(ctx, repository.QuestionFilter{TopicID: topicID})
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(pool) < entities.MatchQuestionCount {
		return nil, ErrNotEnoughQuestions
	}

	questions := make([]entities.Question, len(pool))
	copy(questions, pool)
	c.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	questions = questions[:entities.MatchQuestionCount]

	m := entities.NewMatch(c.newID(), topic.ID, topic.Name, challenger, opponent, questions)
	if err := c.matches.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}

	c.logger.Info("challenge created",
		zap.String("match_id", m.ID),
		zap.Int64("challenger_id", challenger.UserID),
		zap.Int64("opponent_id", opponent.UserID),
		zap.String("topic_id", topicID),
	)
	return m, nil
}

// Respond accepts or declines a waiting challenge on behalf of responderID.
func (c *MatchCoordinator) Respond(ctx context.Context, matchID string, responderID int64, accept bool) (*entities.Match, error) {
	m, err := c.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if responderID != m.OpponentID {
		return nil, ErrNotOpponent
	}

	next := entities.MatchDeclined
	if accept {
		next = entities.MatchActive
	}
	from := m.Status
	if err := m.Transition(next, time.Now()); err != nil {
		return nil, err
	}

	applied, err := c.matches.UpdateStatus(ctx, matchID, from, next)
	if err != nil {
		return nil, fmt.Errorf("respond to challenge: %w", err)
	}
	if !applied {
		return nil, entities.ErrInvalidTransition
	}

	c.logger.Info("challenge answered",
		zap.String("match_id", matchID),
		zap.String("status", string(next)),
	)
	return m, nil
}

// SubmitAnswer records userID's choice for question index. Answers for a
// question that is no longer current, and second answers, are ignored and
// reported as false.
func (c *MatchCoordinator) SubmitAnswer(ctx context.Context, matchID string, userID int64, index, selected int) (bool, error) {
	m, err := c.matches.Get(ctx, matchID)
	if err != nil {
		return false, err
	}
	slot, err := m.Slot(userID)
	if err != nil {
		return false, err
	}
	if m.CurrentQuestionIndex != index {
		return false, nil
	}

	correct, ok := m.RecordAnswer(slot, selected, time.Now())
	if !ok {
		return false, nil
	}
	points := 0
	if correct {
		points = entities.PointsPerCorrect
	}

	applied, err := c.matches.RecordAnswer(ctx, matchID, slot, index, selected, points)
	if err != nil {
		return false, fmt.Errorf("submit match answer: %w", err)
	}
	return applied, nil
}

// Get returns the current match record.
func (c *MatchCoordinator) Get(ctx context.Context, matchID string) (*entities.Match, error) {
	return c.matches.Get(ctx, matchID)
}

// ListIncoming returns challenges waiting for userID to respond.
func (c *MatchCoordinator) ListIncoming(ctx context.Context, userID int64) ([]*entities.Match, error) {
	return c.matches.ListIncoming(ctx, userID)
}

// Subscribe calls onChange after every change of the match until unsubscribed.
func (c *MatchCoordinator) Subscribe(matchID string, onChange func()) func() {
	return c.feed.Subscribe(matchID, onChange)
}

// Watch follows the match on behalf of participant userID: every observed
// change is rendered through observer and drives advancement. It runs until
// the match reaches a terminal status, ctx is done or stop is called.
func (c *MatchCoordinator) Watch(ctx context.Context, matchID string, userID int64, observer MatchObserver) (stop func(), err error) {
	m, err := c.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if _, err := m.Slot(userID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &matchWatch{
		c:        c,
		matchID:  matchID,
		userID:   userID,
		observer: observer,
		changed:  make(chan struct{}, 1),
		logger:   c.logger.With(zap.String("match_id", matchID), zap.Int64("user_id", userID)),
	}

	unsubscribe := c.feed.Subscribe(matchID, w.signal)
	w.signal()
	go func() {
		defer unsubscribe()
		w.run(ctx)
		cancel()
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

type matchWatch struct {
	c        *MatchCoordinator
	matchID  string
	userID   int64
	observer MatchObserver
	changed  chan struct{}
	logger   *zap.Logger

	rendered    bool
	lastVersion int64
}

// signal runs on the feed goroutine and never blocks; bursts collapse into one
// evaluation.
func (w *matchWatch) signal() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func (w *matchWatch) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.changed:
			if done := w.evaluate(ctx); done {
				return
			}
		}
	}
}

// evaluate reads the record, renders it and applies the next action.
// It returns true once the match reached a terminal status.
func (w *matchWatch) evaluate(ctx context.Context) bool {
	m, err := w.c.matches.Get(ctx, w.matchID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		w.logger.Warn("failed to read match", zap.Error(err))
		w.observer.MatchNotice(ctx, w.userID, err)
		return false
	}

	if !w.rendered || m.Version != w.lastVersion {
		w.rendered, w.lastVersion = true, m.Version
		w.observer.MatchChanged(ctx, w.userID, *m)
	}
	if m.Status.IsTerminal() {
		return true
	}

	action := entities.NextAction(*m)
	if action.Kind == entities.ActionNone {
		return false
	}

	delay := w.c.pacing.MatchAdvanceDelay
	if delay <= 0 {
		w.apply(ctx, action)
		return false
	}

	go func() {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			w.apply(ctx, action)
		}
	}()
	return false
}

func (w *matchWatch) apply(ctx context.Context, a entities.Action) {
	var err error
	switch a.Kind {
	case entities.ActionAdvance:
		_, err = w.c.matches.Advance(ctx, w.matchID, a.ExpectedIndex)
	case entities.ActionFinish:
		_, err = w.c.matches.Finish(ctx, w.matchID, a.ExpectedIndex, a.Winner)
	}
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		return
	}

	w.logger.Warn("failed to apply match action",
		zap.Stringer("action", a.Kind),
		zap.Int("expected_index", a.ExpectedIndex),
		zap.Error(err),
	)
	w.observer.MatchNotice(ctx, w.userID, err)
}
