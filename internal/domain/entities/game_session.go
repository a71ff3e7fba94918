package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoQuestions     = errors.New("game session has no questions")
	ErrUnknownGameMode = errors.New("unknown game mode")
)

// GameSession is the in-memory state of one single-player play-through.
// It is not safe for concurrent use; callers serialize events.
type GameSession struct {
	Mode      GameMode
	Questions []Question // fixed at session start
	Index     int        // current question, never decreases
	Answers   []*int     // recorded answer per question, nil when unanswered
	Score     int
	Lives     *int // nil when the mode does not track lives
	TimeLeft  *int // seconds left for the current question, nil when untimed
	Combo     int
	MaxCombo  int
	Finished  bool
}

// AnswerOutcome describes the effect of one submitted or synthesized answer.
type AnswerOutcome struct {
	QuestionIndex int
	Selected      int
	Correct       bool
	TimedOut      bool
	Points        int
	Score         int
	Combo         int
	Lives         *int
}

// NewGameSession creates a session for mode over an already prepared question list.
func NewGameSession(mode GameMode, questions []Question) (*GameSession, error) {
	cfg := mode.Config()
	if cfg.Mode == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameMode, mode)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	s := &GameSession{
		Mode:      mode,
		Questions: questions,
		Answers:   make([]*int, len(questions)),
		Combo:     1,
		MaxCombo:  1,
	}
	if cfg.HasLives() {
		lives := cfg.Lives
		s.Lives = &lives
	}
	s.resetTimer()

	return s, nil
}

// Current returns the question currently shown to the player.
func (s *GameSession) Current() Question {
	return s.Questions[s.Index]
}

// Answered reports whether the current question already has an answer.
func (s *GameSession) Answered() bool {
	return s.Answers[s.Index] != nil
}

// SubmitAnswer records selected for the current question and applies scoring.
// It returns false without changing anything when the question is already answered
// or the session is over. Indexes outside the choice range count as NoAnswer.
func (s *GameSession) SubmitAnswer(selected int) (AnswerOutcome, bool) {
	if s.Finished || s.Answered() {
		return AnswerOutcome{}, false
	}
	if selected < 0 || selected >= OptionsCount {
		selected = NoAnswer
	}

	answer := selected
	s.Answers[s.Index] = &answer

	q := s.Current()
	out := AnswerOutcome{
		QuestionIndex: s.Index,
		Selected:      selected,
		Correct:       q.IsCorrect(selected),
		TimedOut:      selected == NoAnswer,
	}

	if out.Correct {
		out.Points = (s.Mode.Config().BasePoints + s.timeLeft()*2) * s.Combo
		s.Score += out.Points
		s.Combo++
		if s.Combo > s.MaxCombo {
			s.MaxCombo = s.Combo
		}
	} else {
		s.Combo = 1
		if s.Lives != nil && *s.Lives > 0 {
			*s.Lives--
		}
	}

	out.Score = s.Score
	out.Combo = s.Combo
	if s.Lives != nil {
		lives := *s.Lives
		out.Lives = &lives
	}

	return out, true
}

// Tick advances the countdown by one second. When it reaches zero with no answer
// it submits NoAnswer and returns that outcome with true.
func (s *GameSession) Tick() (AnswerOutcome, bool) {
	if s.Finished || s.TimeLeft == nil || s.Answered() {
		return AnswerOutcome{}, false
	}

	if *s.TimeLeft > 0 {
		*s.TimeLeft--
	}
	if *s.TimeLeft > 0 {
		return AnswerOutcome{}, false
	}

	return s.SubmitAnswer(NoAnswer)
}

// Advance moves past an answered question. It returns true when the session ends,
// either because lives ran out or the last question was answered.
// Advancing an unanswered question is a no-op.
func (s *GameSession) Advance() bool {
	if s.Finished {
		return true
	}
	if !s.Answered() {
		return false
	}

	if s.OutOfLives() || s.Index == len(s.Questions)-1 {
		s.Finished = true
		return true
	}

	s.Index++
	s.resetTimer()
	return false
}

// OutOfLives reports whether the mode tracks lives and none are left.
func (s *GameSession) OutOfLives() bool {
	return s.Lives != nil && *s.Lives <= 0
}

// CorrectCount counts recorded answers that match their question.
func (s *GameSession) CorrectCount() int {
	n := 0
	for i, a := range s.Answers {
		if a != nil && s.Questions[i].IsCorrect(*a) {
			n++
		}
	}
	return n
}

// Result aggregates the session into a GameResult.
func (s *GameSession) Result(userID int64, topicID string, elapsed time.Duration, completedAt time.Time) GameResult {
	return GameResult{
		UserID:         userID,
		Mode:           s.Mode,
		TopicID:        topicID,
		Score:          s.Score,
		CorrectAnswers: s.CorrectCount(),
		TotalQuestions: len(s.Questions),
		TimeTaken:      int(elapsed / time.Second),
		MaxCombo:       s.MaxCombo,
		CompletedAt:    completedAt,
	}
}

func (s *GameSession) timeLeft() int {
	if s.TimeLeft == nil {
		return 0
	}
	return *s.TimeLeft
}

func (s *GameSession) resetTimer() {
	cfg := s.Mode.Config()
	if !cfg.IsTimed() {
		s.TimeLeft = nil
		return
	}
	t := cfg.TimePerQuestion
	s.TimeLeft = &t
}
