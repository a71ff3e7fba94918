package entities

import "time"

// GameResult is the immutable outcome of a completed game session.
type GameResult struct {
	ID             int64
	UserID         int64
	Mode           GameMode
	TopicID        string
	Score          int
	CorrectAnswers int
	TotalQuestions int
	TimeTaken      int // seconds
	MaxCombo       int
	CompletedAt    time.Time
}

// Accuracy returns the share of correct answers in [0,1].
func (r GameResult) Accuracy() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.TotalQuestions)
}

// Passed reports whether the result meets the pass rule of its mode.
func (r GameResult) Passed() bool {
	return r.Mode.Config().Passed(r.CorrectAnswers, r.TotalQuestions)
}
