package entities

import (
	"errors"
	"strconv"
	"time"
)

// MatchQuestionCount is the number of questions in every match.
const MatchQuestionCount = 5

// PointsPerCorrect is the flat match score for a correct answer.
const PointsPerCorrect = 100

var (
	ErrInvalidTransition = errors.New("invalid match status transition")
	ErrNotParticipant    = errors.New("user is not a participant of the match")
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchWaiting  MatchStatus = "waiting"
	MatchActive   MatchStatus = "active"
	MatchFinished MatchStatus = "finished"
	MatchDeclined MatchStatus = "declined"
	MatchExpired  MatchStatus = "expired" // challenge was never answered
)

// IsTerminal reports whether no further transitions are possible.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchFinished || s == MatchDeclined || s == MatchExpired
}

// CanTransition reports whether moving from s to next is allowed.
func (s MatchStatus) CanTransition(next MatchStatus) bool {
	switch s {
	case MatchWaiting:
		return next == MatchActive || next == MatchDeclined || next == MatchExpired
	case MatchActive:
		return next == MatchActive || next == MatchFinished
	default:
		return false
	}
}

// Winner is a player id in decimal form, WinnerDraw, or empty when undecided.
type Winner string

const WinnerDraw Winner = "draw"

// WinnerFor returns the Winner value for a user.
func WinnerFor(userID int64) Winner {
	return Winner(strconv.FormatInt(userID, 10))
}

// Player is one slot of a match.
type Player struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Answers     []int  `json:"answers"`
}

// HasAnswered reports whether the player has an answer for question index.
func (p Player) HasAnswered(index int) bool {
	return len(p.Answers) > index
}

// Match is the shared record two players coordinate through.
type Match struct {
	ID                   string      `json:"id"`
	TopicID              string      `json:"topicId"`
	TopicName            string      `json:"topicName"`
	Players              [2]Player   `json:"players"` // slot 0 is the challenger
	OpponentID           int64       `json:"opponentId"`
	Questions            []Question  `json:"questions"`
	CurrentQuestionIndex int         `json:"currentQuestionIndex"`
	Status               MatchStatus `json:"status"`
	Winner               Winner      `json:"winnerId,omitempty"`
	Version              int64       `json:"version"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// NewMatch builds a waiting challenge with both slots pre-populated.
func NewMatch(id, topicID, topicName string, challenger, opponent Player, questions []Question) *Match {
	now := time.Now()
	challenger.Score, challenger.Answers = 0, []int{}
	opponent.Score, opponent.Answers = 0, []int{}

	return &Match{
		ID:         id,
		TopicID:    topicID,
		TopicName:  topicName,
		Players:    [2]Player{challenger, opponent},
		OpponentID: opponent.UserID,
		Questions:  questions,
		Status:     MatchWaiting,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Slot returns the slot index of userID.
func (m *Match) Slot(userID int64) (int, error) {
	for i, p := range m.Players {
		if p.UserID == userID {
			return i, nil
		}
	}
	return -1, ErrNotParticipant
}

// CurrentQuestion returns the question at the shared index.
func (m *Match) CurrentQuestion() Question {
	return m.Questions[m.CurrentQuestionIndex]
}

// IsLastQuestion reports whether the shared index points at the final question.
func (m *Match) IsLastQuestion() bool {
	return m.CurrentQuestionIndex == len(m.Questions)-1
}

// BothAnswered reports whether every slot has answered the current question.
func (m *Match) BothAnswered() bool {
	for _, p := range m.Players {
		if !p.HasAnswered(m.CurrentQuestionIndex) {
			return false
		}
	}
	return true
}

// DecideWinner compares final scores. Strictly higher wins, equal scores draw.
func DecideWinner(a, b Player) Winner {
	switch {
	case a.Score > b.Score:
		return WinnerFor(a.UserID)
	case b.Score > a.Score:
		return WinnerFor(b.UserID)
	default:
		return WinnerDraw
	}
}

// ActionKind is what a participant should write after observing a match.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionAdvance
	ActionFinish
)

func (k ActionKind) String() string {
	switch k {
	case ActionAdvance:
		return "advance"
	case ActionFinish:
		return "finish"
	default:
		return "none"
	}
}

// Action is a conditional write: it only applies while the match is active and
// still at ExpectedIndex.
type Action struct {
	Kind          ActionKind
	ExpectedIndex int
	Winner        Winner // set for ActionFinish
}

// NextAction is the advancement rule. It depends only on the observed state.
func NextAction(m Match) Action {
	if m.Status != MatchActive || len(m.Questions) == 0 || !m.BothAnswered() {
		return Action{Kind: ActionNone}
	}

	if m.IsLastQuestion() {
		return Action{
			Kind:          ActionFinish,
			ExpectedIndex: m.CurrentQuestionIndex,
			Winner:        DecideWinner(m.Players[0], m.Players[1]),
		}
	}

	return Action{Kind: ActionAdvance, ExpectedIndex: m.CurrentQuestionIndex}
}

// Apply performs a on m as a compare-and-set and reports whether m changed.
// Applying the same action twice leaves m as after the first application.
func (m *Match) Apply(a Action, now time.Time) bool {
	if m.Status != MatchActive || m.CurrentQuestionIndex != a.ExpectedIndex {
		return false
	}

	switch a.Kind {
	case ActionAdvance:
		m.CurrentQuestionIndex = a.ExpectedIndex + 1
	case ActionFinish:
		m.Status = MatchFinished
		m.Winner = a.Winner
	default:
		return false
	}

	m.Version++
	m.UpdatedAt = now
	return true
}

// RecordAnswer appends an answer for the player in slot and scores it.
// It returns false when the match is not active or the player already answered
// the current question.
func (m *Match) RecordAnswer(slot, selected int, now time.Time) (correct bool, ok bool) {
	if m.Status != MatchActive || slot < 0 || slot > 1 {
		return false, false
	}
	p := &m.Players[slot]
	if len(p.Answers) != m.CurrentQuestionIndex {
		return false, false
	}

	correct = m.CurrentQuestion().IsCorrect(selected)
	p.Answers = append(p.Answers, selected)
	if correct {
		p.Score += PointsPerCorrect
	}

	m.Version++
	m.UpdatedAt = now
	return correct, true
}

// Transition moves the match to next when the lifecycle allows it.
func (m *Match) Transition(next MatchStatus, now time.Time) error {
	if next == m.Status || !m.Status.CanTransition(next) {
		return ErrInvalidTransition
	}
	m.Status = next
	m.Version++
	m.UpdatedAt = now
	return nil
}

// ForfeitWinner picks the winner of a stalled match: the player who answered
// more questions, falling back to the score comparison.
func ForfeitWinner(m Match) Winner {
	a, b := m.Players[0], m.Players[1]
	switch {
	case len(a.Answers) > len(b.Answers):
		return WinnerFor(a.UserID)
	case len(b.Answers) > len(a.Answers):
		return WinnerFor(b.UserID)
	default:
		return DecideWinner(a, b)
	}
}
