package entities

import (
	"errors"
	"fmt"
	"strings"
)

// OptionsCount is the fixed number of answer choices per question.
const OptionsCount = 4

// NoAnswer is the sentinel answer index recorded when the timer runs out.
const NoAnswer = -1

var ErrInvalidQuestion = errors.New("invalid question")

// Difficulty labels a question for display and filtering.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// QuestionRecord is a quiz question as it is stored: options by letter and the
// correct answer as a letter from A to D.
type QuestionRecord struct {
	ID            string
	TopicID       string
	Question      string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string // "A", "B", "C" or "D"
	Explanation   string
	Difficulty    Difficulty
}

// Question is a normalized question used by game sessions and matches.
type Question struct {
	ID           string               `json:"id"`
	TopicID      string               `json:"topicId"`
	Prompt       string               `json:"question"`
	Options      [OptionsCount]string `json:"options"`
	CorrectIndex int                  `json:"correctAnswer"`
	Explanation  string               `json:"explanation"`
	Difficulty   Difficulty           `json:"difficulty"`
}

// Normalize converts a stored record into a Question with a numeric correct index.
func (r QuestionRecord) Normalize() (Question, error) {
	idx := strings.Index("ABCD", strings.ToUpper(strings.TrimSpace(r.CorrectAnswer)))
	if idx < 0 || len(strings.TrimSpace(r.CorrectAnswer)) != 1 {
		return Question{}, fmt.Errorf("%w: question %s has correct answer %q", ErrInvalidQuestion, r.ID, r.CorrectAnswer)
	}

	return Question{
		ID:           r.ID,
		TopicID:      r.TopicID,
		Prompt:       r.Question,
		Options:      [OptionsCount]string{r.OptionA, r.OptionB, r.OptionC, r.OptionD},
		CorrectIndex: idx,
		Explanation:  r.Explanation,
		Difficulty:   r.Difficulty,
	}, nil
}

// IsCorrect reports whether selected is the correct choice. NoAnswer is never correct.
func (q Question) IsCorrect(selected int) bool {
	return selected != NoAnswer && selected == q.CorrectIndex
}

// CorrectOption returns the text of the correct choice.
func (q Question) CorrectOption() string {
	return q.Options[q.CorrectIndex]
}
