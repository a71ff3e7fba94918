package httpapi

import (
	"time"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type playerResponse struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Answered    int    `json:"answered"`
}

type questionResponse struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// MatchResponse is the public view of a match. Correct answers are never
// exposed while the match is running.
type MatchResponse struct {
	ID                   string            `json:"id"`
	TopicID              string            `json:"topicId"`
	TopicName            string            `json:"topicName"`
	Status               string            `json:"status"`
	Players              []playerResponse  `json:"players"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	TotalQuestions       int               `json:"totalQuestions"`
	Question             *questionResponse `json:"question,omitempty"`
	Winner               string            `json:"winnerId,omitempty"`
	Version              int64             `json:"version"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

func newMatchResponse(m *entities.Match) MatchResponse {
	resp := MatchResponse{
		ID:                   m.ID,
		TopicID:              m.TopicID,
		TopicName:            m.TopicName,
		Status:               string(m.Status),
		CurrentQuestionIndex: m.CurrentQuestionIndex,
		TotalQuestions:       len(m.Questions),
		Winner:               string(m.Winner),
		Version:              m.Version,
		UpdatedAt:            m.UpdatedAt,
	}

	for _, p := range m.Players {
		resp.Players = append(resp.Players, playerResponse{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Answered:    len(p.Answers),
		})
	}

	if m.Status == entities.MatchActive && m.CurrentQuestionIndex < len(m.Questions) {
		q := m.CurrentQuestion()
		resp.Question = &questionResponse{Prompt: q.Prompt, Options: q.Options[:]}
	}

	return resp
}
