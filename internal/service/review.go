package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
)

var ErrNoQuestions = errors.New("topic has no questions")

// ReviewPage is one question of a topic shown with its answer.
type ReviewPage struct {
	Topic    entities.Topic
	Question entities.Question
	Index    int
	Total    int
}

// HasPrev reports whether a page exists before this one.
func (p ReviewPage) HasPrev() bool { return p.Index > 0 }

// HasNext reports whether a page exists after this one.
func (p ReviewPage) HasNext() bool { return p.Index < p.Total-1 }

// ReviewService lets players browse the questions of a topic outside a game.
type ReviewService struct {
	questions QuestionStore
	topics    TopicRepository
}

func NewReviewService(questions QuestionStore, topics TopicRepository) *ReviewService {
	return &ReviewService{questions: questions, topics: topics}
}

// Page returns question index of topicID in storage order. Out of range
// indexes are clamped to the first or last question.
func (s *ReviewService) Page(ctx context.Context, topicID string, index int) (*ReviewPage, error) {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListQuestions(ctx, repository.QuestionFilter{TopicID: topicID})
	if err != nil {
		return nil, fmt.Errorf("review questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	index = max(0, min(index, len(questions)-1))
	return &ReviewPage{
		Topic:    *topic,
		Question: questions[index],
		Index:    index,
		Total:    len(questions),
	}, nil
}
