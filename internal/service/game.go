package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
)

var (
	ErrNotEnoughQuestions   = errors.New("not enough questions for this game")
	ErrInvalidQuestionCount = errors.New("question count must be between 5 and 20")
	ErrTopicLocked          = errors.New("topic is locked in boss mode")
)

// GameService prepares single-player sessions.
type GameService struct {
	questions QuestionStore
	topics    TopicRepository
	stats     StatisticsRepository
	settings  SettingsRepository
	recorder  ResultRecorder
	pacing    Pacing
	logger    *zap.Logger
	shuffle   func(n int, swap func(i, j int))
}

func NewGameService(
	questions QuestionStore,
	topics TopicRepository,
	stats StatisticsRepository,
	settings SettingsRepository,
	recorder ResultRecorder,
	pacing Pacing,
	logger *zap.Logger,
) *GameService {
	return &GameService{
		questions: questions,
		topics:    topics,
		stats:     stats,
		settings:  settings,
		recorder:  recorder,
		pacing:    pacing,
		logger:    logger,
		shuffle:   rand.Shuffle,
	}
}

// StartRequest selects what to play.
type StartRequest struct {
	UserID        int64
	DisplayName   string // name submitted to leaderboards
	Mode          entities.GameMode
	TopicID       string // ignored for daily
	QuestionCount int    // 0 uses the player's setting; only timed and lightning
}

// Topics returns topics in display order.
func (s *GameService) Topics(ctx context.Context) ([]entities.Topic, error) {
	return s.topics.List(ctx)
}

// UnlockedBossLevel returns how many boss topics past the first the player unlocked.
func (s *GameService) UnlockedBossLevel(ctx context.Context, userID int64) (int, error) {
	stats, err := s.stats.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return stats.BossLevel, nil
}

// StartSession validates the request, prepares the question list and returns an
// engine that is not started yet. No session exists when an error is returned.
func (s *GameService) StartSession(ctx context.Context, req StartRequest, observer SessionObserver) (*SessionEngine, error) {
	cfg := req.Mode.Config()
	if cfg.Mode == "" {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownGameMode, req.Mode)
	}

	count, err := s.questionCount(ctx, cfg, req)
	if err != nil {
		return nil, err
	}

	meta := SessionMeta{UserID: req.UserID, DisplayName: req.DisplayName, TopicID: req.TopicID}
	filter := repository.QuestionFilter{TopicID: req.TopicID}

	if cfg.WholePool {
		meta.TopicID = entities.DailyTopicID
		filter = repository.QuestionFilter{All: true}
	} else {
		index, err := s.topicIndex(ctx, req.TopicID)
		if err != nil {
			return nil, err
		}
		meta.TopicIndex = index

		if req.Mode == entities.ModeBoss {
			level, err := s.UnlockedBossLevel(ctx, req.UserID)
			if err != nil {
				return nil, fmt.Errorf("get boss level: %w", err)
			}
			if index > level {
				return nil, ErrTopicLocked
			}
		}
	}

	pool, err := s.questions.ListQuestions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	questions, err := s.prepare(pool, count)
	if err != nil {
		return nil, err
	}

	session, err := entities.NewGameSession(req.Mode, questions)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("session prepared",
		zap.Int64("user_id", req.UserID),
		zap.String("mode", string(req.Mode)),
		zap.String("topic_id", meta.TopicID),
		zap.Int("questions", len(questions)),
	)

	return NewSessionEngine(session, meta, s.pacing, observer, s.recorder, s.logger), nil
}

// questionCount returns the number of questions to play, 0 meaning all available.
func (s *GameService) questionCount(ctx context.Context, cfg entities.ModeConfig, req StartRequest) (int, error) {
	if !cfg.Configurable {
		return cfg.QuestionCount, nil
	}

	count := req.QuestionCount
	if count == 0 {
		count = cfg.QuestionCount
		settings, err := s.settings.GetByUserID(ctx, req.UserID)
		if err != nil && !errors.Is(err, repository.ErrSettingsNotFound) {
			return 0, fmt.Errorf("get settings: %w", err)
		}
		if settings != nil && settings.QuestionCount != 0 {
			count = settings.QuestionCount
		}
	}

	if !entities.ValidQuestionCount(count) {
		return 0, ErrInvalidQuestionCount
	}
	return count, nil
}

func (s *GameService) topicIndex(ctx context.Context, topicID string) (int, error) {
	topics, err := s.topics.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list topics: %w", err)
	}
	for i, t := range topics {
		if t.ID == topicID {
			return i, nil
		}
	}
	return 0, repository.ErrTopicNotFound
}

// prepare shuffles pool and truncates it to count. A count of 0 keeps every question.
func (s *GameService) prepare(pool []entities.Question, count int) ([]entities.Question, error) {
	if len(pool) == 0 || len(pool) < count {
		return nil, ErrNotEnoughQuestions
	}

	questions := make([]entities.Question, len(pool))
	copy(questions, pool)
	s.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	if count > 0 {
		questions = questions[:count]
	}
	return questions, nil
}
