package telegram

import (
	"context"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/redis"
	"github.com/lexarena/lexarena-bot/internal/service"
	"github.com/lexarena/lexarena-bot/internal/storage"
)

type UserService interface {
	EnsureUser(ctx context.Context, user *entities.User) error
	Get(ctx context.Context, userID int64) (*entities.User, error)
	DisplayName(ctx context.Context, userID int64) (string, error)
	LeaderboardName(ctx context.Context, userID int64) (string, error)
}

type SettingsService interface {
	GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error)
	UpdateQuestionCount(ctx context.Context, userID int64, count int) error
	UpdateNamePreference(ctx context.Context, userID int64, pref entities.NamePreference) error
	ToggleLeaderboardAnonymity(ctx context.Context, userID int64) error
}

type GameService interface {
	Topics(ctx context.Context) ([]entities.Topic, error)
	UnlockedBossLevel(ctx context.Context, userID int64) (int, error)
	StartSession(ctx context.Context, req service.StartRequest, observer service.SessionObserver) (*service.SessionEngine, error)
}

type MatchService interface {
	CreateChallenge(ctx context.Context, challenger, opponent entities.Player, topicID string) (*entities.Match, error)
	Respond(ctx context.Context, matchID string, responderID int64, accept bool) (*entities.Match, error)
	SubmitAnswer(ctx context.Context, matchID string, userID int64, index, selected int) (bool, error)
	ListIncoming(ctx context.Context, userID int64) ([]*entities.Match, error)
	Watch(ctx context.Context, matchID string, userID int64, observer service.MatchObserver) (func(), error)
}

type StatisticsService interface {
	Statistics(ctx context.Context, userID int64) (*entities.UserStatistics, error)
	History(ctx context.Context, userID int64, limit int) ([]entities.GameResult, error)
}

type ReviewService interface {
	Page(ctx context.Context, topicID string, index int) (*service.ReviewPage, error)
}

type LeaderboardService interface {
	Top(ctx context.Context, mode entities.GameMode, topicID string, limit int64) ([]redis.LeaderboardEntry, error)
	Rank(ctx context.Context, mode entities.GameMode, userID int64) (int64, error)
}

type PresenceService interface {
	Touch(ctx context.Context, userID int64, name string, state entities.PresenceState)
	Online(ctx context.Context, userID int64) ([]entities.Presence, error)
}

type ReportService interface {
	ReportQuestion(ctx context.Context, questionID string, reporterID int64, comment string) (*entities.QuestionReport, error)
}

type SessionStorage interface {
	Replace(userID int64, engine *service.SessionEngine) (*service.SessionEngine, bool)
	Get(userID int64) (*service.SessionEngine, bool)
	Delete(userID int64, engine *service.SessionEngine)
}

type MessageStorage interface {
	Store(key string, userID, chatID int64, messageID int)
	Get(key string, userID int64) (storage.MessageRef, bool)
	Delete(key string, userID int64)
}
