package service

import (
	"context"
	"time"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
	"github.com/lexarena/lexarena-bot/internal/infra/redis"
)

type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	GetByID(ctx context.Context, userID int64) (*entities.User, error)
}

type SettingsRepository interface {
	Create(ctx context.Context, userID int64) error
	GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error)
	UpdateQuestionCount(ctx context.Context, userID int64, count int) error
	UpdateNamePreference(ctx context.Context, userID int64, pref entities.NamePreference) error
	UpdateLeaderboardAnonymity(ctx context.Context, userID int64, anonymous bool) error
}

// QuestionStore returns normalized questions in storage order; callers shuffle and truncate.
type QuestionStore interface {
	ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]entities.Question, error)
	GetByID(ctx context.Context, id string) (*entities.Question, error)
}

type TopicRepository interface {
	List(ctx context.Context) ([]entities.Topic, error)
	GetByID(ctx context.Context, id string) (*entities.Topic, error)
}

type ResultRepository interface {
	Save(ctx context.Context, result *entities.GameResult) error
	ListRecent(ctx context.Context, userID int64, limit int) ([]entities.GameResult, error)
}

type StatisticsRepository interface {
	Get(ctx context.Context, userID int64) (*entities.UserStatistics, error)
	UpdateBest(ctx context.Context, userID int64, mode entities.GameMode, value int) (bool, error)
	RecordGame(ctx context.Context, userID int64, correct, total int, playedAt time.Time) error
	SetDailyStreak(ctx context.Context, userID int64, streak int, at time.Time) error
}

// MatchRepository is the shared match record. Conditional writes report
// whether they applied; a false result is not an error.
type MatchRepository interface {
	Create(ctx context.Context, m *entities.Match) error
	Get(ctx context.Context, id string) (*entities.Match, error)
	ListIncoming(ctx context.Context, opponentID int64) ([]*entities.Match, error)
	ListStale(ctx context.Context, status entities.MatchStatus, before time.Time) ([]*entities.Match, error)
	RecordAnswer(ctx context.Context, matchID string, slot, index, selected, points int) (bool, error)
	Advance(ctx context.Context, matchID string, expectedIndex int) (bool, error)
	Finish(ctx context.Context, matchID string, expectedIndex int, winner entities.Winner) (bool, error)
	UpdateStatus(ctx context.Context, matchID string, from, to entities.MatchStatus) (bool, error)
	ForceFinish(ctx context.Context, matchID string, expectedVersion int64, winner entities.Winner) (bool, error)
}

// MatchFeed delivers change notifications for a match id.
type MatchFeed interface {
	Subscribe(matchID string, onChange func()) (unsubscribe func())
}

type ReportRepository interface {
	Create(ctx context.Context, report *entities.QuestionReport) error
}

type Leaderboard interface {
	Submit(ctx context.Context, mode entities.GameMode, topicID string, userID int64, name string, score int) error
	Top(ctx context.Context, mode entities.GameMode, topicID string, limit int64) ([]redis.LeaderboardEntry, error)
	Rank(ctx context.Context, mode entities.GameMode, topicID string, userID int64) (int64, error)
}

type PresenceStore interface {
	Touch(ctx context.Context, p entities.Presence) error
	Online(ctx context.Context, since time.Time, limit int64) ([]entities.Presence, error)
	Prune(ctx context.Context, before time.Time) (int, error)
}
