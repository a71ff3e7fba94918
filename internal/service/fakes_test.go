package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
	"github.com/lexarena/lexarena-bot/internal/infra/redis"
)

func makeQuestions(topicID string, n int) []entities.Question {
	qs := make([]entities.Question, n)
	for i := range qs {
		qs[i] = entities.Question{
			ID:           fmt.Sprintf("%s-q%d", topicID, i),
			TopicID:      topicID,
			Prompt:       fmt.Sprintf("Question %d", i),
			Options:      [4]string{"A", "B", "C", "D"},
			CorrectIndex: i % entities.OptionsCount,
			Difficulty:   entities.DifficultyMedium,
		}
	}
	return qs
}

func wrong(q entities.Question) int {
	return (q.CorrectIndex + 1) % entities.OptionsCount
}

func noShuffle(int, func(i, j int)) {}

type fakeQuestions struct {
	byTopic map[string][]entities.Question
	err     error
}

func (f *fakeQuestions) ListQuestions(_ context.Context, filter repository.QuestionFilter) ([]entities.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !filter.All {
		return f.byTopic[filter.TopicID], nil
	}
	var topics []string
	for id := range f.byTopic {
		topics = append(topics, id)
	}
	sort.Strings(topics)
	var all []entities.Question
	for _, id := range topics {
		all = append(all, f.byTopic[id]...)
	}
	return all, nil
}

func (f *fakeQuestions) GetByID(_ context.Context, id string) (*entities.Question, error) {
	for _, qs := range f.byTopic {
		for _, q := range qs {
			if q.ID == id {
				return &q, nil
			}
		}
	}
	return nil, repository.ErrQuestionNotFound
}

type fakeTopics struct {
	topics []entities.Topic
}

func (f *fakeTopics) List(context.Context) ([]entities.Topic, error) {
	return f.topics, nil
}

func (f *fakeTopics) GetByID(_ context.Context, id string) (*entities.Topic, error) {
	for _, t := range f.topics {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, repository.ErrTopicNotFound
}

type fakeSettings struct {
	mu       sync.Mutex
	settings map[int64]*entities.UserSettings
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{settings: make(map[int64]*entities.UserSettings)}
}

func (f *fakeSettings) Create(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.settings[userID]; !ok {
		f.settings[userID] = entities.NewUserSettings(userID)
	}
	return nil
}

func (f *fakeSettings) GetByUserID(_ context.Context, userID int64) (*entities.UserSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[userID]
	if !ok {
		return nil, repository.ErrSettingsNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSettings) UpdateQuestionCount(_ context.Context, userID int64, count int) error {
	return f.update(userID, func(s *entities.UserSettings) { s.QuestionCount = count })
}

func (f *fakeSettings) UpdateNamePreference(_ context.Context, userID int64, pref entities.NamePreference) error {
	return f.update(userID, func(s *entities.UserSettings) { s.NamePreference = pref })
}

func (f *fakeSettings) UpdateLeaderboardAnonymity(_ context.Context, userID int64, anonymous bool) error {
	return f.update(userID, func(s *entities.UserSettings) { s.LeaderboardAnonymity = anonymous })
}

func (f *fakeSettings) update(userID int64, fn func(*entities.UserSettings)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[userID]
	if !ok {
		return repository.ErrSettingsNotFound
	}
	fn(s)
	return nil
}

type fakeStats struct {
	mu    sync.Mutex
	stats map[int64]*entities.UserStatistics
}

func newFakeStats() *fakeStats {
	return &fakeStats{stats: make(map[int64]*entities.UserStatistics)}
}

func (f *fakeStats) get(userID int64) *entities.UserStatistics {
	s, ok := f.stats[userID]
	if !ok {
		s = &entities.UserStatistics{UserID: userID}
		f.stats[userID] = s
	}
	return s
}

func (f *fakeStats) Get(_ context.Context, userID int64) (*entities.UserStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.get(userID)
	return &cp, nil
}

func (f *fakeStats) UpdateBest(_ context.Context, userID int64, mode entities.GameMode, value int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.get(userID)
	var field *int
	switch mode {
	case entities.ModeTimed:
		field = &s.TimedBest
	case entities.ModeSurvival:
		field = &s.SurvivalRecord
	case entities.ModeLightning:
		field = &s.LightningHigh
	case entities.ModeBoss:
		field = &s.BossLevel
	default:
		return false, repository.ErrNoBestStat
	}
	if value <= *field {
		return false, nil
	}
	*field = value
	return true, nil
}

func (f *fakeStats) RecordGame(_ context.Context, userID int64, correct, total int, playedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.get(userID)
	s.TotalGamesPlayed++
	s.TotalCorrectAnswers += correct
	s.TotalQuestionsAttempted += total
	s.LastPlayedAt = &playedAt
	return nil
}

func (f *fakeStats) SetDailyStreak(_ context.Context, userID int64, streak int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.get(userID)
	s.DailyStreak = streak
	s.LastDailyAt = &at
	return nil
}

type fakeResults struct {
	mu      sync.Mutex
	saved   []entities.GameResult
	saveErr error
}

func (f *fakeResults) Save(_ context.Context, result *entities.GameResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	result.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, *result)
	return nil
}

func (f *fakeResults) ListRecent(_ context.Context, userID int64, limit int) ([]entities.GameResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.GameResult
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if f.saved[i].UserID == userID {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

type submission struct {
	mode    entities.GameMode
	topicID string
	userID  int64
	name    string
	score   int
}

type fakeLeaderboard struct {
	mu          sync.Mutex
	submissions []submission
}

func (f *fakeLeaderboard) Submit(_ context.Context, mode entities.GameMode, topicID string, userID int64, name string, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, submission{mode, topicID, userID, name, score})
	return nil
}

func (f *fakeLeaderboard) Top(context.Context, entities.GameMode, string, int64) ([]redis.LeaderboardEntry, error) {
	return nil, nil
}

func (f *fakeLeaderboard) Rank(context.Context, entities.GameMode, string, int64) (int64, error) {
	return 0, nil
}

type recordedResult struct {
	result entities.GameResult
	meta   SessionMeta
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []recordedResult
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, result entities.GameResult, meta SessionMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, recordedResult{result, meta})
	return f.err
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

// fakeFeed publishes synchronously from the writer, like NOTIFY after commit.
type fakeFeed struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[string]map[int]func())}
}

func (f *fakeFeed) Subscribe(matchID string, onChange func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	if f.subs[matchID] == nil {
		f.subs[matchID] = make(map[int]func())
	}
	f.subs[matchID][id] = onChange
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[matchID], id)
	}
}

func (f *fakeFeed) publish(matchID string) {
	f.mu.Lock()
	var fns []func()
	for _, fn := range f.subs[matchID] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// fakeMatches mirrors the conditional writes of the SQL repository.
type fakeMatches struct {
	mu      sync.Mutex
	matches map[string]*entities.Match
	feed    *fakeFeed
}

func newFakeMatches(feed *fakeFeed) *fakeMatches {
	return &fakeMatches{matches: make(map[string]*entities.Match), feed: feed}
}

func cloneMatch(m *entities.Match) *entities.Match {
	cp := *m
	for i := range cp.Players {
		cp.Players[i].Answers = append([]int{}, m.Players[i].Answers...)
	}
	cp.Questions = append([]entities.Question(nil), m.Questions...)
	return &cp
}

func (f *fakeMatches) write(id string, fn func(m *entities.Match) bool) (bool, error) {
	f.mu.Lock()
	m, ok := f.matches[id]
	if !ok {
		f.mu.Unlock()
		return false, repository.ErrMatchNotFound
	}
	applied := fn(m)
	if applied {
		m.Version++
		m.UpdatedAt = time.Now()
	}
	f.mu.Unlock()

	if applied && f.feed != nil {
		f.feed.publish(id)
	}
	return applied, nil
}

func (f *fakeMatches) Create(_ context.Context, m *entities.Match) error {
	f.mu.Lock()
	f.matches[m.ID] = cloneMatch(m)
	f.mu.Unlock()
	if f.feed != nil {
		f.feed.publish(m.ID)
	}
	return nil
}

func (f *fakeMatches) Get(_ context.Context, id string) (*entities.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (f *fakeMatches) ListIncoming(_ context.Context, opponentID int64) ([]*entities.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Match
	for _, m := range f.matches {
		if m.OpponentID == opponentID && m.Status == entities.MatchWaiting {
			out = append(out, cloneMatch(m))
		}
	}
	return out, nil
}

func (f *fakeMatches) ListStale(_ context.Context, status entities.MatchStatus, before time.Time) ([]*entities.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Match
	for _, m := range f.matches {
		if m.Status == status && m.UpdatedAt.Before(before) {
			out = append(out, cloneMatch(m))
		}
	}
	return out, nil
}

func (f *fakeMatches) RecordAnswer(_ context.Context, matchID string, slot, index, selected, points int) (bool, error) {
	return f.write(matchID, func(m *entities.Match) bool {
		p := &m.Players[slot]
		if m.Status != entities.MatchActive || m.CurrentQuestionIndex != index || len(p.Answers) != index {
			return false
		}
		p.Answers = append(p.Answers, selected)
		p.Score += points
		return true
	})
}

func (f *fakeMatches) Advance(_ context.Context, matchID string, expectedIndex int) (bool, error) {
	return f.write(matchID, func(m *entities.Match) bool {
		if m.Status != entities.MatchActive || m.CurrentQuestionIndex != expectedIndex {
			return false
		}
		m.CurrentQuestionIndex++
		return true
	})
}

func (f *fakeMatches) Finish(_ context.Context, matchID string, expectedIndex int, winner entities.Winner) (bool, error) {
	return f.write(matchID, func(m *entities.Match) bool {
		if m.Status != entities.MatchActive || m.CurrentQuestionIndex != expectedIndex {
			return false
		}
		m.Status = entities.MatchFinished
		m.Winner = winner
		return true
	})
}

func (f *fakeMatches) UpdateStatus(_ context.Context, matchID string, from, to entities.MatchStatus) (bool, error) {
	return f.write(matchID, func(m *entities.Match) bool {
		if m.Status != from {
			return false
		}
		m.Status = to
		return true
	})
}

func (f *fakeMatches) ForceFinish(_ context.Context, matchID string, expectedVersion int64, winner entities.Winner) (bool, error) {
	return f.write(matchID, func(m *entities.Match) bool {
		if m.Status != entities.MatchActive || m.Version != expectedVersion {
			return false
		}
		m.Status = entities.MatchFinished
		m.Winner = winner
		return true
	})
}

type fakeReports struct {
	reports []*entities.QuestionReport
}

func (f *fakeReports) Create(_ context.Context, r *entities.QuestionReport) error {
	f.reports = append(f.reports, r)
	return nil
}
