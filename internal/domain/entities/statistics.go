package entities

import "time"

// UserStatistics holds per-player records and aggregate counters.
type UserStatistics struct {
	UserID                  int64
	TimedBest               int
	SurvivalRecord          int
	LightningHigh           int
	BossLevel               int // number of topics unlocked in the boss campaign
	DailyStreak             int
	LastDailyAt             *time.Time
	TotalGamesPlayed        int
	TotalCorrectAnswers     int
	TotalQuestionsAttempted int
	LastPlayedAt            *time.Time
}

// AverageAccuracy returns overall accuracy in percent.
func (s UserStatistics) AverageAccuracy() float64 {
	if s.TotalQuestionsAttempted == 0 {
		return 0
	}
	return float64(s.TotalCorrectAnswers) / float64(s.TotalQuestionsAttempted) * 100
}

// Best returns the stored record for a score-ranked mode.
func (s UserStatistics) Best(mode GameMode) int {
	switch mode {
	case ModeTimed:
		return s.TimedBest
	case ModeSurvival:
		return s.SurvivalRecord
	case ModeLightning:
		return s.LightningHigh
	case ModeBoss:
		return s.BossLevel
	case ModeDaily:
		return s.DailyStreak
	default:
		return 0
	}
}

// NextDailyStreak returns the streak after completing a daily challenge at now.
// Same-day repeats keep the streak, consecutive days extend it, gaps restart it.
func NextDailyStreak(current int, last *time.Time, now time.Time) int {
	if last == nil || current == 0 {
		return 1
	}

	lastDay := truncateDay(*last)
	today := truncateDay(now)

	switch {
	case today.Equal(lastDay):
		return current
	case today.Equal(lastDay.AddDate(0, 0, 1)):
		return current + 1
	default:
		return 1
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
