package entities

import "time"

// NamePreference selects how a player is shown to others.
type NamePreference string

const (
	NameFull     NamePreference = "fullName"
	NameUsername NamePreference = "username"
)

// AnonymousName is shown on leaderboards for players who hide their name.
const AnonymousName = "Anonymous Player"

// UserSettings stores player preferences.
type UserSettings struct {
	UserID               int64
	QuestionCount        int            // questions in timed and lightning games
	NamePreference       NamePreference // how the name is shown in matches and leaderboards
	LeaderboardAnonymity bool           // hide the name on leaderboards
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewUserSettings creates settings with default values.
func NewUserSettings(userID int64) *UserSettings {
	now := time.Now()
	return &UserSettings{
		UserID:         userID,
		QuestionCount:  10,
		NamePreference: NameFull,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ValidQuestionCount reports whether n is an allowed configurable game length.
func ValidQuestionCount(n int) bool {
	return n >= MinQuestionCount && n <= MaxQuestionCount
}
