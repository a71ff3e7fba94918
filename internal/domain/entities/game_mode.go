package entities

import "fmt"

// GameMode identifies one of the fixed single-player game configurations.
type GameMode string

const (
	ModeTimed     GameMode = "timed"
	ModeSurvival  GameMode = "survival"
	ModeLightning GameMode = "lightning"
	ModeBoss      GameMode = "boss"
	ModeDaily     GameMode = "daily"
)

// DailyTopicID is the topic recorded for daily challenge results.
const DailyTopicID = "daily-challenge"

const (
	MinQuestionCount = 5
	MaxQuestionCount = 20
)

// ModeConfig describes how a game mode is played and scored.
type ModeConfig struct {
	Mode            GameMode
	Title           string
	QuestionCount   int     // 0 means "all available in the topic"
	Configurable    bool    // question count can be chosen by the player
	TimePerQuestion int     // seconds, 0 means untimed
	Lives           int     // 0 means lives are not tracked
	ComboEnabled    bool    // combo multiplier is shown to the player
	BasePoints      int     // points for a correct answer before bonuses
	PassAccuracy    float64 // minimum accuracy to unlock the next topic, 0 if not applicable
	WholePool       bool    // questions are drawn from every topic
}

var modeConfigs = map[GameMode]ModeConfig{
	ModeTimed: {
		Mode: ModeTimed, Title: "Timed Challenge",
		QuestionCount: 10, Configurable: true,
		TimePerQuestion: 30, BasePoints: 100,
	},
	ModeSurvival: {
		Mode: ModeSurvival, Title: "Survival Mode",
		TimePerQuestion: 45, Lives: 3, BasePoints: 150,
	},
	ModeLightning: {
		Mode: ModeLightning, Title: "Lightning Round",
		QuestionCount: 15, Configurable: true,
		TimePerQuestion: 15, ComboEnabled: true, BasePoints: 75,
	},
	ModeBoss: {
		Mode: ModeBoss, Title: "Boss Battle",
		QuestionCount: 15, Lives: 3, BasePoints: 200, PassAccuracy: 0.7,
	},
	ModeDaily: {
		Mode: ModeDaily, Title: "Daily Challenge",
		QuestionCount: 9, TimePerQuestion: 20, BasePoints: 125, WholePool: true,
	},
}

// AllModes lists the game modes in menu order.
var AllModes = []GameMode{ModeTimed, ModeSurvival, ModeLightning, ModeBoss, ModeDaily}

// ParseGameMode validates a mode name.
func ParseGameMode(s string) (GameMode, error) {
	m := GameMode(s)
	if _, ok := modeConfigs[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGameMode, s)
	}
	return m, nil
}

// Config returns the configuration of the mode. Unknown modes return a zero config.
func (m GameMode) Config() ModeConfig {
	return modeConfigs[m]
}

// IsTimed reports whether questions in this mode have a countdown.
func (c ModeConfig) IsTimed() bool {
	return c.TimePerQuestion > 0
}

// HasLives reports whether the mode tracks lives.
func (c ModeConfig) HasLives() bool {
	return c.Lives > 0
}

// Passed reports whether the given accuracy meets the pass rule of the mode.
// Modes without a pass rule never pass.
func (c ModeConfig) Passed(correct, total int) bool {
	if c.PassAccuracy == 0 || total == 0 {
		return false
	}
	return float64(correct)/float64(total) >= c.PassAccuracy
}
