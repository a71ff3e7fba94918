package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/service"
)

// maxButtonText keeps answer buttons readable on narrow screens.
const maxButtonText = 40

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func backToMenuRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(button("« Menu", buildMenuCallback()))
}

// buildModeKeyboard lists single-player modes.
func buildModeKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, mode := range entities.AllModes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(modeTitle(mode), buildModeCallback(mode))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildTopicKeyboard lists topics for mode. In boss mode topics past the
// unlocked level are marked as locked.
func buildTopicKeyboard(mode entities.GameMode, topics []entities.Topic, bossLevel int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, t := range topics {
		label := t.Name
		if mode == entities.ModeBoss {
			if i > bossLevel {
				label = "🔒 " + label
			} else {
				label = fmt.Sprintf("%d. %s", i+1, label)
			}
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(label, buildPlayCallback(mode, t.ID))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("« Modes", buildMenuCallback())))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildAnswerKeyboard builds keyboard for the current session question.
func buildAnswerKeyboard(snap service.SessionSnapshot) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range snap.Question.Options {
		text := optionLetter(i) + ") " + truncate(option, maxButtonText)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(text, buildAnswerCallback(snap.Index, i))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("✖️ Quit", buildQuitCallback())))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildRevealKeyboard(questionID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("🚩 Report question", buildReportCallback(questionID))),
	)
}

// buildResultKeyboard builds keyboard for the results screen.
func buildResultKeyboard(result entities.GameResult) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(button("🔄 Play again", buildPlayCallback(result.Mode, result.TopicID))),
	}
	if result.Mode != entities.ModeBoss {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("🏆 Leaderboard", buildTopCallback(result.Mode))))
	}
	rows = append(rows, backToMenuRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildTopKeyboard lists modes that have a leaderboard.
func buildTopKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, mode := range entities.AllModes {
		if mode == entities.ModeBoss {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(modeTitle(mode), buildTopCallback(mode))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildOnlineKeyboard(players []entities.Presence) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range players {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button("⚔️ "+p.DisplayName, buildChallengeCallback(p.UserID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildChallengeTopicKeyboard(opponentID int64, topics []entities.Topic) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range topics {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button(t.Name, buildChallengeTopicCallback(opponentID, t.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildReviewTopicKeyboard(topics []entities.Topic) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range topics {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(t.Name, buildReviewCallback(t.ID, 0))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildReviewKeyboard pages through a topic and reports the shown question.
func buildReviewKeyboard(p *service.ReviewPage) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if p.HasPrev() {
		nav = append(nav, button("‹ Prev", buildReviewCallback(p.Topic.ID, p.Index-1)))
	}
	if p.HasNext() {
		nav = append(nav, button("Next ›", buildReviewCallback(p.Topic.ID, p.Index+1)))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(button("🚩 Report question", buildReportCallback(p.Question.ID))),
		tgbotapi.NewInlineKeyboardRow(button("« Topics", buildReviewCallback("", 0))),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildIncomingKeyboard(matchID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("✅ Accept", buildAcceptCallback(matchID)),
			button("❌ Decline", buildDeclineCallback(matchID)),
		),
	)
}

// buildMatchKeyboard returns the buttons userID needs for the observed match
// state, or nil when there is nothing to press.
func buildMatchKeyboard(m entities.Match, userID int64) *tgbotapi.InlineKeyboardMarkup {
	slot, err := m.Slot(userID)
	if err != nil {
		return nil
	}

	switch m.Status {
	case entities.MatchWaiting:
		if userID != m.OpponentID {
			return nil
		}
		kb := buildIncomingKeyboard(m.ID)
		return &kb

	case entities.MatchActive:
		if m.Players[slot].HasAnswered(m.CurrentQuestionIndex) {
			return nil
		}
		var row []tgbotapi.InlineKeyboardButton
		for i := range m.CurrentQuestion().Options {
			row = append(row, button(optionLetter(i), buildMatchAnswerCallback(m.ID, m.CurrentQuestionIndex, i)))
		}
		kb := tgbotapi.NewInlineKeyboardMarkup(row)
		return &kb

	case entities.MatchFinished:
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				button("🔁 Rematch", buildChallengeTopicCallback(m.Players[1-slot].UserID, m.TopicID)),
			),
		)
		return &kb

	default:
		return nil
	}
}

// buildSettingsKeyboard builds main settings keyboard.
func buildSettingsKeyboard(s *entities.UserSettings) tgbotapi.InlineKeyboardMarkup {
	name := button("👤 Show my username", buildSettingsCallback(settingsName, string(entities.NameUsername)))
	if s.NamePreference == entities.NameUsername {
		name = button("👤 Show my full name", buildSettingsCallback(settingsName, string(entities.NameFull)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("📝 Questions per game", buildSettingsCallback(settingsCount))),
		tgbotapi.NewInlineKeyboardRow(name),
		tgbotapi.NewInlineKeyboardRow(button("🕶 Toggle leaderboard anonymity", buildSettingsCallback(settingsAnonymity))),
	)
}

// buildQuestionCountKeyboard builds keyboard for the question count setting.
func buildQuestionCountKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for n := entities.MinQuestionCount; n <= entities.MaxQuestionCount; n += 5 {
		row = append(row, button(strconv.Itoa(n), buildSettingsCallback(settingsCount, strconv.Itoa(n))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(button("« Back to settings", buildSettingsCallback(settingsMenu))),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
