// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/redis"
	"github.com/lexarena/lexarena-bot/internal/service"
)

// Error messages.
const (
	msgInternalError        = "Something went wrong. Please try again later."
	msgUnknownCommand       = "Unknown command. Send /help to see what I can do."
	msgUnknownMode          = "Unknown game mode. Use one of: timed, survival, lightning, daily."
	msgNotEnoughQuestions   = "There are not enough questions in this topic yet. Try another one."
	msgInvalidQuestionCount = "A game can have from 5 to 20 questions."
	msgTopicLocked          = "This boss is still locked. Beat the previous topic with at least 70% accuracy first."
	msgSelfChallenge        = "You cannot challenge yourself."
	msgNotOpponent          = "Only the challenged player can answer this challenge."
	msgChallengeClosed      = "This challenge is no longer open."
	msgMatchNotFound        = "This match does not exist anymore."
	msgNotParticipant       = "You are not playing in this match."
	msgPlayerNotFound       = "This player has not started the bot yet."
	msgTopicNotFound        = "This topic does not exist anymore."
	msgQuestionNotFound     = "This question does not exist anymore."
	msgEmptyComment         = "Please describe what is wrong with the question."
	msgMatchNotice          = "Could not sync the match. Retrying on the next update."
	msgStaleButton          = "This button is out of date."
	msgNoQuestions          = "This topic has no questions yet."
)

// Informational messages.
const (
	msgNoActiveGame    = "You have no game in progress."
	msgGameAbandoned   = "Game abandoned. Nothing was recorded."
	msgNoTopics        = "No topics are available yet."
	msgNobodyOnline    = "Nobody else is online right now. Check back later."
	msgNoIncoming      = "You have no open challenges."
	msgChallengeSent   = "Challenge sent. Waiting for your opponent to accept."
	msgReportPrompt    = "What is wrong with this question? Send a short comment as your next message."
	msgReportThanks    = "Thank you! Your report has been sent to the editors."
	msgAnswerAccepted  = "Answer saved"
	msgChooseMode      = "Choose a game mode:"
	msgChooseTopTable  = "Which leaderboard do you want to see?"
	msgChooseQuestions = "How many questions per timed or lightning game?"
	msgNoHistory       = "You have not finished any games yet. Send /play to start one."

	msgChooseReviewTopic = "Which topic do you want to review?"
)

// historyLimit is how many games /history shows.
const historyLimit = 10

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

func formatWelcome(firstName string) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("Welcome to LexArena, %s!", firstName)))
	sb.WriteString("\n\n")
	sb.WriteString(md("Sharpen your legal knowledge with quick quiz games and 1v1 battles."))
	sb.WriteString("\n\n")
	sb.WriteString(formatHelp())

	return sb.String()
}

func formatHelp() string {
	lines := []string{
		"/play - start a single-player game",
		"/online - find an opponent for a 1v1 battle",
		"/challenges - open challenges sent to you",
		"/top - leaderboards",
		"/stats - your records",
		"/history - your recent games",
		"/review - study the questions of a topic",
		"/settings - game length and name display",
	}
	return md(strings.Join(lines, "\n"))
}

func modeTitle(mode entities.GameMode) string {
	switch mode {
	case entities.ModeTimed:
		return "⏱ " + mode.Config().Title
	case entities.ModeSurvival:
		return "❤️ " + mode.Config().Title
	case entities.ModeLightning:
		return "⚡ " + mode.Config().Title
	case entities.ModeBoss:
		return "👹 " + mode.Config().Title
	case entities.ModeDaily:
		return "📅 " + mode.Config().Title
	default:
		return string(mode)
	}
}

// formatModeIntro describes the rules of a mode above the topic picker.
func formatModeIntro(mode entities.GameMode) string {
	cfg := mode.Config()

	var rules []string
	switch {
	case cfg.QuestionCount == 0:
		rules = append(rules, "all questions of the topic")
	case cfg.Configurable:
		rules = append(rules, "question count from your settings")
	default:
		rules = append(rules, fmt.Sprintf("%d questions", cfg.QuestionCount))
	}
	if cfg.IsTimed() {
		rules = append(rules, fmt.Sprintf("%ds per question", cfg.TimePerQuestion))
	} else {
		rules = append(rules, "no time limit")
	}
	if cfg.HasLives() {
		rules = append(rules, fmt.Sprintf("%d lives", cfg.Lives))
	}
	if cfg.ComboEnabled {
		rules = append(rules, "combo multiplier")
	}
	if cfg.PassAccuracy > 0 {
		rules = append(rules, fmt.Sprintf("%.0f%% accuracy unlocks the next boss", cfg.PassAccuracy*100))
	}

	return fmt.Sprintf("%s\n%s\n\n%s", bold(modeTitle(mode)), md(strings.Join(rules, " · ")), md("Choose a topic:"))
}

func formatQuestion(snap service.SessionSnapshot) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("%s · %d/%d", modeTitle(snap.Mode), snap.Index+1, snap.Total)))
	sb.WriteString("\n")
	sb.WriteString(formatSessionStatus(snap))
	sb.WriteString("\n\n")
	sb.WriteString(bold(snap.Question.Prompt))
	sb.WriteString("\n\n")
	for i, option := range snap.Question.Options {
		sb.WriteString(md(fmt.Sprintf("%s) %s", optionLetter(i), option)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatSessionStatus renders score, lives, timer and combo on one line.
func formatSessionStatus(snap service.SessionSnapshot) string {
	parts := []string{fmt.Sprintf("Score: %d", snap.Score)}
	if snap.Lives != nil {
		parts = append(parts, "Lives: "+strings.Repeat("❤️", *snap.Lives))
	}
	if snap.TimeLeft != nil {
		parts = append(parts, fmt.Sprintf("⏱ %ds", *snap.TimeLeft))
	}
	if snap.ComboEnabled && snap.Combo > 1 {
		parts = append(parts, fmt.Sprintf("Combo x%d", snap.Combo))
	}
	return md(strings.Join(parts, " · "))
}

func formatReveal(snap service.SessionSnapshot, outcome entities.AnswerOutcome) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("%s · %d/%d", modeTitle(snap.Mode), snap.Index+1, snap.Total)))
	sb.WriteString("\n\n")
	sb.WriteString(md(snap.Question.Prompt))
	sb.WriteString("\n\n")

	switch {
	case outcome.Correct:
		sb.WriteString(bold(fmt.Sprintf("✅ Correct! +%d", outcome.Points)))
	case outcome.TimedOut:
		sb.WriteString(bold("⌛ Time is up!"))
	default:
		sb.WriteString(bold("❌ Wrong answer"))
	}
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Correct answer: %s) %s", optionLetter(snap.Question.CorrectIndex), snap.Question.CorrectOption())))
	if snap.Question.Explanation != "" {
		sb.WriteString("\n\n")
		sb.WriteString(italic(snap.Question.Explanation))
	}
	sb.WriteString("\n\n")
	sb.WriteString(formatSessionStatus(snap))

	return sb.String()
}

func formatResult(result entities.GameResult) string {
	var sb strings.Builder

	sb.WriteString(bold(modeTitle(result.Mode) + " finished"))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("🏆 Score: %d\n", result.Score)))
	sb.WriteString(md(fmt.Sprintf("✅ Correct: %d/%d (%.0f%%)\n", result.CorrectAnswers, result.TotalQuestions, result.Accuracy()*100)))
	sb.WriteString(md(fmt.Sprintf("⏱ Time: %s\n", formatDuration(result.TimeTaken))))
	if result.Mode.Config().ComboEnabled {
		sb.WriteString(md(fmt.Sprintf("🔥 Best combo: x%d\n", result.MaxCombo)))
	}

	if result.Mode == entities.ModeBoss {
		sb.WriteString("\n")
		if result.Passed() {
			sb.WriteString(bold("Boss defeated! The next topic is unlocked."))
		} else {
			sb.WriteString(md("The boss survived. Reach 70% accuracy to unlock the next topic."))
		}
	}

	return sb.String()
}

func formatDuration(seconds int) string {
	return (time.Duration(seconds) * time.Second).String()
}

func optionLetter(i int) string {
	return string(rune('A' + i))
}

func formatIncomingChallenge(m entities.Match) string {
	return fmt.Sprintf(
		"%s\n\n%s %s\n%s %s\n%s",
		bold("⚔️ New challenge!"),
		md("From:"),
		bold(m.Players[0].DisplayName),
		md("Topic:"),
		bold(m.TopicName),
		md(fmt.Sprintf("%d questions, %d points per correct answer.", len(m.Questions), entities.PointsPerCorrect)),
	)
}

// formatMatch renders the shared match record from the point of view of userID.
func formatMatch(m entities.Match, userID int64) string {
	slot, err := m.Slot(userID)
	if err != nil {
		return md(msgNotParticipant)
	}
	me, rival := m.Players[slot], m.Players[1-slot]

	var sb strings.Builder
	sb.WriteString(bold(fmt.Sprintf("⚔️ %s vs %s", me.DisplayName, rival.DisplayName)))
	sb.WriteString("\n")
	sb.WriteString(md(m.TopicName))
	sb.WriteString("\n\n")

	switch m.Status {
	case entities.MatchWaiting:
		if userID == m.OpponentID {
			sb.WriteString(formatIncomingChallenge(m))
		} else {
			sb.WriteString(md(fmt.Sprintf("Waiting for %s to accept the challenge…", rival.DisplayName)))
		}

	case entities.MatchActive:
		q := m.CurrentQuestion()
		sb.WriteString(md(fmt.Sprintf("Score: %d : %d", me.Score, rival.Score)))
		sb.WriteString("\n")
		sb.WriteString(bold(fmt.Sprintf("Question %d/%d", m.CurrentQuestionIndex+1, len(m.Questions))))
		sb.WriteString("\n\n")
		sb.WriteString(bold(q.Prompt))
		sb.WriteString("\n\n")
		for i, option := range q.Options {
			sb.WriteString(md(fmt.Sprintf("%s) %s", optionLetter(i), option)))
			sb.WriteString("\n")
		}
		if me.HasAnswered(m.CurrentQuestionIndex) {
			sb.WriteString("\n")
			sb.WriteString(formatMatchAnswer(q, me.Answers[m.CurrentQuestionIndex]))
			sb.WriteString("\n")
			if rival.HasAnswered(m.CurrentQuestionIndex) {
				sb.WriteString(italic("Next question is coming…"))
			} else {
				sb.WriteString(italic(fmt.Sprintf("Waiting for %s…", rival.DisplayName)))
			}
		}

	case entities.MatchFinished:
		sb.WriteString(md(fmt.Sprintf("Final score: %d : %d", me.Score, rival.Score)))
		sb.WriteString("\n\n")
		switch m.Winner {
		case entities.WinnerDraw:
			sb.WriteString(bold("🤝 It's a draw!"))
		case entities.WinnerFor(userID):
			sb.WriteString(bold("🏆 You won!"))
		default:
			sb.WriteString(bold(fmt.Sprintf("%s won this time.", rival.DisplayName)))
		}

	case entities.MatchDeclined:
		sb.WriteString(md("The challenge was declined."))

	case entities.MatchExpired:
		sb.WriteString(md("The challenge expired without an answer."))
	}

	return sb.String()
}

func formatMatchAnswer(q entities.Question, selected int) string {
	if q.IsCorrect(selected) {
		return md(fmt.Sprintf("✅ %s) is correct! +%d", optionLetter(selected), entities.PointsPerCorrect))
	}
	return md(fmt.Sprintf("❌ The correct answer was %s) %s", optionLetter(q.CorrectIndex), q.CorrectOption()))
}

func formatLeaderboard(mode entities.GameMode, entries []redis.LeaderboardEntry, rank int64) string {
	var sb strings.Builder

	sb.WriteString(bold("🏆 " + mode.Config().Title + " leaderboard"))
	sb.WriteString("\n\n")

	if len(entries) == 0 {
		sb.WriteString(md("No scores yet. Be the first!"))
		return sb.String()
	}

	for _, e := range entries {
		sb.WriteString(md(fmt.Sprintf("%s %s", medal(e.Rank), e.Name)))
		sb.WriteString(" ")
		sb.WriteString(bold(fmt.Sprintf("%d", e.Score)))
		sb.WriteString("\n")
	}

	if rank > 0 {
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("Your rank: #%d", rank)))
	}

	return sb.String()
}

func medal(rank int64) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

func formatOnline(players []entities.Presence) string {
	var sb strings.Builder

	sb.WriteString(bold("🟢 Players online"))
	sb.WriteString("\n\n")
	for _, p := range players {
		state := "online"
		if p.State == entities.PresenceInGame {
			state = "in a game"
		}
		sb.WriteString(md(fmt.Sprintf("• %s (%s)", p.DisplayName, state)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(md("Tap a name to send a challenge."))

	return sb.String()
}

func formatStats(s *entities.UserStatistics) string {
	var sb strings.Builder

	sb.WriteString(bold("📊 Your statistics"))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("⏱ Timed best: %d\n", s.TimedBest)))
	sb.WriteString(md(fmt.Sprintf("❤️ Survival record: %d\n", s.SurvivalRecord)))
	sb.WriteString(md(fmt.Sprintf("⚡ Lightning high: %d\n", s.LightningHigh)))
	sb.WriteString(md(fmt.Sprintf("👹 Bosses unlocked: %d\n", s.BossLevel)))
	sb.WriteString(md(fmt.Sprintf("📅 Daily streak: %d\n", s.DailyStreak)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("🎮 Games played: %d\n", s.TotalGamesPlayed)))
	sb.WriteString(md(fmt.Sprintf("🎯 Accuracy: %.1f%% (%d/%d)", s.AverageAccuracy(), s.TotalCorrectAnswers, s.TotalQuestionsAttempted)))

	return sb.String()
}

func formatHistory(results []entities.GameResult, topicNames map[string]string) string {
	var sb strings.Builder

	sb.WriteString(bold("📜 Recent games"))
	for _, r := range results {
		topic := topicNames[r.TopicID]
		if r.Mode == entities.ModeDaily || topic == "" {
			topic = "mixed"
		}
		sb.WriteString("\n\n")
		sb.WriteString(bold(fmt.Sprintf("%s · %s", modeTitle(r.Mode), topic)))
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("%s · 🏆 %d · ✅ %d/%d (%.0f%%)",
			r.CompletedAt.UTC().Format("Jan 2 15:04"),
			r.Score,
			r.CorrectAnswers,
			r.TotalQuestions,
			r.Accuracy()*100,
		)))
	}

	return sb.String()
}

// formatReviewPage shows a question together with its answer and explanation.
func formatReviewPage(p *service.ReviewPage) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("📖 %s · %d/%d", p.Topic.Name, p.Index+1, p.Total)))
	sb.WriteString("\n\n")
	sb.WriteString(md(p.Question.Prompt))
	sb.WriteString("\n\n")
	for i, option := range p.Question.Options {
		line := fmt.Sprintf("%s) %s", optionLetter(i), option)
		if i == p.Question.CorrectIndex {
			sb.WriteString(bold("✅ " + line))
		} else {
			sb.WriteString(md(line))
		}
		sb.WriteString("\n")
	}
	if p.Question.Explanation != "" {
		sb.WriteString("\n")
		sb.WriteString(italic(p.Question.Explanation))
	}

	return sb.String()
}

func formatSettings(s *entities.UserSettings) string {
	name := "full name"
	if s.NamePreference == entities.NameUsername {
		name = "username"
	}

	return fmt.Sprintf(
		"%s\n\n%s %s\n%s %s\n%s %s",
		bold("⚙️ Settings"),
		md("📝 Questions per game:"),
		bold(fmt.Sprintf("%d", s.QuestionCount)),
		md("👤 Shown as:"),
		bold(name),
		md("🕶 Anonymous on leaderboards:"),
		bold(formatBool(s.LeaderboardAnonymity)),
	)
}

func formatBool(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
