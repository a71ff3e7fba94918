package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

// callbackFunc handles one button press and returns an optional toast text.
type callbackFunc func(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	data := decodeCallback(cb.Data)

	var fn callbackFunc
	switch data.Action {
	case actionMenu:
		fn = h.menuCallback
	case actionMode:
		fn = h.modeCallback
	case actionPlay:
		fn = h.playCallback
	case actionAnswer:
		fn = h.answerSessionCallback
	case actionQuit:
		fn = h.quitCallback
	case actionChallenge:
		fn = h.challengeCallback
	case actionChalTopic:
		fn = h.challengeTopicCallback
	case actionAccept:
		fn = h.respondCallback(true)
	case actionDecline:
		fn = h.respondCallback(false)
	case actionMatchAns:
		fn = h.answerMatchCallback
	case actionReport:
		fn = h.reportCallback
	case actionTop:
		fn = h.topCallback
	case actionSettings:
		fn = h.settingsCallback
	case actionReview:
		fn = h.reviewCallback
	default:
		h.logger.Warn("unknown callback", zap.String("data", cb.Data))
		h.answerCallback(cb.ID, msgStaleButton)
		return
	}

	toast, err := fn(ctx, cb, data)
	if err != nil {
		if text, ok := userMessage(err); ok {
			toast = text
		} else {
			h.logger.Error("callback error",
				zap.Int64("user_id", cb.From.ID),
				zap.String("data", cb.Data),
				zap.Error(err),
			)
			toast = msgInternalError
		}
	}
	h.answerCallback(cb.ID, toast)
}

func (h *Handler) menuCallback(_ context.Context, cb *tgbotapi.CallbackQuery, _ callbackData) (string, error) {
	edit := newEdit(cb.Message.Chat.ID, cb.Message.MessageID, md(msgChooseMode))
	kb := buildModeKeyboard()
	edit.ReplyMarkup = &kb
	h.send(edit)
	return "", nil
}

// modeCallback shows the topic picker, or starts right away for modes that
// draw from the whole pool.
func (h *Handler) modeCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	raw, err := data.param(0)
	if err != nil {
		return "", err
	}
	mode, err := entities.ParseGameMode(raw)
	if err != nil {
		return "", err
	}
	if mode.Config().WholePool {
		return "", h.startGame(ctx, cb, mode, entities.DailyTopicID)
	}

	topics, err := h.services.Games.Topics(ctx)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return msgNoTopics, nil
	}

	bossLevel := 0
	if mode == entities.ModeBoss {
		if bossLevel, err = h.services.Games.UnlockedBossLevel(ctx, cb.From.ID); err != nil {
			return "", err
		}
	}

	edit := newEdit(cb.Message.Chat.ID, cb.Message.MessageID, formatModeIntro(mode))
	kb := buildTopicKeyboard(mode, topics, bossLevel)
	edit.ReplyMarkup = &kb
	h.send(edit)
	return "", nil
}

func (h *Handler) playCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	raw, err := data.param(0)
	if err != nil {
		return "", err
	}
	mode, err := entities.ParseGameMode(raw)
	if err != nil {
		return "", err
	}
	topicID, err := data.param(1)
	if err != nil {
		return "", err
	}
	return "", h.startGame(ctx, cb, mode, topicID)
}

func (h *Handler) answerSessionCallback(_ context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	index, err := data.intParam(0)
	if err != nil {
		return "", err
	}
	choice, err := data.intParam(1)
	if err != nil {
		return "", err
	}

	engine, ok := h.sessions.Get(cb.From.ID)
	if !ok {
		return msgNoActiveGame, nil
	}
	if engine.Snapshot().Index != index || !engine.Answer(choice) {
		return msgStaleButton, nil
	}
	return "", nil
}

func (h *Handler) quitCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, _ callbackData) (string, error) {
	userID := cb.From.ID
	engine, ok := h.sessions.Get(userID)
	if !ok {
		return msgNoActiveGame, nil
	}

	engine.Stop()
	h.sessions.Delete(userID, engine)
	h.messages.Delete(sessionMessageKey, userID)
	h.services.Presence.Touch(ctx, userID, h.displayName(ctx, userID), entities.PresenceOnline)

	edit := newEdit(cb.Message.Chat.ID, cb.Message.MessageID, md(msgGameAbandoned))
	kb := buildModeKeyboard()
	edit.ReplyMarkup = &kb
	h.send(edit)
	return "", nil
}

// challengeCallback asks the challenger for the battle topic.
func (h *Handler) challengeCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	opponentID, err := data.int64Param(0)
	if err != nil {
		return "", err
	}

	topics, err := h.services.Games.Topics(ctx)
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return msgNoTopics, nil
	}

	msg := newMessage(cb.Message.Chat.ID, md("Choose a topic for the battle:"))
	msg.ReplyMarkup = buildChallengeTopicKeyboard(opponentID, topics)
	h.send(msg)
	return "", nil
}

func (h *Handler) challengeTopicCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	opponentID, err := data.int64Param(0)
	if err != nil {
		return "", err
	}
	topicID, err := data.param(1)
	if err != nil {
		return "", err
	}

	opponent, err := h.services.Users.Get(ctx, opponentID)
	if err != nil {
		return "", err
	}

	m, err := h.services.Matches.CreateChallenge(ctx,
		entities.Player{UserID: cb.From.ID, DisplayName: h.displayName(ctx, cb.From.ID)},
		entities.Player{UserID: opponentID, DisplayName: h.displayName(ctx, opponentID)},
		topicID,
	)
	if err != nil {
		return "", err
	}

	if err := h.ensureWatch(ctx, m.ID, cb.From.ID, cb.Message.Chat.ID); err != nil {
		return "", err
	}
	if err := h.ensureWatch(ctx, m.ID, opponentID, opponent.ChatID); err != nil {
		h.logger.Warn("failed to notify opponent",
			zap.String("match_id", m.ID),
			zap.Int64("opponent_id", opponentID),
			zap.Error(err),
		)
	}
	return msgChallengeSent, nil
}

// respondCallback accepts or declines a challenge and keeps both boards live.
func (h *Handler) respondCallback(accept bool) callbackFunc {
	return func(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
		matchID, err := data.param(0)
		if err != nil {
			return "", err
		}

		userID := cb.From.ID
		h.messages.Store(matchMessageKey(matchID), userID, cb.Message.Chat.ID, cb.Message.MessageID)

		m, err := h.services.Matches.Respond(ctx, matchID, userID, accept)
		if err != nil {
			return "", err
		}

		if err := h.ensureWatch(ctx, matchID, userID, cb.Message.Chat.ID); err != nil {
			return "", err
		}
		challengerID := m.Players[0].UserID
		if challenger, err := h.services.Users.Get(ctx, challengerID); err == nil {
			_ = h.ensureWatch(ctx, matchID, challengerID, challenger.ChatID)
		}
		return "", nil
	}
}

func (h *Handler) answerMatchCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	matchID, err := data.param(0)
	if err != nil {
		return "", err
	}
	index, err := data.intParam(1)
	if err != nil {
		return "", err
	}
	choice, err := data.intParam(2)
	if err != nil {
		return "", err
	}

	userID := cb.From.ID
	if _, ok := h.messages.Get(matchMessageKey(matchID), userID); !ok {
		h.messages.Store(matchMessageKey(matchID), userID, cb.Message.Chat.ID, cb.Message.MessageID)
	}
	if err := h.ensureWatch(ctx, matchID, userID, cb.Message.Chat.ID); err != nil {
		return "", err
	}

	applied, err := h.services.Matches.SubmitAnswer(ctx, matchID, userID, index, choice)
	if err != nil {
		return "", err
	}
	if !applied {
		return msgStaleButton, nil
	}
	return msgAnswerAccepted, nil
}

func (h *Handler) reportCallback(_ context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	questionID, err := data.param(0)
	if err != nil {
		return "", err
	}

	h.setPendingReport(cb.From.ID, questionID)
	msg := newPlainMessage(cb.Message.Chat.ID, msgReportPrompt)
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, InputFieldPlaceholder: "Describe the problem"}
	h.send(msg)
	return "", nil
}

func (h *Handler) topCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	raw, err := data.param(0)
	if err != nil {
		return "", err
	}
	mode, err := entities.ParseGameMode(raw)
	if err != nil {
		return "", err
	}

	text, err := h.leaderboardText(ctx, mode, cb.From.ID)
	if err != nil {
		return "", err
	}
	msg := newMessage(cb.Message.Chat.ID, text)
	msg.ReplyMarkup = buildTopKeyboard()
	h.send(msg)
	return "", nil
}

func (h *Handler) settingsCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	userID := cb.From.ID
	chatID, msgID := cb.Message.Chat.ID, cb.Message.MessageID

	sub, err := data.param(0)
	if err != nil {
		return "", err
	}

	switch sub {
	case settingsCount:
		if len(data.Params) == 1 {
			edit := newEdit(chatID, msgID, md(msgChooseQuestions))
			kb := buildQuestionCountKeyboard()
			edit.ReplyMarkup = &kb
			h.send(edit)
			return "", nil
		}
		raw, _ := data.param(1)
		count, err := strconv.Atoi(raw)
		if err != nil {
			return "", errBadCallback
		}
		if err := h.services.Settings.UpdateQuestionCount(ctx, userID, count); err != nil {
			return "", err
		}

	case settingsName:
		pref, err := data.param(1)
		if err != nil {
			return "", err
		}
		if err := h.services.Settings.UpdateNamePreference(ctx, userID, entities.NamePreference(pref)); err != nil {
			return "", err
		}

	case settingsAnonymity:
		if err := h.services.Settings.ToggleLeaderboardAnonymity(ctx, userID); err != nil {
			return "", err
		}

	case settingsMenu:

	default:
		return "", errBadCallback
	}

	settings, err := h.services.Settings.GetOrCreate(ctx, userID)
	if err != nil {
		return "", err
	}
	edit := newEdit(chatID, msgID, formatSettings(settings))
	kb := buildSettingsKeyboard(settings)
	edit.ReplyMarkup = &kb
	h.send(edit)
	return "", nil
}

// reviewCallback pages through a topic in review mode, editing the message in place.
func (h *Handler) reviewCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	chatID, msgID := cb.Message.Chat.ID, cb.Message.MessageID

	if len(data.Params) == 0 {
		topics, err := h.services.Games.Topics(ctx)
		if err != nil {
			return "", err
		}
		if len(topics) == 0 {
			return msgNoTopics, nil
		}
		edit := newEdit(chatID, msgID, md(msgChooseReviewTopic))
		kb := buildReviewTopicKeyboard(topics)
		edit.ReplyMarkup = &kb
		h.send(edit)
		return "", nil
	}

	topicID, err := data.param(0)
	if err != nil {
		return "", err
	}
	index, err := data.intParam(1)
	if err != nil {
		return "", err
	}

	page, err := h.services.Review.Page(ctx, topicID, index)
	if err != nil {
		return "", err
	}
	edit := newEdit(chatID, msgID, formatReviewPage(page))
	kb := buildReviewKeyboard(page)
	edit.ReplyMarkup = &kb
	h.send(edit)
	return "", nil
}
