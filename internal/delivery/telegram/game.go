package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/service"
)

// startGame replaces any running session of the player with a new one shown
// in the message that was pressed.
func (h *Handler) startGame(ctx context.Context, cb *tgbotapi.CallbackQuery, mode entities.GameMode, topicID string) error {
	userID := cb.From.ID
	boardName, err := h.services.Users.LeaderboardName(ctx, userID)
	if err != nil {
		return err
	}

	view := &sessionView{h: h, chatID: cb.Message.Chat.ID}
	engine, err := h.services.Games.StartSession(ctx, service.StartRequest{
		UserID:      userID,
		DisplayName: boardName,
		Mode:        mode,
		TopicID:     topicID,
	}, view)
	if err != nil {
		return err
	}
	view.engine = engine

	if prev, ok := h.sessions.Replace(userID, engine); ok {
		prev.Stop()
	}
	h.messages.Store(sessionMessageKey, userID, cb.Message.Chat.ID, cb.Message.MessageID)
	h.services.Presence.Touch(ctx, userID, h.displayName(ctx, userID), entities.PresenceInGame)

	h.logger.Info("game started",
		zap.Int64("user_id", userID),
		zap.String("mode", string(mode)),
		zap.String("topic_id", topicID),
	)

	engine.Start(ctx)
	return nil
}

// sessionView renders one session into the player's live session message.
type sessionView struct {
	h      *Handler
	chatID int64
	engine *service.SessionEngine
}

func (v *sessionView) QuestionShown(_ context.Context, userID int64, snap service.SessionSnapshot) {
	kb := buildAnswerKeyboard(snap)
	v.h.upsert(sessionMessageKey, userID, v.chatID, formatQuestion(snap), &kb)
}

func (v *sessionView) AnswerRevealed(_ context.Context, userID int64, snap service.SessionSnapshot, outcome entities.AnswerOutcome) {
	kb := buildRevealKeyboard(snap.Question.ID)
	v.h.upsert(sessionMessageKey, userID, v.chatID, formatReveal(snap, outcome), &kb)

	// The next question goes into a fresh message so the explanation and its
	// report button stay in the chat.
	v.h.messages.Delete(sessionMessageKey, userID)
}

func (v *sessionView) SessionFinished(ctx context.Context, userID int64, result entities.GameResult) {
	kb := buildResultKeyboard(result)
	v.h.upsert(sessionMessageKey, userID, v.chatID, formatResult(result), &kb)

	v.h.messages.Delete(sessionMessageKey, userID)
	v.h.sessions.Delete(userID, v.engine)

	// The session context is canceled once the game is over.
	ctx = context.WithoutCancel(ctx)
	v.h.services.Presence.Touch(ctx, userID, v.h.displayName(ctx, userID), entities.PresenceOnline)
}
