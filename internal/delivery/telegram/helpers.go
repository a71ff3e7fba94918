package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Keys of live messages in MessageStorage.
const sessionMessageKey = "session"

func matchMessageKey(matchID string) string {
	return "match:" + matchID
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil && !isNotModified(err) {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(newPlainMessage(chatID, text))
}

// upsert edits the live message stored under key for userID, or sends a new
// message to chatID and remembers it when there is none or the edit fails.
func (h *Handler) upsert(key string, userID, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if ref, ok := h.messages.Get(key, userID); ok {
		edit := newEdit(ref.ChatID, ref.MessageID, text)
		edit.ReplyMarkup = kb
		_, err := h.bot.Send(edit)
		if err == nil || isNotModified(err) {
			return
		}
		h.logger.Debug("edit failed, sending a new message",
			zap.String("key", key),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		chatID = ref.ChatID
	}

	msg := newMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := h.bot.Send(msg)
	if err != nil {
		h.logger.Error("failed to send telegram message",
			zap.String("key", key),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}
	h.messages.Store(key, userID, chatID, sent.MessageID)
}

// answerCallback removes the loading indicator of a button, optionally with a toast.
func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
