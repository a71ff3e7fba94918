package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
	"github.com/lexarena/lexarena-bot/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling reports known errors to the user and logs the rest.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			if text, ok := userMessage(err); ok {
				h.logger.Debug("handle error",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
				h.sendText(chatID, text)
				return nil
			}

			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendText(chatID, msgInternalError)
			return nil
		}
		return nil
	}
}

// userMessage maps domain errors to texts the player can act on.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, entities.ErrUnknownGameMode):
		return msgUnknownMode, true
	case errors.Is(err, service.ErrNotEnoughQuestions):
		return msgNotEnoughQuestions, true
	case errors.Is(err, service.ErrNoQuestions):
		return msgNoQuestions, true
	case errors.Is(err, service.ErrInvalidQuestionCount):
		return msgInvalidQuestionCount, true
	case errors.Is(err, service.ErrTopicLocked):
		return msgTopicLocked, true
	case errors.Is(err, service.ErrSelfChallenge):
		return msgSelfChallenge, true
	case errors.Is(err, service.ErrNotOpponent):
		return msgNotOpponent, true
	case errors.Is(err, service.ErrEmptyComment):
		return msgEmptyComment, true
	case errors.Is(err, entities.ErrInvalidTransition):
		return msgChallengeClosed, true
	case errors.Is(err, entities.ErrNotParticipant):
		return msgNotParticipant, true
	case errors.Is(err, repository.ErrMatchNotFound):
		return msgMatchNotFound, true
	case errors.Is(err, repository.ErrUserNotFound):
		return msgPlayerNotFound, true
	case errors.Is(err, repository.ErrTopicNotFound):
		return msgTopicNotFound, true
	case errors.Is(err, repository.ErrQuestionNotFound):
		return msgQuestionNotFound, true
	case errors.Is(err, errBadCallback), errors.Is(err, service.ErrInvalidNamePreference):
		return msgStaleButton, true
	default:
		return "", false
	}
}
