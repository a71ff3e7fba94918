package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/service"
)

func (h *Handler) handlePlayCommand(chatID int64) {
	msg := newMessage(chatID, md(msgChooseMode))
	msg.ReplyMarkup = buildModeKeyboard()
	h.send(msg)
}

// topHandler shows the leaderboard of the mode named in args, or the mode picker.
func (h *Handler) topHandler(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		args = strings.TrimSpace(args)
		if args == "" {
			msg := newMessage(chatID, md(msgChooseTopTable))
			msg.ReplyMarkup = buildTopKeyboard()
			h.send(msg)
			return nil
		}

		mode, err := entities.ParseGameMode(strings.ToLower(args))
		if err != nil {
			return err
		}
		text, err := h.leaderboardText(ctx, mode, userID)
		if err != nil {
			return err
		}
		h.send(newMessage(chatID, text))
		return nil
	}
}

func (h *Handler) leaderboardText(ctx context.Context, mode entities.GameMode, userID int64) (string, error) {
	entries, err := h.services.Leaderboard.Top(ctx, mode, "", 0)
	if err != nil {
		return "", err
	}
	rank, err := h.services.Leaderboard.Rank(ctx, mode, userID)
	if err != nil {
		return "", err
	}
	return formatLeaderboard(mode, entries, rank), nil
}

func (h *Handler) onlineHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		players, err := h.services.Presence.Online(ctx, userID)
		if err != nil {
			return err
		}
		if len(players) == 0 {
			h.sendText(chatID, msgNobodyOnline)
			return nil
		}

		msg := newMessage(chatID, formatOnline(players))
		msg.ReplyMarkup = buildOnlineKeyboard(players)
		h.send(msg)
		return nil
	}
}

// challengesHandler resends every open challenge addressed to the user.
func (h *Handler) challengesHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		incoming, err := h.services.Matches.ListIncoming(ctx, userID)
		if err != nil {
			return err
		}
		if len(incoming) == 0 {
			h.sendText(chatID, msgNoIncoming)
			return nil
		}

		for _, m := range incoming {
			h.messages.Delete(matchMessageKey(m.ID), userID)
			h.upsert(matchMessageKey(m.ID), userID, chatID, formatMatch(*m, userID), buildMatchKeyboard(*m, userID))
		}
		return nil
	}
}

func (h *Handler) statsHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		stats, err := h.services.Statistics.Statistics(ctx, userID)
		if err != nil {
			return err
		}
		h.send(newMessage(chatID, formatStats(stats)))
		return nil
	}
}

func (h *Handler) settingsHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		settings, err := h.services.Settings.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		msg := newMessage(chatID, formatSettings(settings))
		msg.ReplyMarkup = buildSettingsKeyboard(settings)
		h.send(msg)
		return nil
	}
}

func (h *Handler) reportHandler(userID int64, questionID, comment string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, err := h.services.Reports.ReportQuestion(ctx, questionID, userID, comment); err != nil {
			if errors.Is(err, service.ErrEmptyComment) {
				h.setPendingReport(userID, questionID)
			}
			return err
		}
		h.sendText(chatID, msgReportThanks)
		return nil
	}
}

func (h *Handler) historyHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		results, err := h.services.Statistics.History(ctx, userID, historyLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			h.sendText(chatID, msgNoHistory)
			return nil
		}

		topics, err := h.services.Games.Topics(ctx)
		if err != nil {
			return err
		}
		names := make(map[string]string, len(topics))
		for _, t := range topics {
			names[t.ID] = t.Name
		}

		h.send(newMessage(chatID, formatHistory(results, names)))
		return nil
	}
}

func (h *Handler) reviewHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		topics, err := h.services.Games.Topics(ctx)
		if err != nil {
			return err
		}
		if len(topics) == 0 {
			h.sendText(chatID, msgNoTopics)
			return nil
		}

		msg := newMessage(chatID, md(msgChooseReviewTopic))
		msg.ReplyMarkup = buildReviewTopicKeyboard(topics)
		h.send(msg)
		return nil
	}
}
