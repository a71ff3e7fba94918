package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

// Services groups what the handler talks to.
type Services struct {
	Users       UserService
	Settings    SettingsService
	Games       GameService
	Matches     MatchService
	Statistics  StatisticsService
	Leaderboard LeaderboardService
	Presence    PresenceService
	Reports     ReportService
	Review      ReviewService
}

type Handler struct {
	bot      *tgbotapi.BotAPI
	logger   *zap.Logger
	services Services
	sessions SessionStorage
	messages MessageStorage

	mu             sync.Mutex
	pendingReports map[int64]string // user id -> question id awaiting a comment
	watches        map[watchKey]func()
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	services Services,
	sessions SessionStorage,
	messages MessageStorage,
) *Handler {
	return &Handler{
		bot:            bot,
		logger:         logger,
		services:       services,
		sessions:       sessions,
		messages:       messages,
		pendingReports: make(map[int64]string),
		watches:        make(map[watchKey]func()),
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			h.stopWatches()
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		cb := update.CallbackQuery
		h.logger.Debug("callback received",
			zap.Int64("user_id", cb.From.ID),
			zap.String("data", cb.Data),
		)
		if cb.Message != nil {
			h.ensureUser(ctx, cb.From, cb.Message.Chat.ID)
		}
		h.handleCallback(ctx, cb)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID
	h.ensureUser(ctx, from, chatID)

	if update.Message.IsCommand() {
		h.clearPendingReport(from.ID)

		switch update.Message.Command() {
		case "start":
			h.send(newMessage(chatID, formatWelcome(from.FirstName)))

		case "help":
			h.send(newMessage(chatID, formatHelp()))

		case "play":
			h.handlePlayCommand(chatID)

		case "top":
			_ = h.withErrorHandling(h.topHandler(from.ID, update.Message.CommandArguments()))(ctx, chatID)

		case "online":
			_ = h.withErrorHandling(h.onlineHandler(from.ID))(ctx, chatID)

		case "challenges":
			_ = h.withErrorHandling(h.challengesHandler(from.ID))(ctx, chatID)

		case "stats":
			_ = h.withErrorHandling(h.statsHandler(from.ID))(ctx, chatID)

		case "settings":
			_ = h.withErrorHandling(h.settingsHandler(from.ID))(ctx, chatID)

		case "history":
			_ = h.withErrorHandling(h.historyHandler(from.ID))(ctx, chatID)

		case "review":
			_ = h.withErrorHandling(h.reviewHandler())(ctx, chatID)

		default:
			h.sendText(chatID, msgUnknownCommand)
		}

		return
	}

	if questionID, ok := h.takePendingReport(from.ID); ok {
		_ = h.withErrorHandling(h.reportHandler(from.ID, questionID, update.Message.Text))(ctx, chatID)
		return
	}

	h.sendText(chatID, msgUnknownCommand)
}

// ensureUser stores the profile and refreshes the lobby presence.
func (h *Handler) ensureUser(ctx context.Context, from *tgbotapi.User, chatID int64) {
	user := entities.NewUser(from.ID, chatID, from.UserName, from.FirstName, from.LastName)
	if err := h.services.Users.EnsureUser(ctx, user); err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
		return
	}

	state := entities.PresenceOnline
	if _, ok := h.sessions.Get(from.ID); ok {
		state = entities.PresenceInGame
	}
	h.services.Presence.Touch(ctx, from.ID, h.displayName(ctx, from.ID), state)
}

// displayName falls back to a neutral name when the profile cannot be read.
func (h *Handler) displayName(ctx context.Context, userID int64) string {
	name, err := h.services.Users.DisplayName(ctx, userID)
	if err != nil {
		h.logger.Warn("failed to get display name", zap.Int64("user_id", userID), zap.Error(err))
		return "Player"
	}
	return name
}

func (h *Handler) setPendingReport(userID int64, questionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pendingReports[userID] = questionID
}

func (h *Handler) takePendingReport(userID int64) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.pendingReports[userID]
	delete(h.pendingReports, userID)
	return id, ok && strings.TrimSpace(id) != ""
}

func (h *Handler) clearPendingReport(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pendingReports, userID)
}
