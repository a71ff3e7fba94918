package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/config"
	"github.com/lexarena/lexarena-bot/internal/delivery/httpapi"
	"github.com/lexarena/lexarena-bot/internal/delivery/telegram"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
	"github.com/lexarena/lexarena-bot/internal/infra/redis"
	"github.com/lexarena/lexarena-bot/internal/logger"
	"github.com/lexarena/lexarena-bot/internal/service"
	"github.com/lexarena/lexarena-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("application stopped with error", zap.Error(err))
	}
	lg.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	// PostgreSQL.
	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		lg.Info("migrations applied", zap.Strings("versions", applied))
	}

	transactor := postgres.NewTransactor(pool)
	listener := postgres.NewListener(pool, postgres.MatchChannel, lg.Named("listener"))

	// Redis.
	rdb, err := redis.NewClient(ctx, cfg.Redis.URL, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	board := redis.NewLeaderboard(rdb)
	presenceStore := redis.NewPresenceStore(rdb)

	// Repositories.
	userRepo := repository.NewUserRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	topicRepo := repository.NewTopicRepository(pool)
	resultRepo := repository.NewResultRepository(pool, transactor)
	statsRepo := repository.NewStatisticsRepository(pool)
	matchRepo := repository.NewMatchRepository(pool, transactor)
	reportRepo := repository.NewReportRepository(pool)

	// Services.
	pacing := service.Pacing{
		ExplanationDelay:  cfg.Game.ExplanationDelay,
		MatchAdvanceDelay: cfg.Game.MatchAdvanceDelay,
		TickInterval:      cfg.Game.TickInterval,
	}

	resultService := service.NewResultService(resultRepo, statsRepo, board, lg.Named("results"))
	gameService := service.NewGameService(questionRepo, topicRepo, statsRepo, settingsRepo, resultService, pacing, lg.Named("game"))
	matchCoordinator := service.NewMatchCoordinator(matchRepo, questionRepo, topicRepo, listener, pacing, lg.Named("match"))
	sweeper := service.NewMatchSweeper(matchRepo, cfg.Match.StaleAfter, lg.Named("sweeper"))
	presenceService := service.NewPresenceService(presenceStore, cfg.Presence.TTL, lg.Named("presence"))

	services := telegram.Services{
		Users:       service.NewUserService(userRepo, settingsRepo, lg.Named("users")),
		Settings:    service.NewSettingsService(settingsRepo),
		Games:       gameService,
		Matches:     matchCoordinator,
		Statistics:  resultService,
		Leaderboard: service.NewLeaderboardService(board),
		Presence:    presenceService,
		Reports:     service.NewReportService(reportRepo, questionRepo, lg.Named("reports")),
		Review:      service.NewReviewService(questionRepo, topicRepo),
	}

	// Telegram.
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Env == "local"

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(botCommands()...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	handler := telegram.NewHandler(
		bot,
		lg.Named("telegram"),
		services,
		storage.NewSessionStorage(),
		storage.NewMessageStorage(),
	)

	// HTTP API.
	hub := httpapi.NewHub(matchCoordinator, lg.Named("ws"))
	router := httpapi.NewRouter(httpapi.NewHandler(matchCoordinator, services.Leaderboard, hub, lg.Named("http")), lg.Named("http"))
	server := httpapi.NewServer(cfg.HTTP.Addr, router, hub, lg.Named("http"))

	// Background jobs.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(4)
	go func() {
		defer wg.Done()
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		defer wg.Done()
		sweeper.Start(ctx, cfg.Match.SweepSchedule)
	}()
	go func() {
		defer wg.Done()
		presenceService.Start(ctx, cfg.Presence.PruneSchedule)
	}()
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- handler.Run(ctx)
	}()

	select {
	case err = <-errCh:
		lg.Error("background component failed", zap.Error(err))
	case err = <-runErr:
	}

	lg.Info("shutting down")
	cancel()
	wg.Wait()
	return err
}

func botCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "play", Description: "Play a single-player game"},
		{Command: "online", Description: "Find an opponent for a 1v1 battle"},
		{Command: "challenges", Description: "Open challenges sent to you"},
		{Command: "top", Description: "Leaderboards (usage: /top timed)"},
		{Command: "stats", Description: "Your records"},
		{Command: "history", Description: "Your recent games"},
		{Command: "review", Description: "Study the questions of a topic"},
		{Command: "settings", Description: "Settings"},
		{Command: "help", Description: "Help"},
	}
}
