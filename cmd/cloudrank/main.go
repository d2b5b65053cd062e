// Package main contains the entrypoint for the CloudRank bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/gemiluxvii/cloudrank/internal/aggregate"
	"github.com/gemiluxvii/cloudrank/internal/bot"
	"github.com/gemiluxvii/cloudrank/internal/bot/handlers"
	"github.com/gemiluxvii/cloudrank/internal/bot/tasks"
	"github.com/gemiluxvii/cloudrank/internal/config"
	"github.com/gemiluxvii/cloudrank/internal/database"
	"github.com/gemiluxvii/cloudrank/internal/logger"
	"github.com/gemiluxvii/cloudrank/internal/report"
	"github.com/gemiluxvii/cloudrank/internal/scheduler"
	"github.com/gemiluxvii/cloudrank/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components, blocks until shutdown
// and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "", "Path to configuration file (default ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	log.Info("logger initialized", "level", cfg.LogLevel, "json", cfg.LogJSON)

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	stopWords, err := aggregate.LoadStopWords(cfg.StopWordsFile)
	if err != nil {
		log.Warn("falling back to built-in stop words", "path", cfg.StopWordsFile, "error", err)
	}

	segmenter, err := aggregate.NewSegmenter()
	if err != nil {
		log.Error("failed to initialize segmenter", "error", err)
		return 1
	}

	recordDeps := handlers.HandlerDeps{Logger: log, Config: cfg, Store: store}
	botOpts := []tgbot.Option{
		tgbot.WithDefaultHandler(handlers.NewRecordHandler(recordDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.BotToken, log, botOpts...)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return 1
	}

	reports := report.NewService(store, segmenter, telegram.NewDeliverer(tg, log), log, report.Config{
		HistoryDays:        cfg.HistoryDays,
		MaxWordCount:       cfg.MaxWordCount,
		MinWordLength:      cfg.MinWordLength,
		StopWords:          stopWords,
		IncludeBotMessages: cfg.IncludeBotMessages,
		RankingUserCount:   cfg.RankingUserCount,
		RankingMedals:      cfg.RankingMedals,
		MinDailyMessages:   cfg.MinDailyMessages,
		DailySummaryTitle:  cfg.DailySummaryTitle,
		Location:           cfg.Location,
	}, cfg.EnabledSessions)

	registry := scheduler.New(log)
	if err := bot.RegisterSchedules(registry, cfg, reports, log); err != nil {
		log.Error("failed to register analytics schedules", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		Reports: reports,
		ForceDaily: func(ctx context.Context) error {
			return registry.Force(ctx, bot.JobDailyReport)
		},
	}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("failed to register telegram handlers", "error", err)
		return 1
	}

	maintenance, err := bot.NewMaintenance(log, cfg.MaintenanceCron, cfg.Location, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}))
	if err != nil {
		log.Error("failed to create maintenance scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, reports, tg, registry, maintenance)

	log.Info("starting bot")
	runErr := app.Run(ctx)
	log.Info("bot run loop finished, shutting down")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("bot stopped gracefully")
	time.Sleep(time.Second)
	return 0
}
