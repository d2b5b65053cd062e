// Package bot implements lifecycle management and component
// orchestration for the CloudRank Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/gemiluxvii/cloudrank/internal/config"
	"github.com/gemiluxvii/cloudrank/internal/database"
	"github.com/gemiluxvii/cloudrank/internal/report"
	"github.com/gemiluxvii/cloudrank/internal/scheduler"
)

// Bot represents the main application and manages its components'
// lifecycle.
type Bot struct {
	logger      *slog.Logger
	cfg         *config.Config
	db          *sqlx.DB
	store       database.Store
	reports     *report.Service
	tgBot       *tgbot.Bot
	registry    *scheduler.Registry
	maintenance *Maintenance
}

// NewBot creates a new instance of the bot with all required
// dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	reports *report.Service,
	tgBot *tgbot.Bot,
	registry *scheduler.Registry,
	maintenance *Maintenance,
) *Bot {
	return &Bot{
		logger:      logger.With("component", "bot_orchestrator"),
		cfg:         cfg,
		db:          db,
		store:       store,
		reports:     reports,
		tgBot:       tgBot,
		registry:    registry,
		maintenance: maintenance,
	}
}

// Run starts all components and blocks until the context is cancelled
// or a component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("starting bot orchestrator")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("starting telegram listener")
		b.tgBot.Start(gCtx)
		b.logger.Info("telegram listener stopped")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("starting analytics scheduler")
		return b.registry.Run(gCtx)
	})

	g.Go(func() error {
		b.logger.Info("starting maintenance scheduler")
		if err := b.maintenance.Start(); err != nil {
			return fmt.Errorf("failed to start maintenance scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("stopping maintenance scheduler")
		if err := b.maintenance.Stop(); err != nil {
			b.logger.Error("error stopping maintenance scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("bot orchestrator stopped gracefully")
	return nil
}
