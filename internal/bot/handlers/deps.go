// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"log/slog"

	"github.com/gemiluxvii/cloudrank/internal/config"
	"github.com/gemiluxvii/cloudrank/internal/database"
	"github.com/gemiluxvii/cloudrank/internal/report"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Reports *report.Service

	// ForceDaily triggers the daily report batch outside its
	// schedule without consuming the next regular occurrence.
	ForceDaily func(ctx context.Context) error
}
