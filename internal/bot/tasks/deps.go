// Package tasks implements background maintenance tasks for the
// CloudRank bot, with their registration mechanism.
package tasks

import (
	"log/slog"

	"github.com/gemiluxvii/cloudrank/internal/config"
	"github.com/gemiluxvii/cloudrank/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
