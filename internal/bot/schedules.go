package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gemiluxvii/cloudrank/internal/config"
	"github.com/gemiluxvii/cloudrank/internal/report"
	"github.com/gemiluxvii/cloudrank/internal/scheduler"
)

// Analytics job identifiers, used for registration and forced firing.
const (
	JobAutoGenerate = "auto_generate"
	JobDailyReport  = "daily_report"
)

// RegisterSchedules wires the analytics jobs into the scheduler
// registry. Jobs for disabled features are still registered so that a
// forced invocation works; their scheduled occurrences turn into
// no-ops.
func RegisterSchedules(registry *scheduler.Registry, cfg *config.Config, reports *report.Service, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	autoFire := func(ctx context.Context, forced bool) error {
		if !forced && !cfg.AutoGenerateEnabled {
			return nil
		}
		return reports.RunAutoAll(ctx, forced)
	}
	if err := registry.AddCronJob(JobAutoGenerate, cfg.AutoGenerateCron, cfg.Location, autoFire); err != nil {
		// A malformed schedule skips that job but must not take the
		// rest of the application down.
		logger.Warn("skipping auto generation job", "cron", cfg.AutoGenerateCron, "error", err)
		if cfg.AutoGenerateEnabled {
			return fmt.Errorf("auto generation schedule rejected: %w", err)
		}
	}

	dailyFire := func(ctx context.Context, forced bool) error {
		if !forced && !cfg.DailyGenerateEnabled {
			return nil
		}
		return reports.RunDailyAll(ctx, forced)
	}
	if err := registry.AddDailyJob(JobDailyReport, cfg.DailyGenerateTime, cfg.Location, dailyFire); err != nil {
		logger.Warn("skipping daily report job", "time", cfg.DailyGenerateTime, "error", err)
		if cfg.DailyGenerateEnabled {
			return fmt.Errorf("daily report schedule rejected: %w", err)
		}
	}

	return nil
}
