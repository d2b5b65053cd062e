package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/gemiluxvii/cloudrank/internal/bot/tasks"
)

const maintenanceTaskTimeout = 10 * time.Minute

// Maintenance manages background maintenance tasks using gocron. The
// analytics schedules live in the scheduler package; this runner only
// covers housekeeping like SQLite maintenance.
type Maintenance struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cron      string
	taskMap   map[string]tasks.ScheduledTaskFunc
	location  *time.Location

	mu      sync.Mutex
	running bool
}

// NewMaintenance creates a gocron-backed runner that fires every
// registered task on the given cron expression.
func NewMaintenance(logger *slog.Logger, cron string, location *time.Location, taskMap map[string]tasks.ScheduledTaskFunc) (*Maintenance, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, fmt.Errorf("failed to create maintenance scheduler: %w", err)
	}

	return &Maintenance{
		scheduler: s,
		logger:    logger.With("component", "maintenance"),
		cron:      cron,
		taskMap:   taskMap,
		location:  location,
	}, nil
}

// Start schedules all tasks and starts the scheduler's internal ticking.
func (m *Maintenance) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("maintenance scheduler is already running")
	}

	for name, taskFunc := range m.taskMap {
		taskName, task := name, taskFunc

		_, err := m.scheduler.NewJob(
			gocron.CronJob(m.cron, true),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), maintenanceTaskTimeout)
				defer cancel()

				if err := task(ctx); err != nil {
					m.logger.Error("maintenance task failed", "task_name", taskName, "error", err)
				}
			}),
			gocron.WithName(taskName),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule maintenance task %s: %w", taskName, err)
		}

		m.logger.Info("scheduled maintenance task", "task_name", taskName, "schedule", m.cron)
	}

	m.scheduler.Start()
	m.running = true

	return nil
}

// Stop gracefully stops the scheduler, waiting for running tasks.
func (m *Maintenance) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	if err := m.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop maintenance scheduler: %w", err)
	}
	m.running = false

	return nil
}
