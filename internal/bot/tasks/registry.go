package tasks

import (
	"context"
)

// ScheduledTaskFunc defines the signature for all maintenance tasks.
// The context provided by the scheduler should be respected for
// cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks initializes and returns a map of all registered
// maintenance tasks. The keys identify tasks in configuration and logs.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks["sql_maintenance"] = newSQLMaintenanceTask(deps)

	deps.Logger.Info("initialized maintenance tasks", "count", len(tasks))
	return tasks
}
