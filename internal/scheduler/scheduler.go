// Package scheduler runs cron and fixed-time daily jobs with
// at-most-once firing per occurrence.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// ErrScheduleConfig indicates a cron expression or daily time that
// could not be parsed.
var ErrScheduleConfig = errors.New("invalid schedule configuration")

const (
	defaultTick      = 30 * time.Second
	defaultQueueSize = 16
	defaultWorkers   = 2
)

// FireFunc executes one occurrence of a job. forced is true when the
// run was requested manually rather than by the schedule.
type FireFunc func(ctx context.Context, forced bool) error

type jobKind int

const (
	kindCron jobKind = iota
	kindDaily
)

type job struct {
	id   string
	kind jobKind
	loc  *time.Location
	fire FireFunc

	sched        cron.Schedule // kindCron
	hour, minute int           // kindDaily

	mu        sync.Mutex
	lastFired time.Time
	lastDate  string // local calendar date of the last daily fire
}

type fireRequest struct {
	job    *job
	forced bool
}

// Registry owns a set of jobs, evaluates their schedules on a fixed
// tick, and hands due occurrences to a bounded worker pool so slow
// deliveries never stall evaluation.
type Registry struct {
	logger  *slog.Logger
	tick    time.Duration
	workers int
	queue   chan fireRequest
	now     func() time.Time

	mu   sync.Mutex
	jobs map[string]*job
}

func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:  logger,
		tick:    defaultTick,
		workers: defaultWorkers,
		queue:   make(chan fireRequest, defaultQueueSize),
		now:     time.Now,
		jobs:    make(map[string]*job),
	}
}

// AddCronJob registers a job driven by a cron expression. Both
// five-field and six-field (leading seconds) expressions are accepted;
// the seconds field is dropped.
func (r *Registry) AddCronJob(id, expr string, loc *time.Location, fn FireFunc) error {
	fields := strings.Fields(expr)
	if len(fields) == 6 {
		fields = fields[1:]
	}
	if len(fields) != 5 {
		return fmt.Errorf("%w: cron expression %q must have 5 or 6 fields", ErrScheduleConfig, expr)
	}

	sched, err := cron.ParseStandard(strings.Join(fields, " "))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScheduleConfig, err)
	}

	j := &job{
		id:        id,
		kind:      kindCron,
		loc:       loc,
		fire:      fn,
		sched:     sched,
		lastFired: r.now(),
	}

	return r.add(j)
}

// AddDailyJob registers a job that fires once per local calendar date
// at the given "HH:MM" time. If the time has already passed today the
// first fire happens tomorrow.
func (r *Registry) AddDailyJob(id, at string, loc *time.Location, fn FireFunc) error {
	hour, minute, err := parseDailyTime(at)
	if err != nil {
		return err
	}

	j := &job{
		id:     id,
		kind:   kindDaily,
		loc:    loc,
		fire:   fn,
		hour:   hour,
		minute: minute,
	}

	local := r.now().In(loc)
	if local.Hour() > hour || (local.Hour() == hour && local.Minute() >= minute) {
		j.lastDate = local.Format("2006-01-02")
	}

	return r.add(j)
}

func (r *Registry) add(j *job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[j.id]; exists {
		return fmt.Errorf("%w: duplicate job id %q", ErrScheduleConfig, j.id)
	}
	r.jobs[j.id] = j

	return nil
}

// Run evaluates schedules until the context is cancelled. It blocks.
func (r *Registry) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case req := <-r.queue:
					if err := req.job.fire(ctx, req.forced); err != nil {
						r.logger.Error("scheduled job failed",
							"job_id", req.job.id, "error", err)
					}
				}
			}
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(r.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				r.evaluate()
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// evaluate claims every due occurrence and enqueues its fire request.
// Claiming happens under the per-job mutex, so a slow queue or a
// repeated wake cannot double-fire the same occurrence.
func (r *Registry) evaluate() {
	now := r.now()

	r.mu.Lock()
	jobs := make([]*job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	r.mu.Unlock()

	for _, j := range jobs {
		if !r.claim(j, now) {
			continue
		}

		select {
		case r.queue <- fireRequest{job: j}:
		default:
			r.logger.Warn("job queue full, dropping occurrence", "job_id", j.id)
		}
	}
}

func (r *Registry) claim(j *job, now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch j.kind {
	case kindCron:
		next := j.sched.Next(j.lastFired.In(j.loc))
		if next.After(now) {
			return false
		}
		j.lastFired = now
		return true

	case kindDaily:
		local := now.In(j.loc)
		if local.Hour() < j.hour || (local.Hour() == j.hour && local.Minute() < j.minute) {
			return false
		}
		date := local.Format("2006-01-02")
		if date == j.lastDate {
			return false
		}
		j.lastDate = date
		j.lastFired = now
		return true
	}

	return false
}

// Force runs a job immediately, outside its schedule. The job's
// firing state is left untouched, so the next scheduled occurrence
// still happens.
func (r *Registry) Force(ctx context.Context, id string) error {
	r.mu.Lock()
	j, ok := r.jobs[id]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: unknown job id %q", ErrScheduleConfig, id)
	}

	return j.fire(ctx, true)
}

func parseDailyTime(at string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(at, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: daily time %q must be HH:MM", ErrScheduleConfig, at)
	}

	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: invalid hour in %q", ErrScheduleConfig, at)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: invalid minute in %q", ErrScheduleConfig, at)
	}

	return hour, minute, nil
}
