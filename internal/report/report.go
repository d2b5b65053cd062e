// Package report runs the aggregation pipeline for one session or a
// batch of sessions and hands results to a delivery collaborator.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gemiluxvii/cloudrank/internal/aggregate"
	"github.com/gemiluxvii/cloudrank/internal/database"
)

// ErrRenderDelivery indicates the delivery collaborator failed. The
// occurrence still counts as processed.
var ErrRenderDelivery = errors.New("report delivery failed")

// Deliverer renders and sends one finished report. Implementations
// must not retain the result after returning.
type Deliverer interface {
	Deliver(ctx context.Context, sessionID string, result *aggregate.Result, title string) error
}

// Config holds the aggregation and delivery settings shared by every
// report the service produces.
type Config struct {
	HistoryDays        int
	MaxWordCount       int
	MinWordLength      int
	StopWords          map[string]struct{}
	IncludeBotMessages bool
	RankingUserCount   int
	RankingMedals      []string
	MinDailyMessages   int
	DailySummaryTitle  string
	Location           *time.Location
}

// Service ties the store, the segmenter and the deliverer together.
// It is safe for concurrent use by command handlers and the scheduler.
type Service struct {
	store     database.Store
	segmenter aggregate.Segmenter
	deliverer Deliverer
	logger    *slog.Logger
	cfg       Config
	now       func() time.Time

	mu      sync.Mutex
	enabled map[string]struct{}
}

func NewService(store database.Store, segmenter aggregate.Segmenter, deliverer Deliverer, logger *slog.Logger, cfg Config, enabledSessions []string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	enabled := make(map[string]struct{}, len(enabledSessions))
	for _, id := range enabledSessions {
		enabled[id] = struct{}{}
	}

	return &Service{
		store:     store,
		segmenter: segmenter,
		deliverer: deliverer,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		enabled:   enabled,
	}
}

// Enable opts a session into scheduled generation.
func (s *Service) Enable(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[sessionID] = struct{}{}
}

// Disable opts a session out. History is retained.
func (s *Service) Disable(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enabled, sessionID)
}

// IsEnabled reports whether scheduled generation covers the session.
// An empty enabled set means every session is covered.
func (s *Service) IsEnabled(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.enabled) == 0 {
		return true
	}
	_, ok := s.enabled[sessionID]

	return ok
}

// GenerateWindow aggregates the trailing N days for one session. Days
// defaults to the configured history window when not positive.
func (s *Service) GenerateWindow(ctx context.Context, sessionID string, days int) (*aggregate.Result, error) {
	if days <= 0 {
		days = s.cfg.HistoryDays
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -days)

	return s.generate(ctx, sessionID, from, to)
}

// GenerateToday aggregates everything since local midnight for one
// session, using the configured timezone for the day boundary.
func (s *Service) GenerateToday(ctx context.Context, sessionID string) (*aggregate.Result, error) {
	from, to := s.todayWindow()

	return s.generate(ctx, sessionID, from, to)
}

func (s *Service) todayWindow() (from, to time.Time) {
	local := s.now().In(s.cfg.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.cfg.Location)

	return midnight.UTC(), local.UTC()
}

// generate runs the full pipeline for one window: a streaming word
// count over the lazy cursor plus the SQL aggregate path for ranking.
func (s *Service) generate(ctx context.Context, sessionID string, from, to time.Time) (*aggregate.Result, error) {
	counts, err := s.store.CountByUser(ctx, sessionID, from, to, s.cfg.IncludeBotMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to rank users for %s: %w", sessionID, err)
	}

	total, err := s.store.CountWindow(ctx, sessionID, from, to, s.cfg.IncludeBotMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages for %s: %w", sessionID, err)
	}

	counter := aggregate.NewCounter(s.segmenter, aggregate.WordConfig{
		MaxWordCount:  s.cfg.MaxWordCount,
		MinWordLength: s.cfg.MinWordLength,
		StopWords:     s.cfg.StopWords,
	})

	iter, err := s.store.QueryWindow(ctx, sessionID, from, to, s.cfg.IncludeBotMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to read window for %s: %w", sessionID, err)
	}
	defer iter.Close()

	for iter.Next() {
		counter.Add(iter.Message().Content)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan window for %s: %w", sessionID, err)
	}

	users := make([]aggregate.UserActivity, 0, len(counts))
	for _, c := range counts {
		users = append(users, aggregate.UserActivity{
			SenderID:   c.SenderID,
			SenderName: c.SenderName,
			Count:      c.Count,
		})
	}

	return &aggregate.Result{
		Words:         counter.Top(),
		Ranking:       aggregate.Ranking(users, s.cfg.RankingUserCount, s.cfg.RankingMedals),
		TotalMessages: total,
		TotalUsers:    len(counts),
	}, nil
}

// RunDailyAll produces the since-midnight report for every enabled
// group session and delivers it. Sessions below the minimum message
// threshold are skipped. Failures are logged per session and never
// abort the batch.
func (s *Service) RunDailyAll(ctx context.Context, forced bool) error {
	from, _ := s.todayWindow()

	sessions, err := s.activeSessions(ctx, from, true)
	if err != nil {
		return err
	}

	date := s.now().In(s.cfg.Location).Format("2006-01-02")
	for _, sessionID := range sessions {
		result, err := s.GenerateToday(ctx, sessionID)
		if err != nil {
			s.logger.Error("daily report generation failed",
				"session_id", sessionID, "error", err)
			continue
		}

		if int(result.TotalMessages) < s.cfg.MinDailyMessages {
			s.logger.Info("skipping daily report below message threshold",
				"session_id", sessionID,
				"messages", result.TotalMessages,
				"threshold", s.cfg.MinDailyMessages)
			continue
		}

		title := ExpandTitle(s.cfg.DailySummaryTitle, date, sessionID)
		if err := s.deliverReport(ctx, sessionID, result, title); err != nil {
			s.logger.Error("daily report delivery failed",
				"session_id", sessionID, "forced", forced, "error", err)
		}
	}

	return nil
}

// RunAutoAll produces the trailing-history report for every enabled
// session and delivers it.
func (s *Service) RunAutoAll(ctx context.Context, forced bool) error {
	to := s.now().UTC()
	from := to.AddDate(0, 0, -s.cfg.HistoryDays)

	sessions, err := s.activeSessions(ctx, from, false)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("近%d天词云", s.cfg.HistoryDays)
	for _, sessionID := range sessions {
		result, err := s.GenerateWindow(ctx, sessionID, s.cfg.HistoryDays)
		if err != nil {
			s.logger.Error("auto report generation failed",
				"session_id", sessionID, "error", err)
			continue
		}

		if len(result.Words) == 0 {
			s.logger.Info("skipping auto report with no words",
				"session_id", sessionID)
			continue
		}

		if err := s.deliverReport(ctx, sessionID, result, title); err != nil {
			s.logger.Error("auto report delivery failed",
				"session_id", sessionID, "forced", forced, "error", err)
		}
	}

	return nil
}

// activeSessions lists sessions with traffic in the window, filtered
// to the enabled set.
func (s *Service) activeSessions(ctx context.Context, from time.Time, groupOnly bool) ([]string, error) {
	all, err := s.store.ActiveSessions(ctx, from, groupOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to discover active sessions: %w", err)
	}

	enabled := make([]string, 0, len(all))
	for _, id := range all {
		if s.IsEnabled(id) {
			enabled = append(enabled, id)
		}
	}
	sort.Strings(enabled)

	return enabled, nil
}

func (s *Service) deliverReport(ctx context.Context, sessionID string, result *aggregate.Result, title string) error {
	if err := s.deliverer.Deliver(ctx, sessionID, result, title); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderDelivery, err)
	}

	return nil
}

// ExpandTitle substitutes {date} and {sessionName} in a title
// template.
func ExpandTitle(template, date, sessionName string) string {
	title := strings.ReplaceAll(template, "{date}", date)

	return strings.ReplaceAll(title, "{sessionName}", sessionName)
}
