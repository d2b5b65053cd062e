package report

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gemiluxvii/cloudrank/internal/aggregate"
	"github.com/gemiluxvii/cloudrank/internal/database"
)

type spaceSegmenter struct{}

func (spaceSegmenter) Segment(text string) []string { return strings.Fields(text) }

type deliverCall struct {
	sessionID string
	result    *aggregate.Result
	title     string
}

type fakeDeliverer struct {
	mu    sync.Mutex
	calls []deliverCall
	fail  map[string]error
}

func (f *fakeDeliverer) Deliver(_ context.Context, sessionID string, result *aggregate.Result, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail[sessionID]; err != nil {
		return err
	}
	f.calls = append(f.calls, deliverCall{sessionID: sessionID, result: result, title: title})

	return nil
}

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func seed(t *testing.T, store database.Store, sessionID, sender, name, content string, at time.Time) {
	t.Helper()

	err := store.SaveMessage(context.Background(), &database.Message{
		SessionID:  sessionID,
		SenderID:   sender,
		SenderName: name,
		Content:    content,
		Timestamp:  at,
	})
	if err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
}

func newTestService(t *testing.T, store database.Store, deliverer Deliverer, cfg Config, enabled []string, now time.Time) *Service {
	t.Helper()

	if cfg.MinWordLength == 0 {
		cfg.MinWordLength = 2
	}
	if cfg.MaxWordCount == 0 {
		cfg.MaxWordCount = 100
	}
	if cfg.RankingUserCount == 0 {
		cfg.RankingUserCount = 5
	}
	if cfg.HistoryDays == 0 {
		cfg.HistoryDays = 7
	}
	if len(cfg.RankingMedals) == 0 {
		cfg.RankingMedals = []string{"🥇", "🥈", "🥉"}
	}

	svc := NewService(store, spaceSegmenter{}, deliverer, nil, cfg, enabled)
	svc.now = func() time.Time { return now }

	return svc
}

func TestGenerateWindow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	seed(t, store, "telegram_group_1", "u1", "Alice", "coffee coffee tea", now.Add(-2*time.Hour))
	seed(t, store, "telegram_group_1", "u1", "Alice", "coffee again", now.Add(-time.Hour))
	seed(t, store, "telegram_group_1", "u2", "Bob", "tea please", now.Add(-30*time.Minute))
	seed(t, store, "telegram_group_1", "u3", "Carol", "too old", now.Add(-10*24*time.Hour))

	svc := newTestService(t, store, &fakeDeliverer{}, Config{}, nil, now)

	result, err := svc.GenerateWindow(context.Background(), "telegram_group_1", 7)
	if err != nil {
		t.Fatalf("GenerateWindow failed: %v", err)
	}

	if result.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", result.TotalMessages)
	}
	if result.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, want 2", result.TotalUsers)
	}
	if len(result.Words) == 0 || result.Words[0].Word != "coffee" || result.Words[0].Count != 3 {
		t.Errorf("top word = %+v, want coffee/3", result.Words)
	}
	if len(result.Ranking) != 2 || result.Ranking[0].SenderName != "Alice" || result.Ranking[0].Medal != "🥇" {
		t.Errorf("ranking = %+v, want Alice first with 🥇", result.Ranking)
	}
}

func TestGenerateWindowEmptyIsNotAnError(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	svc := newTestService(t, store, &fakeDeliverer{}, Config{}, nil, time.Now())

	result, err := svc.GenerateWindow(context.Background(), "telegram_group_404", 7)
	if err != nil {
		t.Fatalf("GenerateWindow failed: %v", err)
	}
	if len(result.Words) != 0 || len(result.Ranking) != 0 || result.TotalMessages != 0 {
		t.Errorf("empty window produced %+v, want empty result", result)
	}
}

func TestGenerateTodayUsesLocalMidnight(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	loc := time.FixedZone("UTC+8", 8*3600)

	// It is 01:00 on May 2 local time, 17:00 on May 1 UTC.
	now := time.Date(2024, 5, 1, 17, 0, 0, 0, time.UTC)

	// Local May 1 23:00, before local midnight.
	seed(t, store, "telegram_group_1", "u1", "Alice", "yesterday words", time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC))
	// Local May 2 00:30, after local midnight.
	seed(t, store, "telegram_group_1", "u1", "Alice", "fresh words", time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC))

	svc := newTestService(t, store, &fakeDeliverer{}, Config{Location: loc}, nil, now)

	result, err := svc.GenerateToday(context.Background(), "telegram_group_1")
	if err != nil {
		t.Fatalf("GenerateToday failed: %v", err)
	}
	if result.TotalMessages != 1 {
		t.Fatalf("TotalMessages = %d, want only the post-midnight message", result.TotalMessages)
	}
	if len(result.Words) != 2 || result.Words[0].Word != "fresh" {
		t.Errorf("words = %+v, want only words from the fresh message", result.Words)
	}
}

func TestRunDailyAllThresholdAndTitle(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		seed(t, store, "telegram_group_1", "u1", "Alice", "busy group talk", now.Add(-time.Duration(i)*time.Minute))
	}
	seed(t, store, "telegram_group_2", "u2", "Bob", "quiet group", now.Add(-time.Minute))
	seed(t, store, "telegram:private:9", "u9", "Eve", "private chat ignored", now.Add(-time.Minute))

	deliverer := &fakeDeliverer{}
	svc := newTestService(t, store, deliverer, Config{
		MinDailyMessages:  2,
		DailySummaryTitle: "{date} {sessionName} 今日词云",
	}, nil, now)

	if err := svc.RunDailyAll(context.Background(), false); err != nil {
		t.Fatalf("RunDailyAll failed: %v", err)
	}

	if len(deliverer.calls) != 1 {
		t.Fatalf("got %d deliveries %+v, want 1", len(deliverer.calls), deliverer.calls)
	}
	call := deliverer.calls[0]
	if call.sessionID != "telegram_group_1" {
		t.Errorf("delivered to %q, want telegram_group_1", call.sessionID)
	}
	if want := "2024-05-10 telegram_group_1 今日词云"; call.title != want {
		t.Errorf("title = %q, want %q", call.title, want)
	}
}

func TestRunDailyAllDeliveryFailureContinues(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)

	seed(t, store, "telegram_group_1", "u1", "Alice", "first group", now.Add(-time.Minute))
	seed(t, store, "telegram_group_2", "u2", "Bob", "second group", now.Add(-time.Minute))

	deliverer := &fakeDeliverer{fail: map[string]error{
		"telegram_group_1": errors.New("render exploded"),
	}}
	svc := newTestService(t, store, deliverer, Config{MinDailyMessages: 1}, nil, now)

	if err := svc.RunDailyAll(context.Background(), false); err != nil {
		t.Fatalf("RunDailyAll returned %v, want nil despite delivery failure", err)
	}
	if len(deliverer.calls) != 1 || deliverer.calls[0].sessionID != "telegram_group_2" {
		t.Fatalf("deliveries = %+v, want only telegram_group_2", deliverer.calls)
	}
}

func TestRunDailyAllRespectsEnabledSet(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)

	seed(t, store, "telegram_group_1", "u1", "Alice", "enabled group", now.Add(-time.Minute))
	seed(t, store, "telegram_group_2", "u2", "Bob", "disabled group", now.Add(-time.Minute))

	deliverer := &fakeDeliverer{}
	svc := newTestService(t, store, deliverer, Config{MinDailyMessages: 1}, []string{"telegram_group_1"}, now)

	if err := svc.RunDailyAll(context.Background(), false); err != nil {
		t.Fatalf("RunDailyAll failed: %v", err)
	}
	if len(deliverer.calls) != 1 || deliverer.calls[0].sessionID != "telegram_group_1" {
		t.Fatalf("deliveries = %+v, want only the enabled session", deliverer.calls)
	}

	svc.Enable("telegram_group_2")
	if !svc.IsEnabled("telegram_group_2") {
		t.Error("Enable did not take effect")
	}
	svc.Disable("telegram_group_2")
	if svc.IsEnabled("telegram_group_2") {
		t.Error("Disable did not take effect")
	}
}

func TestRunAutoAll(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)

	seed(t, store, "telegram_group_1", "u1", "Alice", "weekly words here", now.Add(-48*time.Hour))
	seed(t, store, "telegram:private:9", "u9", "Eve", "private words too", now.Add(-24*time.Hour))

	deliverer := &fakeDeliverer{}
	svc := newTestService(t, store, deliverer, Config{HistoryDays: 7}, nil, now)

	if err := svc.RunAutoAll(context.Background(), false); err != nil {
		t.Fatalf("RunAutoAll failed: %v", err)
	}
	if len(deliverer.calls) != 2 {
		t.Fatalf("got %d deliveries, want group and private sessions", len(deliverer.calls))
	}
	for _, call := range deliverer.calls {
		if !strings.Contains(call.title, "7") {
			t.Errorf("title %q does not mention the window length", call.title)
		}
	}
}

func TestExpandTitle(t *testing.T) {
	t.Parallel()

	got := ExpandTitle("{date} {sessionName} report", "2024-05-10", "telegram_group_1")
	if got != "2024-05-10 telegram_group_1 report" {
		t.Errorf("ExpandTitle = %q", got)
	}

	if got := ExpandTitle("static title", "2024-05-10", "x"); got != "static title" {
		t.Errorf("ExpandTitle without placeholders = %q", got)
	}
}
