package bot

import (
	"testing"
	"time"

	"github.com/gemiluxvii/cloudrank/internal/config"
	"github.com/gemiluxvii/cloudrank/internal/scheduler"
)

func baseConfig() *config.Config {
	return &config.Config{
		AutoGenerateCron:  "0 20 * * *",
		DailyGenerateTime: "23:30",
		Location:          time.UTC,
	}
}

func TestRegisterSchedules(t *testing.T) {
	t.Parallel()

	if err := RegisterSchedules(scheduler.New(nil), baseConfig(), nil, nil); err != nil {
		t.Fatalf("RegisterSchedules failed: %v", err)
	}
}

func TestRegisterSchedulesBadCron(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.AutoGenerateCron = "not a cron"

	// Disabled feature with a bad schedule is only a warning.
	if err := RegisterSchedules(scheduler.New(nil), cfg, nil, nil); err != nil {
		t.Fatalf("disabled job with bad cron should not fail startup: %v", err)
	}

	cfg.AutoGenerateEnabled = true
	if err := RegisterSchedules(scheduler.New(nil), cfg, nil, nil); err == nil {
		t.Fatal("enabled job with bad cron must fail startup")
	}
}

func TestRegisterSchedulesBadDailyTime(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.DailyGenerateTime = "25:99"
	cfg.DailyGenerateEnabled = true

	if err := RegisterSchedules(scheduler.New(nil), cfg, nil, nil); err == nil {
		t.Fatal("enabled daily job with bad time must fail startup")
	}
}
