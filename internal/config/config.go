// Package config provides configuration loading and validation for
// the CloudRank bot. Values come from defaults, an optional
// config.yaml and CLOUDRANK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration indicates the configuration could not be loaded or
// failed validation.
var ErrConfiguration = errors.New("configuration error")

// Config defines every tunable of the application. Keys are flat
// snake_case entries in config.yaml.
type Config struct {
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `mapstructure:"log_json"`

	BotToken   string `mapstructure:"bot_token"    validate:"required"`
	BotAdminID int64  `mapstructure:"bot_admin_id" validate:"required,gt=0"`

	DBPath   string `mapstructure:"db_path"  validate:"required"`
	Timezone string `mapstructure:"timezone" validate:"required"`

	AutoGenerateEnabled  bool   `mapstructure:"auto_generate_enabled"`
	AutoGenerateCron     string `mapstructure:"auto_generate_cron"    validate:"required"`
	DailyGenerateEnabled bool   `mapstructure:"daily_generate_enabled"`
	DailyGenerateTime    string `mapstructure:"daily_generate_time"   validate:"required"`
	DailySummaryTitle    string `mapstructure:"daily_summary_title"`

	EnabledSessions []string `mapstructure:"enabled_sessions"`

	HistoryDays        int    `mapstructure:"history_days"         validate:"min=1,max=365"`
	MaxWordCount       int    `mapstructure:"max_word_count"       validate:"min=1"`
	MinWordLength      int    `mapstructure:"min_word_length"      validate:"min=1"`
	StopWordsFile      string `mapstructure:"stop_words_file"`
	IncludeBotMessages bool   `mapstructure:"include_bot_messages"`

	RankingUserCount int      `mapstructure:"ranking_user_count" validate:"min=1,max=50"`
	RankingMedals    []string `mapstructure:"ranking_medals"     validate:"min=1"`
	MinDailyMessages int      `mapstructure:"min_daily_messages" validate:"min=0"`

	MaintenanceCron string `mapstructure:"maintenance_cron" validate:"required"`

	// Location is resolved from Timezone at load time.
	Location *time.Location `mapstructure:"-"`
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: invalid timezone %q: %w", ErrConfiguration, c.Timezone, err)
	}
	c.Location = loc

	return nil
}
