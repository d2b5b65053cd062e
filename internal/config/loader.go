package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from, in order of precedence:
// 1. CLOUDRANK_* environment variables
// 2. the config file (default ./config.yaml)
// 3. built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CLOUDRANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: failed to read config file: %w", ErrConfiguration, err)
		}
		// Missing config file is fine, defaults plus env apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfiguration, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("db_path", "cloudrank.db")
	v.SetDefault("timezone", "Asia/Shanghai")

	v.SetDefault("auto_generate_enabled", false)
	v.SetDefault("auto_generate_cron", "0 20 * * *")
	v.SetDefault("daily_generate_enabled", true)
	v.SetDefault("daily_generate_time", "23:30")
	v.SetDefault("daily_summary_title", "{date} {sessionName} 今日词云")

	v.SetDefault("enabled_sessions", []string{})

	v.SetDefault("history_days", 7)
	v.SetDefault("max_word_count", 100)
	v.SetDefault("min_word_length", 2)
	v.SetDefault("stop_words_file", "")
	v.SetDefault("include_bot_messages", false)

	v.SetDefault("ranking_user_count", 5)
	v.SetDefault("ranking_medals", []string{"🥇", "🥈", "🥉", "🏅", "🏅"})
	v.SetDefault("min_daily_messages", 10)

	v.SetDefault("maintenance_cron", "0 0 4 * * *")
}
