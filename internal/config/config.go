// Package config loads harvester settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every tunable of a harvest run plus sink credentials.
type Config struct {
	// Collection.
	MaxArticles         int           `mapstructure:"max_articles"`
	RecencyDays         int           `mapstructure:"recency_days"`
	RequestDelay        time.Duration `mapstructure:"request_delay"`
	MinContentLength    int           `mapstructure:"min_content_length"`
	OverfetchMultiplier int           `mapstructure:"overfetch_multiplier"`
	MinKeywordPriority  int           `mapstructure:"min_keyword_priority"`

	// Locale of the feed search.
	Language string `mapstructure:"language"`
	Region   string `mapstructure:"region"`

	// Timeouts.
	FeedTimeout    time.Duration `mapstructure:"feed_timeout"`
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`

	// Keyword source (Google Sheets); empty spreadsheet id disables the
	// live source and the built-in list is used.
	SheetsCredentialsFile string        `mapstructure:"sheets_credentials_file"`
	SheetsSpreadsheetID   string        `mapstructure:"sheets_spreadsheet_id"`
	KeywordCachePath      string        `mapstructure:"keyword_cache_path"`
	KeywordCacheTTL       time.Duration `mapstructure:"keyword_cache_ttl"`

	// Storage sink (Notion).
	NotionAPIKey     string `mapstructure:"notion_api_key"`
	NotionDatabaseID string `mapstructure:"notion_database_id"`

	// Messaging sink (Telegram).
	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	TelegramChatID   string `mapstructure:"telegram_chat_id"`

	// Optional digest sink registry file (YAML/JSON).
	SinksFile string `mapstructure:"sinks_file"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.AutomaticEnv()

	v.SetDefault("max_articles", 10)
	v.SetDefault("recency_days", 1)
	v.SetDefault("request_delay", time.Second)
	v.SetDefault("min_content_length", 200)
	v.SetDefault("overfetch_multiplier", 2)
	v.SetDefault("min_keyword_priority", 3)
	v.SetDefault("language", "ko")
	v.SetDefault("region", "KR")
	v.SetDefault("feed_timeout", 30*time.Second)
	v.SetDefault("resolve_timeout", 10*time.Second)
	v.SetDefault("fetch_timeout", 20*time.Second)
	v.SetDefault("keyword_cache_path", "keywords.db")
	v.SetDefault("keyword_cache_ttl", 5*time.Minute)
	v.SetDefault("log_level", "info")

	if err := v.BindEnv("sinks_file"); err != nil {
		return nil, fmt.Errorf("bind sinks_file: %w", err)
	}

	// Credentials keep their conventional unprefixed names.
	for key, env := range map[string]string{
		"sheets_credentials_file": "GOOGLE_SHEETS_CREDENTIALS_FILE",
		"sheets_spreadsheet_id":   "GOOGLE_SHEETS_SPREADSHEET_ID",
		"notion_api_key":          "NOTION_API_KEY",
		"notion_database_id":      "NOTION_DATABASE_ID",
		"telegram_bot_token":      "TELEGRAM_BOT_TOKEN",
		"telegram_chat_id":        "TELEGRAM_CHAT_ID",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ValidateSinks checks that the storage and messaging sink credentials are
// present. The collection pipeline itself has no required settings.
func (c *Config) ValidateSinks() error {
	required := []struct {
		env string
		val string
	}{
		{"NOTION_API_KEY", c.NotionAPIKey},
		{"NOTION_DATABASE_ID", c.NotionDatabaseID},
		{"TELEGRAM_BOT_TOKEN", c.TelegramBotToken},
		{"TELEGRAM_CHAT_ID", c.TelegramChatID},
	}
	missing := make([]string, 0, len(required))
	for _, r := range required {
		if r.val == "" {
			missing = append(missing, r.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %v", missing)
	}
	return nil
}
