package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is not set")
	ErrMissingOwner = errors.New("OWNER_ID is not set")
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	OwnerID          int64  `mapstructure:"OWNER_ID"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	BadgerDBPath  string `mapstructure:"BADGERDB_PATH"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`

	DownloadsDir    string `mapstructure:"DOWNLOADS_DIR"`
	LinkPattern     string `mapstructure:"LINK_PATTERN"`
	Caption         string `mapstructure:"CAPTION"`
	YtDlpPath       string `mapstructure:"YTDLP_PATH"`
	YtDlpCookies    string `mapstructure:"YTDLP_COOKIES"`
	ExtractFormat   string `mapstructure:"EXTRACT_FORMAT"`
	BrowserFallback bool   `mapstructure:"BROWSER_FALLBACK"`

	BroadcastDelay  time.Duration `mapstructure:"BROADCAST_DELAY"`
	Workers         int           `mapstructure:"WORKERS"`
	DefaultLanguage string        `mapstructure:"DEFAULT_LANGUAGE"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"TELEGRAM_BOT_TOKEN": "",
	"OWNER_ID":           0,
	"STORAGE_DRIVER":     "badger",
	"BADGERDB_PATH":      "./badger_data",
	"SQLITE_PATH":        "./users.db",
	"DOWNLOADS_DIR":      "./downloads",
	"LINK_PATTERN":       "instagram.com",
	"CAPTION":            "✨ Here is your content!",
	"YTDLP_PATH":         "yt-dlp",
	"YTDLP_COOKIES":      "",
	"EXTRACT_FORMAT":     "best",
	"BROWSER_FALLBACK":   false,
	"BROADCAST_DELAY":    100 * time.Millisecond,
	"WORKERS":            4,
	"DEFAULT_LANGUAGE":   "en",
	"LOG_LEVEL":          "info",
}

// LoadConfig reads configuration from path/config.yaml (optional) and
// environment variables. Environment variables take precedence.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Every key needs a default so that AutomaticEnv values reach Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, the environment may carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks required values and repairs out-of-range optional ones.
func (c *Config) Validate() error {
	c.TelegramBotToken = strings.TrimSpace(c.TelegramBotToken)
	if c.TelegramBotToken == "" {
		return ErrMissingToken
	}
	if c.OwnerID == 0 {
		return ErrMissingOwner
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.BroadcastDelay < 0 {
		c.BroadcastDelay = 0
	}
	return nil
}
