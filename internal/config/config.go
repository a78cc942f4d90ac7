// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML values can be written as
// strings like "15m" or "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for toml.Decode.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration structure.
type Config struct {
	Log      LogConfig      `toml:"log"`
	State    StateConfig    `toml:"state"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Poll     PollConfig     `toml:"poll"`
	TMDB     *TMDBConfig    `toml:"tmdb"`
	Trakt    *TraktConfig   `toml:"trakt"`
	Telegram TelegramConfig `toml:"telegram"`
	HTTP     HTTPConfig     `toml:"http"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type StateConfig struct {
	Path string `toml:"path"`
}

type CatalogConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

type PollConfig struct {
	Interval     Duration `toml:"interval"`
	RecentWindow Duration `toml:"recent_window"`
	Concurrency  int      `toml:"concurrency"`
}

type TMDBConfig struct {
	APIKey           string `toml:"api_key"`
	Language         string `toml:"language"`
	FallbackLanguage string `toml:"fallback_language"`
}

type TraktConfig struct {
	APIKey string `toml:"api_key"`
}

type TelegramConfig struct {
	BotToken  string `toml:"bot_token"`
	ChatID    string `toml:"chat_id"`
	ParseMode string `toml:"parse_mode"`
}

type HTTPConfig struct {
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
	RetryDelay Duration `toml:"retry_delay"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.State.Path == "" {
		c.State.Path = "./data/embywatch.db"
	}
	if c.Poll.Interval == 0 {
		c.Poll.Interval = Duration(15 * time.Minute)
	}
	if c.Poll.Concurrency == 0 {
		c.Poll.Concurrency = 4
	}
	if c.Telegram.ParseMode == "" {
		c.Telegram.ParseMode = "Markdown"
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = Duration(10 * time.Second)
	}
	if c.HTTP.MaxRetries == 0 {
		c.HTTP.MaxRetries = 3
	}
	if c.HTTP.RetryDelay == 0 {
		c.HTTP.RetryDelay = Duration(500 * time.Millisecond)
	}
	if c.TMDB != nil {
		if c.TMDB.Language == "" {
			c.TMDB.Language = "en"
		}
		if c.TMDB.FallbackLanguage == "" {
			c.TMDB.FallbackLanguage = "en"
		}
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable
// values and reports variables that are not set.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) (string, []string) {
	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		missing = append(missing, varName)
		return match
	})
	return result, missing
}
