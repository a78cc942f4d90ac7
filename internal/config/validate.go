package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validParseModes = map[string]bool{
	"Markdown": true, "MarkdownV2": true, "HTML": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Catalog.URL == "" {
		errs = append(errs, "catalog.url: required")
	}
	if c.Catalog.APIKey == "" {
		errs = append(errs, "catalog.api_key: required")
	}

	if c.Telegram.BotToken == "" {
		errs = append(errs, "telegram.bot_token: required")
	}
	if c.Telegram.ChatID == "" {
		errs = append(errs, "telegram.chat_id: required")
	}
	if !validParseModes[c.Telegram.ParseMode] {
		errs = append(errs, fmt.Sprintf("telegram.parse_mode: must be one of Markdown, MarkdownV2, HTML; got %q", c.Telegram.ParseMode))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.TMDB != nil && c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required when tmdb is configured")
	}
	if c.Trakt != nil && c.Trakt.APIKey == "" {
		errs = append(errs, "trakt.api_key: required when trakt is configured")
	}

	if c.Poll.Interval.Std() <= 0 {
		errs = append(errs, fmt.Sprintf("poll.interval: must be positive, got %s", c.Poll.Interval.Std()))
	}
	if c.Poll.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("poll.concurrency: must be at least 1, got %d", c.Poll.Concurrency))
	}

	return errs
}
