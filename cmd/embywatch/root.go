package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/embywatch/internal/config"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "embywatch",
	Short: "Announce new media-server arrivals on Telegram",
	Long: `embywatch - media catalog change notifier

Polls an Emby/Jellyfin-compatible server, detects titles and new
source variants added since the last notified state, enriches them
with TMDB metadata and a Trakt rating, and posts one Telegram
message per change.

Run 'embywatch run' for a single cycle or 'embywatch watch' to poll
on an interval.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to config file")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("embywatch {{.Version}}\n")
}

// loadConfig reads the config file, printing aggregated errors the way
// the validator reports them.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
