package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/embywatch/internal/httpx"
	"github.com/vmunix/embywatch/internal/telegram"
)

var testNotifyCmd = &cobra.Command{
	Use:   "test-notify",
	Short: "Send a test message to the configured Telegram chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Log.Level)

		bot := telegram.New(cfg.Telegram.BotToken,
			telegram.WithHTTPClient(httpx.NewClient(cfg.HTTP.Timeout.Std(), httpx.WithLogger(logger))))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err = bot.Send(ctx, telegram.Message{
			ChatID:    cfg.Telegram.ChatID,
			Text:      "embywatch test notification 👋",
			ParseMode: cfg.Telegram.ParseMode,
		})
		if err != nil {
			return fmt.Errorf("send test message: %w", err)
		}

		fmt.Println("Test message delivered.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testNotifyCmd)
}
