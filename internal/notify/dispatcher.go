// Package notify renders change events into messages and delivers
// them, one message per event.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/embywatch/internal/diff"
	"github.com/vmunix/embywatch/internal/enrich"
	"github.com/vmunix/embywatch/internal/telegram"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg telegram.Message) error
}

// Dispatcher renders and delivers one message per change event.
type Dispatcher struct {
	sender    Sender
	chatID    string
	parseMode string
	logger    *slog.Logger
}

// New creates a dispatcher for the given chat.
func New(sender Sender, chatID, parseMode string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:    sender,
		chatID:    chatID,
		parseMode: parseMode,
		logger:    logger.With("component", "notify"),
	}
}

// Deliver sends the message for one change. A failure is returned to
// the caller so the change stays out of the snapshot and is retried on
// the next run; it never affects other changes.
func (d *Dispatcher) Deliver(ctx context.Context, change diff.Change, meta enrich.Result) error {
	msg := telegram.Message{
		ChatID:    d.chatID,
		Text:      renderCaption(change, meta),
		ParseMode: d.parseMode,
		PhotoURL:  meta.PosterURL,
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver %s for item %s: %w", change.Kind, change.Item.ID, err)
	}

	d.logger.Info("notification sent",
		"item_id", change.Item.ID,
		"kind", change.Kind,
		"title", change.Item.DisplayTitle(),
		"sources", len(change.AddedSources),
	)
	return nil
}
