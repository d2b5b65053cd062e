package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/gemiluxvii/cloudrank/internal/aggregate"
	"github.com/gemiluxvii/cloudrank/internal/report"
	"github.com/gemiluxvii/cloudrank/internal/session"
)

// Deliverer sends finished reports to their originating chats. It
// implements the report.Deliverer interface.
type Deliverer struct {
	bot    *bot.Bot
	logger *slog.Logger
}

func NewDeliverer(b *bot.Bot, logger *slog.Logger) *Deliverer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Deliverer{bot: b, logger: logger.With("component", "deliverer")}
}

// Deliver renders the result as text and sends it to the chat encoded
// in the canonical session id.
func (d *Deliverer) Deliver(ctx context.Context, sessionID string, result *aggregate.Result, title string) error {
	chatID, err := session.ChatID(sessionID)
	if err != nil {
		return fmt.Errorf("cannot address session %s: %w", sessionID, err)
	}

	text := report.FormatText(result, title)
	if _, err := d.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("failed to send report to chat %d: %w", chatID, err)
	}

	d.logger.DebugContext(ctx, "delivered report", "session_id", sessionID, "chat_id", chatID)
	return nil
}
