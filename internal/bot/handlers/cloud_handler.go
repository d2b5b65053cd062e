package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/gemiluxvii/cloudrank/internal/database"
	"github.com/gemiluxvii/cloudrank/internal/report"
)

// NewCloudHandler returns a handler for the /cloud command, which
// aggregates the trailing N days (default: configured history window)
// for the current chat.
func NewCloudHandler(deps HandlerDeps) bot.HandlerFunc {
	return cloudHandler{deps}.Handle
}

type cloudHandler struct {
	deps HandlerDeps
}

func (h cloudHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cloud")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sessionID := sessionFromMessage(update.Message)
	if sessionID == "" {
		return
	}

	days := parseDaysArg(update.Message.Text, h.deps.Config.HistoryDays)
	log.InfoContext(ctx, "handling /cloud command", "session_id", sessionID, "days", days)

	result, err := h.deps.Reports.GenerateWindow(ctx, sessionID, days)
	if err != nil {
		replyGenerationError(ctx, b, log, chatID, err)
		return
	}

	if result.TotalMessages == 0 {
		sendText(ctx, b, log, chatID, fmt.Sprintf("⚠️ 最近%d天没有消息记录", days))
		return
	}

	title := fmt.Sprintf("词云 - 最近%d天", days)
	sendText(ctx, b, log, chatID, report.FormatText(result, title))
}

// replyGenerationError maps pipeline failures to a short user-facing
// message. Store failures read as "no data" rather than an internal
// error dump.
func replyGenerationError(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, err error) {
	log.ErrorContext(ctx, "report generation failed", "error", err)

	text := "⚠️ 词云生成失败，请稍后再试"
	if errors.Is(err, database.ErrStoreUnavailable) {
		text = "⚠️ 暂无可用数据，请稍后再试"
	}
	sendText(ctx, b, log, chatID, text)
}

func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "failed to send reply", "error", err, "chat_id", chatID)
	}
}
