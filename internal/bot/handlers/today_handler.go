package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/gemiluxvii/cloudrank/internal/report"
)

// NewTodayHandler returns a handler for the /cloud_today command,
// covering everything since local midnight in the current chat.
func NewTodayHandler(deps HandlerDeps) bot.HandlerFunc {
	return todayHandler{deps}.Handle
}

type todayHandler struct {
	deps HandlerDeps
}

func (h todayHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cloud_today")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sessionID := sessionFromMessage(update.Message)
	if sessionID == "" {
		return
	}

	log.InfoContext(ctx, "handling /cloud_today command", "session_id", sessionID)

	result, err := h.deps.Reports.GenerateToday(ctx, sessionID)
	if err != nil {
		replyGenerationError(ctx, b, log, chatID, err)
		return
	}

	if result.TotalMessages == 0 {
		sendText(ctx, b, log, chatID, "⚠️ 今天还没有消息记录")
		return
	}

	date := timeInLocation(h.deps).Format("2006-01-02")
	title := fmt.Sprintf("今日词云 - %s", date)
	sendText(ctx, b, log, chatID, report.FormatText(result, title))
}
