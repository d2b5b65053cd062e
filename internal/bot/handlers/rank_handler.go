package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/gemiluxvii/cloudrank/internal/report"
)

// NewRankHandler returns a handler for the /rank command, which shows
// the user activity ranking for the trailing N days (default 1).
func NewRankHandler(deps HandlerDeps) bot.HandlerFunc {
	return rankHandler{deps}.Handle
}

type rankHandler struct {
	deps HandlerDeps
}

func (h rankHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "rank")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sessionID := sessionFromMessage(update.Message)
	if sessionID == "" {
		return
	}

	days := parseDaysArg(update.Message.Text, 1)
	log.InfoContext(ctx, "handling /rank command", "session_id", sessionID, "days", days)

	result, err := h.deps.Reports.GenerateWindow(ctx, sessionID, days)
	if err != nil {
		replyGenerationError(ctx, b, log, chatID, err)
		return
	}

	if len(result.Ranking) == 0 {
		sendText(ctx, b, log, chatID, "⚠️ 该时段暂无排行数据")
		return
	}

	text := fmt.Sprintf("📊 本群 %d 位朋友共产生 %d 条发言\n\n活跃用户排行榜:\n%s",
		result.TotalUsers, result.TotalMessages, report.FormatRanking(result.Ranking))
	sendText(ctx, b, log, chatID, text)
}
