package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const forceDailyTimeout = 2 * time.Minute

// NewForceDailyHandler returns a handler for the /cloud_force_daily
// command, which runs the daily report batch immediately for every
// enabled session. The scheduled occurrence later the same day still
// fires. Requires admin privileges (enforced by middleware).
func NewForceDailyHandler(deps HandlerDeps) bot.HandlerFunc {
	return forceDailyHandler{deps}.Handle
}

type forceDailyHandler struct {
	deps HandlerDeps
}

func (h forceDailyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "force_daily")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "admin forced daily report batch", "user_id", update.Message.From.ID)
	sendText(ctx, b, log, chatID, "⏳ 开始生成今日词云...")

	runCtx, cancel := context.WithTimeout(ctx, forceDailyTimeout)
	defer cancel()

	if err := h.deps.ForceDaily(runCtx); err != nil {
		log.ErrorContext(ctx, "forced daily batch failed", "error", err)
		sendText(ctx, b, log, chatID, "⚠️ 今日词云生成失败，请查看日志")
		return
	}

	sendText(ctx, b, log, chatID, "✅ 今日词云已生成完毕")
}
