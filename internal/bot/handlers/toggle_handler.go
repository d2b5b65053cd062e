package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/gemiluxvii/cloudrank/internal/session"
)

// NewEnableHandler returns a handler for the /cloud_enable command,
// opting the current chat into scheduled generation.
func NewEnableHandler(deps HandlerDeps) bot.HandlerFunc {
	return toggleHandler{deps: deps, enable: true}.Handle
}

// NewDisableHandler returns a handler for the /cloud_disable command.
// History is retained, only scheduled generation stops.
func NewDisableHandler(deps HandlerDeps) bot.HandlerFunc {
	return toggleHandler{deps: deps, enable: false}.Handle
}

type toggleHandler struct {
	deps   HandlerDeps
	enable bool
}

func (h toggleHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "toggle")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	// An explicit session argument targets another conversation,
	// otherwise the command applies to the current chat.
	sessionID := ""
	if fields := strings.Fields(update.Message.Text); len(fields) > 1 {
		resolved, err := session.Resolve(fields[1])
		if err != nil {
			sendText(ctx, b, log, chatID, fmt.Sprintf("⚠️ 无法识别会话标识 %q", fields[1]))
			return
		}
		sessionID = resolved
	} else {
		sessionID = sessionFromMessage(update.Message)
	}
	if sessionID == "" {
		return
	}

	if h.enable {
		h.deps.Reports.Enable(sessionID)
		log.InfoContext(ctx, "enabled scheduled reports", "session_id", sessionID)
		sendText(ctx, b, log, chatID, fmt.Sprintf("✅ 已为会话 %s 开启定时词云", sessionID))
		return
	}

	h.deps.Reports.Disable(sessionID)
	log.InfoContext(ctx, "disabled scheduled reports", "session_id", sessionID)
	sendText(ctx, b, log, chatID, fmt.Sprintf("🚫 已为会话 %s 关闭定时词云，历史记录保留", sessionID))
}
