package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = `CloudRank 词云统计机器人

/cloud [天数] - 生成最近N天的词云统计 (默认按配置)
/cloud_today - 生成今天的词云统计
/rank [天数] - 查看活跃用户排行榜 (默认今天)
/cloud_enable [会话] - 开启定时词云，默认本会话 (管理员)
/cloud_disable [会话] - 关闭定时词云，默认本会话 (管理员)
/cloud_force_daily - 立即生成所有会话的今日词云 (管理员)
/help - 显示本帮助`

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "start",
		text: "👋 我会统计群里的聊天热词和活跃用户。发送 /help 查看可用命令。"}.Handle
}

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "help", text: helpText}.Handle
}

type staticHandler struct {
	deps HandlerDeps
	name string
	text string
}

func (h staticHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", h.name)

	if update.Message == nil || update.Message.From == nil {
		return
	}

	sendText(ctx, b, log, update.Message.Chat.ID, h.text)
}
