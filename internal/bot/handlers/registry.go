package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its pattern and
// middleware, everything needed to register it with the bot.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available
// bot commands keyed by the command string.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(pattern string, handler tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     handler,
			Middleware:  mw,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	handlers["/start"] = command("start", NewStartHandler(deps))
	handlers["/help"] = command("help", NewHelpHandler(deps))
	handlers["/cloud"] = command("cloud", NewCloudHandler(deps))
	handlers["/cloud_today"] = command("cloud_today", NewTodayHandler(deps))
	handlers["/rank"] = command("rank", NewRankHandler(deps))

	admin := AdminOnly(deps)
	handlers["/cloud_enable"] = command("cloud_enable", NewEnableHandler(deps), admin)
	handlers["/cloud_disable"] = command("cloud_disable", NewDisableHandler(deps), admin)
	handlers["/cloud_force_daily"] = command("cloud_force_daily", NewForceDailyHandler(deps), admin)

	return handlers
}
