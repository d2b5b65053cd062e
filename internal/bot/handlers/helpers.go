package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/gemiluxvii/cloudrank/internal/session"
)

// timeInLocation gives the current wall-clock time in the configured
// timezone, for date headers in replies.
func timeInLocation(deps HandlerDeps) time.Time {
	return time.Now().In(deps.Config.Location)
}

// sessionFromMessage maps an incoming message to its canonical
// session id. Returns "" for chat types the bot does not track.
func sessionFromMessage(msg *models.Message) string {
	switch msg.Chat.Type {
	case models.ChatTypeGroup, models.ChatTypeSupergroup:
		return session.GroupID("telegram", msg.Chat.ID)
	case models.ChatTypePrivate:
		return session.PrivateID("telegram", msg.Chat.ID)
	default:
		return ""
	}
}

// parseDaysArg extracts an optional day-count argument from a command
// message like "/cloud 30". Out-of-range or malformed values fall back
// to the default.
func parseDaysArg(text string, def int) int {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return def
	}

	days, err := strconv.Atoi(fields[1])
	if err != nil || days < 1 || days > 365 {
		return def
	}

	return days
}
