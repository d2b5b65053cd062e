package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/gemiluxvii/cloudrank/internal/database"
	"github.com/gemiluxvii/cloudrank/internal/session"
)

const (
	dbSaveTimeout  = 5 * time.Second
	maxContentRune = 1000
)

// NewRecordHandler creates the default handler that appends every
// plain chat message to the store for later aggregation. Commands and
// empty messages are skipped; a store failure drops the message
// instead of blocking the update pipeline.
func NewRecordHandler(deps HandlerDeps) bot.HandlerFunc {
	return recordHandler{deps}.Handle
}

type recordHandler struct {
	deps HandlerDeps
}

func (h recordHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "record")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}

	if r := []rune(text); len(r) > maxContentRune {
		text = string(r[:maxContentRune]) + "..."
	}

	var sessionID string
	switch msg.Chat.Type {
	case models.ChatTypeGroup, models.ChatTypeSupergroup:
		sessionID = session.GroupID("telegram", msg.Chat.ID)
	case models.ChatTypePrivate:
		sessionID = session.PrivateID("telegram", msg.Chat.ID)
	default:
		log.DebugContext(ctx, "ignoring unsupported chat type", "chat_type", msg.Chat.Type)
		return
	}

	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	if msg.From.Username != "" && name == "" {
		name = msg.From.Username
	}

	saveCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	defer cancel()

	record := &database.Message{
		SessionID:  sessionID,
		SenderID:   strconv.FormatInt(msg.From.ID, 10),
		SenderName: name,
		Content:    text,
		Timestamp:  time.Unix(int64(msg.Date), 0).UTC(),
		IsBot:      msg.From.IsBot,
	}
	if err := h.deps.Store.SaveMessage(saveCtx, record); err != nil {
		// Losing one analytics data point is acceptable, blocking
		// message handling is not.
		log.ErrorContext(ctx, "failed to record message, dropping",
			"session_id", sessionID, "error", err)
	}
}
