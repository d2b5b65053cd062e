package database

import "time"

// Message is one persisted chat message. Messages are append-only: once
// written they are never updated or deleted by this package.
type Message struct {
	ID         uint      `db:"id"`
	SessionID  string    `db:"session_id"`
	SenderID   string    `db:"sender_id"`
	SenderName string    `db:"sender_name"`
	Content    string    `db:"content"`
	Timestamp  time.Time `db:"timestamp"`
	IsBot      bool      `db:"is_bot"`
}

// UserCount is the per-sender message count for one aggregation window.
type UserCount struct {
	SenderID   string `db:"sender_id"`
	SenderName string `db:"sender_name"`
	Count      int    `db:"message_count"`
}
