package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrStoreUnavailable wraps failures of the underlying durable medium.
// Callers on the ingestion path drop the message rather than block; callers
// on the aggregation path report "no data" rather than crash.
var ErrStoreUnavailable = errors.New("message store unavailable")

// Store defines the interface for message persistence and windowed reads.
// All timestamps are UTC instants; callers convert local boundaries before
// calling.
type Store interface {
	// SaveMessage appends one message record. Only messages with non-empty
	// content should reach this method.
	SaveMessage(ctx context.Context, msg *Message) error

	// QueryWindow returns messages for a session in [from, to), ordered by
	// timestamp ascending, as a lazy forward-only cursor. An empty window
	// yields a cursor that is immediately exhausted, not an error.
	QueryWindow(ctx context.Context, sessionID string, from, to time.Time, includeBots bool) (*MessageIter, error)

	// CountByUser returns per-sender message counts for a session window,
	// computed in SQL without materializing raw text.
	CountByUser(ctx context.Context, sessionID string, from, to time.Time, includeBots bool) ([]UserCount, error)

	// CountWindow returns the total number of messages in a session window.
	CountWindow(ctx context.Context, sessionID string, from, to time.Time, includeBots bool) (int64, error)

	// ActiveSessions returns session ids with at least one message since
	// from. When groupOnly is set, private sessions are excluded.
	ActiveSessions(ctx context.Context, from time.Time, groupOnly bool) ([]string, error)

	// RunMaintenance performs database maintenance (VACUUM, ANALYZE).
	RunMaintenance(ctx context.Context) error
}

type sqlStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given database pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlStore{db: db, logger: logger.With("component", "store")}
}

func (s *sqlStore) SaveMessage(ctx context.Context, msg *Message) error {
	if msg == nil {
		return errors.New("cannot save nil message")
	}
	if strings.TrimSpace(msg.Content) == "" {
		return errors.New("cannot save message with empty content")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.Timestamp = msg.Timestamp.UTC()

	query := `INSERT INTO messages (session_id, sender_id, sender_name, content, timestamp, is_bot)
              VALUES (:session_id, :sender_id, :sender_name, :content, :timestamp, :is_bot)`

	if _, err := s.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("insert message: %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *sqlStore) QueryWindow(ctx context.Context, sessionID string, from, to time.Time, includeBots bool) (*MessageIter, error) {
	query := `SELECT id, session_id, sender_id, sender_name, content, timestamp, is_bot
              FROM messages
              WHERE session_id = ? AND timestamp >= ? AND timestamp < ?`
	args := []any{sessionID, from.UTC(), to.UTC()}
	if !includeBots {
		query += ` AND is_bot = 0`
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query window: %w: %w", ErrStoreUnavailable, err)
	}
	return &MessageIter{rows: rows}, nil
}

func (s *sqlStore) CountByUser(ctx context.Context, sessionID string, from, to time.Time, includeBots bool) ([]UserCount, error) {
	query := `SELECT sender_id, MAX(sender_name) AS sender_name, COUNT(*) AS message_count
              FROM messages
              WHERE session_id = ? AND timestamp >= ? AND timestamp < ?`
	args := []any{sessionID, from.UTC(), to.UTC()}
	if !includeBots {
		query += ` AND is_bot = 0`
	}
	query += ` GROUP BY sender_id ORDER BY message_count DESC, sender_name ASC`

	var counts []UserCount
	if err := s.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count by user: %w: %w", ErrStoreUnavailable, err)
	}
	return counts, nil
}

func (s *sqlStore) CountWindow(ctx context.Context, sessionID string, from, to time.Time, includeBots bool) (int64, error) {
	query := `SELECT COUNT(*) FROM messages
              WHERE session_id = ? AND timestamp >= ? AND timestamp < ?`
	args := []any{sessionID, from.UTC(), to.UTC()}
	if !includeBots {
		query += ` AND is_bot = 0`
	}

	var count int64
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count window: %w: %w", ErrStoreUnavailable, err)
	}
	return count, nil
}

func (s *sqlStore) ActiveSessions(ctx context.Context, from time.Time, groupOnly bool) ([]string, error) {
	query := `SELECT DISTINCT session_id FROM messages WHERE timestamp >= ?`
	if groupOnly {
		query += ` AND session_id LIKE '%\_group\_%' ESCAPE '\'`
	}
	query += ` ORDER BY session_id ASC`

	var sessions []string
	if err := s.db.SelectContext(ctx, &sessions, query, from.UTC()); err != nil {
		return nil, fmt.Errorf("active sessions: %w: %w", ErrStoreUnavailable, err)
	}
	return sessions, nil
}

func (s *sqlStore) RunMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running database maintenance")

	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("analyze: %w: %w", ErrStoreUnavailable, err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// MessageIter is a lazy, single-pass, forward-only cursor over a window
// query. It is not restartable and must be closed by the caller.
type MessageIter struct {
	rows *sqlx.Rows
	msg  Message
	err  error
}

// Next advances to the next record, returning false when the cursor is
// exhausted or a scan error occurred.
func (it *MessageIter) Next() bool {
	if it.err != nil || !it.rows.Next() {
		return false
	}
	if err := it.rows.StructScan(&it.msg); err != nil {
		it.err = fmt.Errorf("scan message: %w: %w", ErrStoreUnavailable, err)
		return false
	}
	return true
}

// Message returns the current record. Valid only after a true Next.
func (it *MessageIter) Message() Message {
	return it.msg
}

// Err returns the first error encountered while iterating, if any.
func (it *MessageIter) Err() error {
	if it.err != nil {
		return it.err
	}
	if err := it.rows.Err(); err != nil {
		return fmt.Errorf("iterate messages: %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the underlying cursor.
func (it *MessageIter) Close() error {
	return it.rows.Close()
}
