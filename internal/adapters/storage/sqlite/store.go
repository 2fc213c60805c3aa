// Package sqlite backs the scratch and history stores with a local SQLite
// file, for single-host deployments that want durability without a cloud
// dependency.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at path and runs the
// schema migration.
func NewStore(path string) (*Store, error) {
	// WAL for concurrent readers, busy timeout for write contention.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scratch_sessions (
		user_id      TEXT NOT NULL,
		session_id   TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		mode         TEXT NOT NULL,
		messages     TEXT NOT NULL,
		updated_at   INTEGER NOT NULL,
		PRIMARY KEY (user_id, session_id)
	);

	CREATE TABLE IF NOT EXISTS history_entries (
		session_id TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		mode       TEXT NOT NULL,
		title      TEXT NOT NULL,
		messages   TEXT NOT NULL,
		saved_at   INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_user_saved
		ON history_entries (user_id, saved_at DESC);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// messageRow is the JSON shape of one message inside the messages column.
type messageRow struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func encodeMessages(msgs []*domain.Message) (string, error) {
	rows := make([]messageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, messageRow{
			ID:        string(m.ID),
			Sender:    string(m.Sender),
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encoding messages: %w", err)
	}
	return string(data), nil
}

func decodeMessages(sessionID domain.SessionID, data string) ([]*domain.Message, error) {
	var rows []messageRow
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	out := make([]*domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, &domain.Message{
			ID:        domain.MessageID(r.ID),
			SessionID: sessionID,
			Sender:    domain.Sender(r.Sender),
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// ScratchStore implementation
// ─────────────────────────────────────────

func (s *Store) Put(ctx context.Context, snap *domain.ScratchSnapshot) error {
	encoded, err := encodeMessages(snap.Messages)
	if err != nil {
		return err
	}

	query := `INSERT INTO scratch_sessions (user_id, session_id, display_name, mode, messages, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, session_id) DO UPDATE SET
			display_name = excluded.display_name,
			mode = excluded.mode,
			messages = excluded.messages,
			updated_at = excluded.updated_at`
	_, err = s.db.ExecContext(ctx, query,
		string(snap.UserID), string(snap.SessionID), snap.DisplayName,
		string(snap.Mode), encoded, snap.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert scratch session: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (*domain.ScratchSnapshot, error) {
	query := `SELECT display_name, mode, messages, updated_at
		FROM scratch_sessions WHERE user_id = ? AND session_id = ?`

	var (
		displayName string
		mode        string
		encoded     string
		updatedAt   int64
	)
	err := s.db.QueryRowContext(ctx, query, string(userID), string(sessionID)).
		Scan(&displayName, &mode, &encoded, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrScratchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scratch session: %w", err)
	}

	msgs, err := decodeMessages(sessionID, encoded)
	if err != nil {
		return nil, err
	}

	return &domain.ScratchSnapshot{
		SessionID:   sessionID,
		UserID:      userID,
		DisplayName: displayName,
		Mode:        domain.Mode(mode),
		Messages:    msgs,
		UpdatedAt:   time.Unix(0, updatedAt),
	}, nil
}

// Delete is idempotent: deleting a missing row succeeds.
func (s *Store) Delete(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) error {
	query := `DELETE FROM scratch_sessions WHERE user_id = ? AND session_id = ?`
	if _, err := s.db.ExecContext(ctx, query, string(userID), string(sessionID)); err != nil {
		return fmt.Errorf("failed to delete scratch session: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// HistoryStore implementation
// ─────────────────────────────────────────

func (s *Store) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	encoded, err := encodeMessages(entry.Messages)
	if err != nil {
		return err
	}

	query := `INSERT INTO history_entries (session_id, user_id, mode, title, messages, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		string(entry.SessionID), string(entry.UserID), string(entry.Mode),
		entry.Title, encoded, entry.SavedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.HistoryEntry, error) {
	query := `SELECT session_id, mode, title, messages, saved_at
		FROM history_entries WHERE user_id = ? ORDER BY saved_at DESC`
	args := []any{string(userID)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.HistoryEntry
	for rows.Next() {
		var (
			sessionID string
			mode      string
			title     string
			encoded   string
			savedAt   int64
		)
		if err := rows.Scan(&sessionID, &mode, &title, &encoded, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		msgs, err := decodeMessages(domain.SessionID(sessionID), encoded)
		if err != nil {
			return nil, err
		}

		out = append(out, &domain.HistoryEntry{
			SessionID: domain.SessionID(sessionID),
			UserID:    userID,
			Mode:      domain.Mode(mode),
			Title:     title,
			Messages:  msgs,
			SavedAt:   time.Unix(0, savedAt),
		})
	}
	return out, rows.Err()
}
