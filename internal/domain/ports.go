package domain

import (
	"context"
	"time"
)

// GenerationClient defines how the core talks to the generative-AI service.
// GenerateReply receives the full transcript so far and returns the text of
// exactly one new assistant message.
type GenerationClient interface {
	Greet(ctx context.Context, displayName string, mode Mode) (string, error)
	GenerateReply(ctx context.Context, history []*Message, mode Mode) (string, error)
}

// ScratchSnapshot is the value mirrored to the scratch store: a complete copy
// of the active session's timeline at the moment of the write. Writes are
// full snapshots, so last-write-wins needs no merge logic.
type ScratchSnapshot struct {
	SessionID   SessionID
	UserID      UserID
	DisplayName string
	Mode        Mode
	Messages    []*Message
	UpdatedAt   time.Time
}

// ScratchStore mirrors the active session keyed by (user, session). It is a
// durable cache for recovery, not the system of record while the session is
// active.
type ScratchStore interface {
	Put(ctx context.Context, snap *ScratchSnapshot) error
	Get(ctx context.Context, userID UserID, sessionID SessionID) (*ScratchSnapshot, error)
	// Delete removes the mirror. Deleting a missing entry is a no-op.
	Delete(ctx context.Context, userID UserID, sessionID SessionID) error
}

// HistoryStore is the append-only permanent archive of saved conversations.
type HistoryStore interface {
	Append(ctx context.Context, entry *HistoryEntry) error
	ListByUser(ctx context.Context, userID UserID, limit int) ([]*HistoryEntry, error)
}
