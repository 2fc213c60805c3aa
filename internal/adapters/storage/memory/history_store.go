package memory

import (
	"context"
	"sync"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

type HistoryStore struct {
	mu       sync.RWMutex
	byUserID map[domain.UserID][]*domain.HistoryEntry
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		byUserID: make(map[domain.UserID][]*domain.HistoryEntry),
	}
}

func (s *HistoryStore) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byUserID[entry.UserID] = append(s.byUserID[entry.UserID], copyEntry(entry))
	return nil
}

// ListByUser returns the newest `limit` entries, newest first.
// limit <= 0 returns all.
func (s *HistoryStore) ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.byUserID[userID]
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	out := make([]*domain.HistoryEntry, 0, limit)
	for i := len(entries) - 1; i >= len(entries)-limit; i-- {
		out = append(out, copyEntry(entries[i]))
	}
	return out, nil
}

// copyEntry keeps stored entries frozen even if the caller mutates its copy.
func copyEntry(entry *domain.HistoryEntry) *domain.HistoryEntry {
	c := *entry
	c.Messages = make([]*domain.Message, len(entry.Messages))
	for i, m := range entry.Messages {
		mc := *m
		c.Messages[i] = &mc
	}
	return &c
}
