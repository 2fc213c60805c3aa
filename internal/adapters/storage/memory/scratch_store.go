// Package memory provides in-memory store implementations for local mode and
// tests. Nothing here survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

type scratchKey struct {
	userID    domain.UserID
	sessionID domain.SessionID
}

type ScratchStore struct {
	mu    sync.RWMutex
	snaps map[scratchKey]*domain.ScratchSnapshot
}

func NewScratchStore() *ScratchStore {
	return &ScratchStore{
		snaps: make(map[scratchKey]*domain.ScratchSnapshot),
	}
}

func (s *ScratchStore) Put(ctx context.Context, snap *domain.ScratchSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snaps[scratchKey{snap.UserID, snap.SessionID}] = copySnapshot(snap)
	return nil
}

func (s *ScratchStore) Get(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (*domain.ScratchSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[scratchKey{userID, sessionID}]
	if !ok {
		return nil, domain.ErrScratchNotFound
	}
	return copySnapshot(snap), nil
}

func (s *ScratchStore) Delete(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snaps, scratchKey{userID, sessionID})
	return nil
}

// Len reports how many mirrors are held. Test helper.
func (s *ScratchStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snaps)
}

// copySnapshot isolates stored state from callers that keep mutating theirs.
func copySnapshot(snap *domain.ScratchSnapshot) *domain.ScratchSnapshot {
	c := *snap
	c.Messages = make([]*domain.Message, len(snap.Messages))
	for i, m := range snap.Messages {
		mc := *m
		c.Messages[i] = &mc
	}
	return &c
}
