package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MahaveerPandey8290/health-app/internal/adapters/storage/sqlite"
	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "companion.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleMessages(sessionID domain.SessionID, n int) []*domain.Message {
	base := time.Now().Truncate(time.Millisecond)
	out := make([]*domain.Message, 0, n)
	for i := 0; i < n; i++ {
		sender := domain.SenderUser
		if i%2 == 0 {
			sender = domain.SenderAssistant
		}
		out = append(out, &domain.Message{
			ID:        domain.MessageID(string(rune('a' + i))),
			SessionID: sessionID,
			Sender:    sender,
			Text:      "message",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	return out
}

func TestScratchRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	snap := &domain.ScratchSnapshot{
		SessionID:   "s1",
		UserID:      "u1",
		DisplayName: "Maya",
		Mode:        domain.ModeTea,
		Messages:    sampleMessages("s1", 3),
		UpdatedAt:   time.Now(),
	}
	if err := store.Put(ctx, snap); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Mode != domain.ModeTea || got.DisplayName != "Maya" {
		t.Fatalf("metadata lost: %+v", got)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got.Messages))
	}
	for i, m := range got.Messages {
		if m.SessionID != "s1" || m.Text != snap.Messages[i].Text || m.Sender != snap.Messages[i].Sender {
			t.Errorf("message %d mismatch: %+v", i, m)
		}
	}
}

func TestScratchPutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := &domain.ScratchSnapshot{
		SessionID: "s1", UserID: "u1", Mode: domain.ModeTea,
		Messages: sampleMessages("s1", 1), UpdatedAt: time.Now(),
	}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	second := &domain.ScratchSnapshot{
		SessionID: "s1", UserID: "u1", Mode: domain.ModeTea,
		Messages: sampleMessages("s1", 4), UpdatedAt: time.Now(),
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Messages) != 4 {
		t.Fatalf("last write should win, got %d messages", len(got.Messages))
	}
}

func TestScratchDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	snap := &domain.ScratchSnapshot{
		SessionID: "s1", UserID: "u1", Mode: domain.ModeTea,
		Messages: sampleMessages("s1", 1), UpdatedAt: time.Now(),
	}
	if err := store.Put(ctx, snap); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, "u1", "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "u1", "s1"); err != nil {
		t.Fatalf("second Delete should succeed: %v", err)
	}
	if _, err := store.Get(ctx, "u1", "s1"); !errors.Is(err, domain.ErrScratchNotFound) {
		t.Fatalf("expected ErrScratchNotFound, got %v", err)
	}
}

func TestHistoryAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Now()
	for i, title := range []string{"first chat", "second chat", "third chat"} {
		entry := &domain.HistoryEntry{
			SessionID: domain.SessionID([]string{"s1", "s2", "s3"}[i]),
			UserID:    "u1",
			Mode:      domain.ModeTea,
			Title:     title,
			Messages:  sampleMessages("s", 2),
			SavedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Append(ctx, entry); err != nil {
			t.Fatalf("Append %q failed: %v", title, err)
		}
	}

	entries, err := store.ListByUser(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "third chat" || entries[1].Title != "second chat" {
		t.Fatalf("expected newest first, got %q then %q", entries[0].Title, entries[1].Title)
	}

	other, err := store.ListByUser(ctx, "someone-else", 0)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no entries for other user, got %d", len(other))
	}
}
