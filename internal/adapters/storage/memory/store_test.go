package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MahaveerPandey8290/health-app/internal/adapters/storage/memory"
	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

func TestScratchStoreIsolatesSnapshots(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScratchStore()

	msgs := []*domain.Message{
		{ID: "m1", SessionID: "s1", Sender: domain.SenderAssistant, Text: "hi", CreatedAt: time.Now()},
	}
	snap := &domain.ScratchSnapshot{
		SessionID: "s1", UserID: "u1", Mode: domain.ModeTea,
		Messages: msgs, UpdatedAt: time.Now(),
	}
	if err := store.Put(ctx, snap); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Mutating the caller's copy must not reach the stored snapshot.
	msgs[0].Text = "mutated"

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Messages[0].Text != "hi" {
		t.Fatal("stored snapshot aliases the caller's messages")
	}

	// And mutating the returned copy must not corrupt the store.
	got.Messages[0].Text = "also mutated"
	again, _ := store.Get(ctx, "u1", "s1")
	if again.Messages[0].Text != "hi" {
		t.Fatal("Get hands out the stored snapshot by reference")
	}
}

func TestScratchStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScratchStore()

	if err := store.Delete(ctx, "u1", "missing"); err != nil {
		t.Fatalf("deleting a missing entry should succeed: %v", err)
	}
	if _, err := store.Get(ctx, "u1", "missing"); !errors.Is(err, domain.ErrScratchNotFound) {
		t.Fatalf("expected ErrScratchNotFound, got %v", err)
	}
}

func TestHistoryStoreFreezesEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewHistoryStore()

	entry := &domain.HistoryEntry{
		SessionID: "s1", UserID: "u1", Mode: domain.ModeTea, Title: "frozen",
		Messages: []*domain.Message{
			{ID: "m1", SessionID: "s1", Sender: domain.SenderUser, Text: "original", CreatedAt: time.Now()},
		},
		SavedAt: time.Now(),
	}
	if err := store.Append(ctx, entry); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	entry.Messages[0].Text = "tampered"

	entries, err := store.ListByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Messages[0].Text != "original" {
		t.Fatal("history entry was not frozen at save time")
	}
}
