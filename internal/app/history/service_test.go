package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MahaveerPandey8290/health-app/internal/adapters/storage/memory"
	"github.com/MahaveerPandey8290/health-app/internal/app/history"
	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewHistoryStore()
	svc := history.NewService(store)

	base := time.Now()
	for i := 0; i < 3; i++ {
		err := store.Append(ctx, &domain.HistoryEntry{
			SessionID: domain.SessionID(fmt.Sprintf("s%d", i)),
			UserID:    "u1",
			Mode:      domain.ModeTea,
			Title:     fmt.Sprintf("chat %d", i),
			SavedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := svc.ListForUser(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "chat 2" || entries[1].Title != "chat 1" {
		t.Fatalf("expected newest first, got %q then %q", entries[0].Title, entries[1].Title)
	}

	empty, err := svc.ListForUser(ctx, "nobody", 0)
	if err != nil {
		t.Fatalf("ListForUser failed for unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no entries, got %d", len(empty))
	}
}
