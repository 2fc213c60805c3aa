// Package history reads the user's permanent archive of saved conversations.
package history

import (
	"context"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
	"github.com/MahaveerPandey8290/health-app/internal/observability"
)

const defaultLimit = 20

type Service struct {
	store domain.HistoryStore
}

func NewService(store domain.HistoryStore) *Service {
	return &Service{store: store}
}

// ListForUser returns the user's saved conversations, newest first.
// limit <= 0 uses a reasonable default.
func (s *Service) ListForUser(
	ctx context.Context,
	userID domain.UserID,
	limit int,
) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	entries, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("listing history failed",
			"user_id", userID, "error", err)
		return nil, err
	}
	return entries, nil
}
