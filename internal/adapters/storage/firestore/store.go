// Package firestore backs the scratch and history stores with Cloud
// Firestore, mirroring the layout the web client reads: active sessions and
// saved history live in per-user subcollections.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore-backed store for the given GCP project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Document layout
// ─────────────────────────────────────────

func (s *Store) userDoc(userID domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(string(userID))
}

func (s *Store) scratchDoc(userID domain.UserID, sessionID domain.SessionID) *firestore.DocumentRef {
	return s.userDoc(userID).Collection("active_sessions").Doc(string(sessionID))
}

func (s *Store) historyCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("chat_history")
}

type messageDoc struct {
	ID        string    `firestore:"id"`
	Sender    string    `firestore:"sender"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

type scratchSessionDoc struct {
	UserID      string       `firestore:"user_id"`
	DisplayName string       `firestore:"display_name"`
	Mode        string       `firestore:"mode"`
	Messages    []messageDoc `firestore:"messages"`
	UpdatedAt   time.Time    `firestore:"updated_at"`
}

type historyEntryDoc struct {
	UserID   string       `firestore:"user_id"`
	Mode     string       `firestore:"mode"`
	Title    string       `firestore:"title"`
	Messages []messageDoc `firestore:"messages"`
	SavedAt  time.Time    `firestore:"saved_at"`
}

func toMessageDocs(msgs []*domain.Message) []messageDoc {
	out := make([]messageDoc, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageDoc{
			ID:        string(m.ID),
			Sender:    string(m.Sender),
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

func fromMessageDocs(sessionID domain.SessionID, docs []messageDoc) []*domain.Message {
	out := make([]*domain.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Message{
			ID:        domain.MessageID(d.ID),
			SessionID: sessionID,
			Sender:    domain.Sender(d.Sender),
			Text:      d.Text,
			CreatedAt: d.CreatedAt,
		})
	}
	return out
}

// ─────────────────────────────────────────
// ScratchStore implementation
// ─────────────────────────────────────────

// Put overwrites the whole mirror document. The snapshot is always the full
// timeline, so last-write-wins is correct.
func (s *Store) Put(ctx context.Context, snap *domain.ScratchSnapshot) error {
	doc := scratchSessionDoc{
		UserID:      string(snap.UserID),
		DisplayName: snap.DisplayName,
		Mode:        string(snap.Mode),
		Messages:    toMessageDocs(snap.Messages),
		UpdatedAt:   snap.UpdatedAt,
	}

	_, err := s.scratchDoc(snap.UserID, snap.SessionID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore scratch Put: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (*domain.ScratchSnapshot, error) {
	snap, err := s.scratchDoc(userID, sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrScratchNotFound
		}
		return nil, fmt.Errorf("firestore scratch Get: %w", err)
	}

	var doc scratchSessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore scratch Get decode: %w", err)
	}

	return &domain.ScratchSnapshot{
		SessionID:   sessionID,
		UserID:      userID,
		DisplayName: doc.DisplayName,
		Mode:        domain.Mode(doc.Mode),
		Messages:    fromMessageDocs(sessionID, doc.Messages),
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// Delete is idempotent: Firestore deletes of missing documents succeed.
func (s *Store) Delete(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) error {
	if _, err := s.scratchDoc(userID, sessionID).Delete(ctx); err != nil {
		return fmt.Errorf("firestore scratch Delete: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// HistoryStore implementation
// ─────────────────────────────────────────

func (s *Store) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	doc := historyEntryDoc{
		UserID:   string(entry.UserID),
		Mode:     string(entry.Mode),
		Title:    entry.Title,
		Messages: toMessageDocs(entry.Messages),
		SavedAt:  entry.SavedAt,
	}

	_, err := s.historyCol(entry.UserID).Doc(string(entry.SessionID)).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore history Append: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.HistoryEntry, error) {
	q := s.historyCol(userID).OrderBy("saved_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.HistoryEntry
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore history ListByUser: %w", err)
		}

		var doc historyEntryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode historyEntryDoc: %w", err)
		}

		sessionID := domain.SessionID(snap.Ref.ID)
		out = append(out, &domain.HistoryEntry{
			SessionID: sessionID,
			UserID:    userID,
			Mode:      domain.Mode(doc.Mode),
			Title:     doc.Title,
			Messages:  fromMessageDocs(sessionID, doc.Messages),
			SavedAt:   doc.SavedAt,
		})
	}
	return out, nil
}
