package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// titleMaxRunes bounds the derived title shown in the history list.
const titleMaxRunes = 60

// HistoryEntry is a frozen snapshot of a saved conversation. It is created
// only by an explicit save, never mutated afterwards, and lives in the user's
// permanent history collection.
type HistoryEntry struct {
	SessionID SessionID
	UserID    UserID
	Mode      Mode
	Title     string
	Messages  []*Message
	SavedAt   time.Time
}

// HistoryEntryRef identifies a saved entry without carrying its messages.
type HistoryEntryRef struct {
	SessionID SessionID
	Title     string
	SavedAt   time.Time
}

// Ref returns the lightweight reference for e.
func (e *HistoryEntry) Ref() HistoryEntryRef {
	return HistoryEntryRef{SessionID: e.SessionID, Title: e.Title, SavedAt: e.SavedAt}
}

// DeriveTitle builds a display title from a timeline: the first user-authored
// message, falling back to the first message of any sender, truncated.
func DeriveTitle(msgs []*Message) string {
	var text string
	for _, m := range msgs {
		if m.Sender == SenderUser {
			text = m.Text
			break
		}
	}
	if text == "" && len(msgs) > 0 {
		text = msgs[0].Text
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "Conversation"
	}
	if utf8.RuneCountInString(text) <= titleMaxRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:titleMaxRunes]), " ") + "…"
}
