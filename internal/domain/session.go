package domain

import "time"

// Message is one entry in a session timeline. Messages are append-only:
// a live session never reorders or edits them, only appends, and a resumed
// session replaces the whole list at once.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Sender    Sender
	Text      string
	CreatedAt Timestamp
}

// Session is the live, in-memory conversation state for one continuous chat
// interaction under one mode. The in-memory copy is authoritative while the
// session is active; the scratch store only mirrors it.
type Session struct {
	ID          SessionID
	UserID      UserID
	DisplayName string
	Mode        Mode
	CreatedAt   Timestamp
	UpdatedAt   Timestamp
	Messages    []*Message
}

// UserMessageCount returns how many user-authored messages the session holds.
// A session with zero user messages contains nothing worth persisting.
func (s *Session) UserMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Sender == SenderUser {
			n++
		}
	}
	return n
}

// LastTimestamp returns the creation time of the newest message, or the
// zero time for an empty timeline.
func (s *Session) LastTimestamp() time.Time {
	if len(s.Messages) == 0 {
		return time.Time{}
	}
	return s.Messages[len(s.Messages)-1].CreatedAt
}

// CopyMessages returns an independent copy of the timeline, safe to hand out
// or serialize while the session keeps mutating.
func (s *Session) CopyMessages() []*Message {
	out := make([]*Message, len(s.Messages))
	for i, m := range s.Messages {
		c := *m
		out[i] = &c
	}
	return out
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = s.CopyMessages()
	return &c
}
