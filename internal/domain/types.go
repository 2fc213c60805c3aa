package domain

import "time"

type SessionID string
type UserID string
type MessageID string

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Mode selects the companion's persona and the presentation theme.
type Mode string

const (
	ModeTea   Mode = "tea"   // relaxed, mindful conversation
	ModeStudy Mode = "study" // focused, motivational conversation
)

// Valid reports whether m is one of the recognized modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeTea, ModeStudy:
		return true
	}
	return false
}

// ParseMode normalizes a caller-supplied mode string.
// Unrecognized values are rejected with *InvalidModeError.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", &InvalidModeError{Value: s}
	}
	return m, nil
}

type Timestamp = time.Time
