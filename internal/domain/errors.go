package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound means no active session matches the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrScratchNotFound means the scratch store holds no mirror for the key.
	ErrScratchNotFound = errors.New("scratch session not found")

	// ErrSessionSuperseded means a generation result arrived after its
	// originating session had already been replaced; the result was dropped.
	ErrSessionSuperseded = errors.New("session superseded, reply discarded")

	// ErrSwitchPending means the session is waiting on a mode-switch
	// confirmation and rejects mutations until the caller resolves it.
	ErrSwitchPending = errors.New("mode switch confirmation pending")

	// ErrNoSwitchPending means a switch resolution was issued without a
	// pending switch to resolve.
	ErrNoSwitchPending = errors.New("no mode switch pending")
)

// InvalidModeError reports an unrecognized mode value.
type InvalidModeError struct {
	Value string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q", e.Value)
}

// GenerationError reports a failed or timed-out generation call. The user
// message that triggered it has been rolled back so the input can be retried.
type GenerationError struct {
	SessionID SessionID
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for session %s: %v", e.SessionID, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// MirrorWriteError reports a failed scratch-store write. It is advisory: the
// in-memory conversation is unaffected and the next append retries implicitly.
type MirrorWriteError struct {
	SessionID SessionID
	Err       error
}

func (e *MirrorWriteError) Error() string {
	return fmt.Sprintf("scratch mirror write failed for session %s: %v", e.SessionID, e.Err)
}

func (e *MirrorWriteError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed save to the permanent history store.
// Local and scratch state are unaffected.
type PersistenceError struct {
	SessionID SessionID
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("saving session %s to history failed: %v", e.SessionID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DiscardError reports a failed scratch-store delete. The in-memory session
// is cleared regardless; the remote artifact may linger until reconciled.
type DiscardError struct {
	SessionID SessionID
	Err       error
}

func (e *DiscardError) Error() string {
	return fmt.Sprintf("discarding scratch copy of session %s failed: %v", e.SessionID, e.Err)
}

func (e *DiscardError) Unwrap() error {
	return e.Err
}
