// Package session owns the live conversation state for the companion: an
// ordered, append-only message list per active session, mirrored to a remote
// scratch store on every completed exchange, promoted to permanent history on
// an explicit save, and deleted on discard. Mode switches with unsaved user
// content go through a confirmation workflow so nothing is silently lost.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
	"github.com/MahaveerPandey8290/health-app/internal/observability"
)

// Manager is the authority over active sessions. One session is active per
// user at a time; all mutation goes through the manager's lock, so appends
// from concurrent callers can never interleave into an out-of-order timeline.
// Remote calls (generation, stores) run outside the lock; generation results
// are re-validated against the originating session id before being applied.
type Manager struct {
	llm     domain.GenerationClient
	scratch domain.ScratchStore
	history domain.HistoryStore

	now   func() time.Time
	newID func() string

	mu        sync.Mutex
	byUser    map[domain.UserID]*state
	bySession map[domain.SessionID]*state
}

type state struct {
	session     *domain.Session
	phase       Phase
	pendingMode domain.Mode
	saved       bool // a history entry exists for this session id
	mirrored    bool // at least one scratch write has succeeded
}

func NewManager(
	llm domain.GenerationClient,
	scratch domain.ScratchStore,
	history domain.HistoryStore,
) *Manager {
	return &Manager{
		llm:       llm,
		scratch:   scratch,
		history:   history,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		byUser:    make(map[domain.UserID]*state),
		bySession: make(map[domain.SessionID]*state),
	}
}

type StartInput struct {
	UserID      domain.UserID
	DisplayName string
	Mode        domain.Mode
}

type StartOutput struct {
	Session *domain.Session
}

// Start opens a fresh session for the user in the given mode. The timeline
// begins with a single assistant greeting; nothing is written to the scratch
// store until the first user exchange, so empty sessions leave no remote
// residue. Any previous active session for the user is superseded in memory
// (its scratch mirror stays behind for Resume).
func (m *Manager) Start(ctx context.Context, in StartInput) (*StartOutput, error) {
	if !in.Mode.Valid() {
		return nil, &domain.InvalidModeError{Value: string(in.Mode)}
	}

	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
		"mode", in.Mode,
	)
	log.Info("starting session")

	session, err := m.openSession(ctx, in.UserID, in.DisplayName, in.Mode)
	if err != nil {
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)
	return &StartOutput{Session: session.Clone()}, nil
}

// openSession fetches a greeting, builds the session, and registers it as the
// user's active session. Shared by Start and the mode-switch rotation.
func (m *Manager) openSession(
	ctx context.Context,
	userID domain.UserID,
	displayName string,
	mode domain.Mode,
) (*domain.Session, error) {
	greeting, err := m.llm.Greet(ctx, displayName, mode)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("greeting generation failed, using fallback",
			"user_id", userID, "error", err)
		greeting = fallbackGreeting(displayName, mode)
	}

	now := m.now()
	session := &domain.Session{
		ID:          domain.SessionID(m.newID()),
		UserID:      userID,
		DisplayName: displayName,
		Mode:        mode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	session.Messages = append(session.Messages, &domain.Message{
		ID:        domain.MessageID(m.newID()),
		SessionID: session.ID,
		Sender:    domain.SenderAssistant,
		Text:      greeting,
		CreatedAt: now,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.byUser[userID]; ok {
		delete(m.bySession, prev.session.ID)
	}
	st := &state{session: session, phase: PhaseEmpty}
	m.byUser[userID] = st
	m.bySession[session.ID] = st
	return session, nil
}

type AppendInput struct {
	SessionID domain.SessionID
	Sender    domain.Sender
	Text      string
	// CreatedAt is optional; a zero or backwards value is clamped so the
	// stored timeline never goes back in time.
	CreatedAt time.Time
}

type AppendOutput struct {
	Message *domain.Message
	// MirrorWarning is non-nil when the scratch write failed. The local
	// conversation is intact; the next append retries implicitly.
	MirrorWarning error
}

// Append adds one message to the active session and mirrors the full updated
// timeline to the scratch store. A mirror failure never rolls back the local
// append: losing connectivity to the backup store does not break the
// conversation.
func (m *Manager) Append(ctx context.Context, in AppendInput) (*AppendOutput, error) {
	m.mu.Lock()
	st, ok := m.bySession[in.SessionID]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if !canMutate(st.phase) {
		m.mu.Unlock()
		return nil, domain.ErrSwitchPending
	}

	msg := &domain.Message{
		ID:        domain.MessageID(m.newID()),
		SessionID: st.session.ID,
		Sender:    in.Sender,
		Text:      in.Text,
		CreatedAt: clampTimestamp(in.CreatedAt, st.session.LastTimestamp(), m.now()),
	}
	st.session.Messages = append(st.session.Messages, msg)
	st.session.UpdatedAt = m.now()
	st.phase = phaseAfterAppend(st.phase, in.Sender)
	snap := m.snapshotLocked(st)
	m.mu.Unlock()

	out := &AppendOutput{Message: msg}
	out.MirrorWarning = m.mirror(ctx, snap)
	return out, nil
}

type SendInput struct {
	SessionID domain.SessionID
	Text      string
}

type SendOutput struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
	// MirrorWarning is non-nil when the post-exchange scratch write failed.
	MirrorWarning error
}

// Send appends the user's message, runs the generation call with the full
// transcript, and appends exactly one assistant reply.
//
// The user append is optimistic: if generation fails, it is rolled back so
// the input can be retried. If the session was switched away while the call
// was in flight, the late result is dropped (never appended to the successor
// session) and ErrSessionSuperseded is returned. The scratch mirror is only
// written after the exchange completes, so a rollback never has to un-write it.
func (m *Manager) Send(ctx context.Context, in SendInput) (*SendOutput, error) {
	m.mu.Lock()
	st, ok := m.bySession[in.SessionID]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if !canMutate(st.phase) {
		m.mu.Unlock()
		return nil, domain.ErrSwitchPending
	}

	sid := st.session.ID
	mode := st.session.Mode
	now := m.now()
	userMsg := &domain.Message{
		ID:        domain.MessageID(m.newID()),
		SessionID: sid,
		Sender:    domain.SenderUser,
		Text:      in.Text,
		CreatedAt: clampTimestamp(now, st.session.LastTimestamp(), now),
	}
	st.session.Messages = append(st.session.Messages, userMsg)
	st.session.UpdatedAt = now
	st.phase = phaseAfterAppend(st.phase, domain.SenderUser)
	transcript := st.session.CopyMessages()
	m.mu.Unlock()

	log := observability.LoggerFromContext(ctx).With("session_id", sid)

	replyText, genErr := m.llm.GenerateReply(ctx, transcript, mode)

	m.mu.Lock()
	cur, live := m.bySession[sid]
	if !live {
		// The session ended while the call was in flight. Whatever came
		// back belongs to a conversation that no longer exists.
		m.mu.Unlock()
		log.Info("dropping generation result for superseded session")
		return nil, domain.ErrSessionSuperseded
	}
	if genErr != nil {
		m.rollbackLocked(cur, userMsg.ID)
		m.mu.Unlock()
		log.Warn("generation failed, user message rolled back", "error", genErr)
		return nil, &domain.GenerationError{SessionID: sid, Err: genErr}
	}

	reply := &domain.Message{
		ID:        domain.MessageID(m.newID()),
		SessionID: sid,
		Sender:    domain.SenderAssistant,
		Text:      replyText,
		CreatedAt: clampTimestamp(m.now(), cur.session.LastTimestamp(), m.now()),
	}
	cur.session.Messages = append(cur.session.Messages, reply)
	cur.session.UpdatedAt = m.now()
	snap := m.snapshotLocked(cur)
	m.mu.Unlock()

	out := &SendOutput{UserMessage: userMsg, AssistantMessage: reply}
	out.MirrorWarning = m.mirror(ctx, snap)
	return out, nil
}

// rollbackLocked removes the optimistically appended user message if it is
// still the tail of the timeline.
func (m *Manager) rollbackLocked(st *state, msgID domain.MessageID) {
	msgs := st.session.Messages
	if n := len(msgs); n > 0 && msgs[n-1].ID == msgID {
		st.session.Messages = msgs[:n-1]
		if st.session.UserMessageCount() == 0 && st.phase == PhaseActive {
			st.phase = PhaseEmpty
		}
	}
}

type SaveOutput struct {
	// Saved is false when the session held no user-authored content and the
	// save was a no-op. Callers must not treat the no-op as an error.
	Saved bool
	Entry domain.HistoryEntryRef
}

// Save writes a frozen history entry for the session. It is purely additive:
// neither the in-memory timeline nor the scratch mirror changes, and the
// session stays active.
func (m *Manager) Save(ctx context.Context, sessionID domain.SessionID) (*SaveOutput, error) {
	m.mu.Lock()
	st, ok := m.bySession[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if st.session.UserMessageCount() == 0 {
		m.mu.Unlock()
		return &SaveOutput{Saved: false}, nil
	}
	entry := &domain.HistoryEntry{
		SessionID: st.session.ID,
		UserID:    st.session.UserID,
		Mode:      st.session.Mode,
		Title:     domain.DeriveTitle(st.session.Messages),
		Messages:  st.session.CopyMessages(),
		SavedAt:   m.now(),
	}
	m.mu.Unlock()

	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)

	if err := m.history.Append(ctx, entry); err != nil {
		log.Error("history save failed", "error", err)
		return nil, &domain.PersistenceError{SessionID: sessionID, Err: err}
	}

	m.mu.Lock()
	if cur, live := m.bySession[sessionID]; live {
		cur.saved = true
	}
	m.mu.Unlock()

	log.Info("session saved to history", "title", entry.Title)
	return &SaveOutput{Saved: true, Entry: entry.Ref()}, nil
}

// Discard ends the session: the in-memory state is cleared and the scratch
// mirror deleted. It is idempotent; discarding an unknown or already-discarded
// session succeeds. A failed remote delete is reported as *DiscardError but
// the local session is gone either way.
func (m *Manager) Discard(ctx context.Context, sessionID domain.SessionID) error {
	m.mu.Lock()
	st, ok := m.bySession[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	userID := st.session.UserID
	delete(m.bySession, sessionID)
	if cur, live := m.byUser[userID]; live && cur == st {
		delete(m.byUser, userID)
	}
	m.mu.Unlock()

	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)
	if err := m.scratch.Delete(ctx, userID, sessionID); err != nil {
		log.Warn("scratch delete failed, remote copy may linger", "error", err)
		return &domain.DiscardError{SessionID: sessionID, Err: err}
	}
	log.Info("session discarded")
	return nil
}

type SwitchInput struct {
	SessionID domain.SessionID
	NewMode   domain.Mode
}

type SwitchOutput struct {
	// RequiresConfirmation is true when the session holds unsaved user
	// content; no state changed and the caller must ResolveSwitch.
	RequiresConfirmation bool
	// Session is the resulting active session: unchanged for a no-op or a
	// pending confirmation, freshly rotated for an immediate switch.
	Session *domain.Session
	// DiscardWarning carries a non-fatal scratch-delete failure from an
	// immediate switch.
	DiscardWarning error
}

// SwitchMode requests a change of persona. Switching to the current mode is a
// no-op. A session without user content rotates immediately to a fresh
// session id under the new mode. A session with user content is parked in
// the confirmation phase untouched until the caller resolves the choice.
func (m *Manager) SwitchMode(ctx context.Context, in SwitchInput) (*SwitchOutput, error) {
	if !in.NewMode.Valid() {
		return nil, &domain.InvalidModeError{Value: string(in.NewMode)}
	}

	m.mu.Lock()
	st, ok := m.bySession[in.SessionID]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if st.phase == PhasePendingSwitch {
		m.mu.Unlock()
		return nil, domain.ErrSwitchPending
	}

	switch classifySwitch(st.session.Mode, in.NewMode, st.session.UserMessageCount()) {
	case switchSameMode:
		out := &SwitchOutput{Session: st.session.Clone()}
		m.mu.Unlock()
		return out, nil

	case switchConfirm:
		st.phase = PhasePendingSwitch
		st.pendingMode = in.NewMode
		out := &SwitchOutput{RequiresConfirmation: true, Session: st.session.Clone()}
		m.mu.Unlock()
		return out, nil
	}

	// Immediate rotation: nothing user-authored to lose.
	userID := st.session.UserID
	displayName := st.session.DisplayName
	m.mu.Unlock()

	discardErr := m.Discard(ctx, in.SessionID)
	next, err := m.openSession(ctx, userID, displayName, in.NewMode)
	if err != nil {
		return nil, err
	}
	return &SwitchOutput{Session: next.Clone(), DiscardWarning: discardErr}, nil
}

// Decision resolves a pending mode switch.
type Decision string

const (
	// DecisionSave archives the conversation, then switches. If the save
	// fails, nothing is discarded and the switch stays pending.
	DecisionSave Decision = "save"
	// DecisionDiscard abandons the conversation and switches.
	DecisionDiscard Decision = "discard"
	// DecisionCancel keeps the current session active in its current mode.
	DecisionCancel Decision = "cancel"
)

type ResolveInput struct {
	SessionID domain.SessionID
	Decision  Decision
}

type ResolveOutput struct {
	// Session is the active session after resolution: the old one for
	// cancel, a fresh one under the new mode otherwise.
	Session *domain.Session
	// Saved is true when a history entry was written on the way out.
	Saved bool
	// DiscardWarning carries a non-fatal scratch-delete failure.
	DiscardWarning error
}

// ResolveSwitch applies the caller's decision for a pending mode switch.
// Data the user asked to save is never discarded before the save confirms:
// a failed save leaves the session parked and the switch abortable.
func (m *Manager) ResolveSwitch(ctx context.Context, in ResolveInput) (*ResolveOutput, error) {
	m.mu.Lock()
	st, ok := m.bySession[in.SessionID]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if st.phase != PhasePendingSwitch {
		m.mu.Unlock()
		return nil, domain.ErrNoSwitchPending
	}
	newMode := st.pendingMode
	userID := st.session.UserID
	displayName := st.session.DisplayName

	if in.Decision == DecisionCancel {
		st.phase = PhaseActive
		st.pendingMode = ""
		out := &ResolveOutput{Session: st.session.Clone()}
		m.mu.Unlock()
		return out, nil
	}
	m.mu.Unlock()

	saved := false
	if in.Decision == DecisionSave {
		saveOut, err := m.Save(ctx, in.SessionID)
		if err != nil {
			// Still pending: the caller may retry, cancel, or choose to
			// discard without saving.
			return nil, err
		}
		saved = saveOut.Saved
	} else if in.Decision != DecisionDiscard {
		return nil, fmt.Errorf("unknown switch decision %q", in.Decision)
	}

	discardErr := m.Discard(ctx, in.SessionID)
	next, err := m.openSession(ctx, userID, displayName, newMode)
	if err != nil {
		return nil, err
	}
	return &ResolveOutput{Session: next.Clone(), Saved: saved, DiscardWarning: discardErr}, nil
}

type ResumeInput struct {
	UserID    domain.UserID
	SessionID domain.SessionID
}

type ResumeOutput struct {
	Session *domain.Session
}

// Resume rebuilds the active session from its scratch mirror, replacing the
// timeline wholesale, so a reconnecting client continues where it left off.
func (m *Manager) Resume(ctx context.Context, in ResumeInput) (*ResumeOutput, error) {
	snap, err := m.scratch.Get(ctx, in.UserID, in.SessionID)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:          snap.SessionID,
		UserID:      snap.UserID,
		DisplayName: snap.DisplayName,
		Mode:        snap.Mode,
		CreatedAt:   snap.UpdatedAt,
		UpdatedAt:   snap.UpdatedAt,
		Messages:    snap.Messages,
	}
	if len(session.Messages) > 0 {
		session.CreatedAt = session.Messages[0].CreatedAt
	}

	phase := PhaseEmpty
	if session.UserMessageCount() > 0 {
		phase = PhaseActive
	}

	m.mu.Lock()
	if prev, ok := m.byUser[session.UserID]; ok {
		delete(m.bySession, prev.session.ID)
	}
	st := &state{session: session, phase: phase, mirrored: true}
	m.byUser[session.UserID] = st
	m.bySession[session.ID] = st
	m.mu.Unlock()

	observability.LoggerFromContext(ctx).Info("session resumed",
		"session_id", session.ID, "message_count", len(session.Messages))
	return &ResumeOutput{Session: session.Clone()}, nil
}

// Get returns a copy of the active session.
func (m *Manager) Get(ctx context.Context, sessionID domain.SessionID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.bySession[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return st.session.Clone(), nil
}

// Phase reports the lifecycle phase of a session, with Saved flagged
// separately (saving does not end a session, only discard or switch does).
func (m *Manager) Phase(sessionID domain.SessionID) (Phase, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.bySession[sessionID]
	if !ok {
		return 0, false, domain.ErrSessionNotFound
	}
	return st.phase, st.saved, nil
}

// snapshotLocked captures a complete copy of the timeline for a mirror write.
func (m *Manager) snapshotLocked(st *state) *domain.ScratchSnapshot {
	return &domain.ScratchSnapshot{
		SessionID:   st.session.ID,
		UserID:      st.session.UserID,
		DisplayName: st.session.DisplayName,
		Mode:        st.session.Mode,
		Messages:    st.session.CopyMessages(),
		UpdatedAt:   st.session.UpdatedAt,
	}
}

// mirror writes a snapshot to the scratch store. Failures are advisory.
func (m *Manager) mirror(ctx context.Context, snap *domain.ScratchSnapshot) error {
	if err := m.scratch.Put(ctx, snap); err != nil {
		observability.LoggerFromContext(ctx).Warn("scratch mirror write failed",
			"session_id", snap.SessionID, "error", err)
		return &domain.MirrorWriteError{SessionID: snap.SessionID, Err: err}
	}
	m.mu.Lock()
	if st, ok := m.bySession[snap.SessionID]; ok {
		st.mirrored = true
	}
	m.mu.Unlock()
	return nil
}

// clampTimestamp keeps the timeline monotonically non-decreasing: a zero or
// backwards timestamp becomes "now", and never earlier than the last message.
func clampTimestamp(ts, last, now time.Time) time.Time {
	if ts.IsZero() || ts.Before(last) {
		ts = now
	}
	if ts.Before(last) {
		ts = last
	}
	return ts
}

func fallbackGreeting(displayName string, mode domain.Mode) string {
	name := displayName
	if name == "" {
		name = "there"
	}
	switch mode {
	case domain.ModeStudy:
		return fmt.Sprintf("Hello %s! Study mode engaged. I'm here to help you stay focused and motivated. What are you working on today?", name)
	default:
		return fmt.Sprintf("Hello %s! Welcome to your AI Wellness Companion. I'm here to support you. How are you feeling today?", name)
	}
}
