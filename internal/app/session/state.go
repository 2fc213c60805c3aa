package session

import "github.com/MahaveerPandey8290/health-app/internal/domain"

// Phase is the lifecycle state of an active session. Transitions are pure
// functions of the current phase so they can be reasoned about (and tested)
// apart from any storage or transport concern.
//
//	Empty ──append user msg──▶ Active ──switch requested──▶ PendingSwitch
//	  ▲                          ▲  │                            │
//	  └──────── new session ─────┼──┘◀─────── cancel ────────────┘
type Phase int

const (
	// PhaseEmpty: session just started, greeting only, no user input yet.
	PhaseEmpty Phase = iota
	// PhaseActive: at least one user-authored message exists.
	PhaseActive
	// PhasePendingSwitch: a mode-switch confirmation is open; the session
	// rejects mutations until the caller resolves it.
	PhasePendingSwitch
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseActive:
		return "active"
	case PhasePendingSwitch:
		return "pending_switch"
	}
	return "unknown"
}

// phaseAfterAppend advances the phase once a message lands on the timeline.
// Only user input activates a session; assistant messages (the greeting,
// replies) leave the phase alone.
func phaseAfterAppend(p Phase, sender domain.Sender) Phase {
	if p == PhaseEmpty && sender == domain.SenderUser {
		return PhaseActive
	}
	return p
}

// canMutate reports whether the timeline accepts appends in phase p.
func canMutate(p Phase) bool {
	return p != PhasePendingSwitch
}

// switchDisposition classifies a requested mode switch: sameMode means no-op,
// immediate means the session has nothing to lose and rotates right away,
// confirm means user content is at stake and the caller must decide.
type switchDisposition int

const (
	switchSameMode switchDisposition = iota
	switchImmediate
	switchConfirm
)

func classifySwitch(current, requested domain.Mode, userMessages int) switchDisposition {
	if current == requested {
		return switchSameMode
	}
	if userMessages == 0 {
		return switchImmediate
	}
	return switchConfirm
}
