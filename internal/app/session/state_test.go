package session

import (
	"testing"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

func TestPhaseAfterAppend(t *testing.T) {
	cases := []struct {
		name   string
		phase  Phase
		sender domain.Sender
		want   Phase
	}{
		{"greeting keeps empty", PhaseEmpty, domain.SenderAssistant, PhaseEmpty},
		{"user input activates", PhaseEmpty, domain.SenderUser, PhaseActive},
		{"active stays active", PhaseActive, domain.SenderUser, PhaseActive},
		{"assistant reply stays active", PhaseActive, domain.SenderAssistant, PhaseActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := phaseAfterAppend(tc.phase, tc.sender); got != tc.want {
				t.Errorf("phaseAfterAppend(%s, %s) = %s, want %s", tc.phase, tc.sender, got, tc.want)
			}
		})
	}
}

func TestClassifySwitch(t *testing.T) {
	cases := []struct {
		name     string
		from, to domain.Mode
		userMsgs int
		want     switchDisposition
	}{
		{"same mode", domain.ModeTea, domain.ModeTea, 5, switchSameMode},
		{"empty session", domain.ModeTea, domain.ModeStudy, 0, switchImmediate},
		{"content at stake", domain.ModeTea, domain.ModeStudy, 1, switchConfirm},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifySwitch(tc.from, tc.to, tc.userMsgs); got != tc.want {
				t.Errorf("classifySwitch = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanMutate(t *testing.T) {
	if canMutate(PhasePendingSwitch) {
		t.Error("pending switch must block mutation")
	}
	if !canMutate(PhaseEmpty) || !canMutate(PhaseActive) {
		t.Error("empty and active sessions must accept appends")
	}
}
