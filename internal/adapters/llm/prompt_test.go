package llm

import (
	"strings"
	"testing"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

func TestBuildSystemPromptSelectsModeInstructions(t *testing.T) {
	tea := BuildSystemPrompt(domain.ModeTea)
	if !strings.Contains(tea, "Mode: tea") {
		t.Errorf("tea prompt missing tea instructions:\n%s", tea)
	}
	if strings.Contains(tea, "Mode: study") {
		t.Error("tea prompt contains study instructions")
	}

	study := BuildSystemPrompt(domain.ModeStudy)
	if !strings.Contains(study, "Mode: study") {
		t.Errorf("study prompt missing study instructions:\n%s", study)
	}

	for _, p := range []string{tea, study} {
		if !strings.Contains(p, "AI Wellness Companion") {
			t.Error("prompt missing base persona")
		}
	}
}

func TestBuildGreetingPrompt(t *testing.T) {
	p := BuildGreetingPrompt("Ana", domain.ModeStudy)
	if !strings.Contains(p, "Ana") {
		t.Errorf("greeting prompt does not mention the user: %s", p)
	}
	if !strings.Contains(p, string(domain.ModeStudy)) {
		t.Errorf("greeting prompt does not mention the mode: %s", p)
	}

	anon := BuildGreetingPrompt("", domain.ModeTea)
	if !strings.Contains(anon, "the user") {
		t.Errorf("empty display name not handled: %s", anon)
	}
}
