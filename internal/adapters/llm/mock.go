package llm

import (
	"context"
	"fmt"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

// MockClient is a deterministic domain.GenerationClient for local mode and
// tests. No network, no API key.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Greet(ctx context.Context, displayName string, mode domain.Mode) (string, error) {
	name := displayName
	if name == "" {
		name = "there"
	}
	if mode == domain.ModeStudy {
		return fmt.Sprintf("Hi %s! Study mode it is. What are you working on today?", name), nil
	}
	return fmt.Sprintf("Hi %s! Pour yourself a cup of tea. How are you feeling right now?", name), nil
}

func (m *MockClient) GenerateReply(ctx context.Context, history []*domain.Message, mode domain.Mode) (string, error) {
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == domain.SenderUser {
			last = history[i].Text
			break
		}
	}
	return fmt.Sprintf("I hear you. You said %q. Tell me a bit more about how that feels.", last), nil
}
