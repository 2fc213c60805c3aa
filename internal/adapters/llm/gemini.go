package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

// GeminiClient implements domain.GenerationClient on Vertex AI (Gemini).
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(ctx context.Context, projectID, location, modelName string) (*GeminiClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("gemini client requires a GCP project and location")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Greet produces the assistant message that opens a fresh session.
func (g *GeminiClient) Greet(ctx context.Context, displayName string, mode domain.Mode) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(BuildGreetingPrompt(displayName, mode), genai.RoleUser),
	}
	return g.generate(ctx, contents, mode)
}

// GenerateReply implements domain.GenerationClient. The full transcript so
// far becomes the model's conversation history; exactly one reply comes back.
func (g *GeminiClient) GenerateReply(ctx context.Context, history []*domain.Message, mode domain.Mode) (string, error) {
	var contents []*genai.Content
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Sender == domain.SenderAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	return g.generate(ctx, contents, mode)
}

func (g *GeminiClient) generate(ctx context.Context, contents []*genai.Content, mode domain.Mode) (string, error) {
	temp := float32(0.9)
	topP := float32(1.0)
	outputTokens := int32(2048)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(BuildSystemPrompt(mode), genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
