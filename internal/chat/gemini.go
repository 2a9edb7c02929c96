package chat

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// geminiResponder produces replies via Google's Gemini API.
type geminiResponder struct {
	client *genai.Client
	model  string
}

// NewGeminiResponder creates a Gemini-backed responder. Returns
// (nil, nil) when apiKey is empty so callers can treat the provider as
// disabled.
func NewGeminiResponder(ctx context.Context, apiKey, model string) (Responder, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // provider disabled without an API key
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &geminiResponder{client: client, model: model}, nil
}

// historyRole maps a conversation turn role to the typed genai role.
func historyRole(role string) genai.Role {
	if role == RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// Complete sends the conversation to Gemini and returns the reply text.
func (r *geminiResponder) Complete(ctx context.Context, req Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		contents = append(contents, genai.NewContentFromText(turn.Content, historyRole(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(userMessage(req), genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](generationTemperature),
		TopP:              genai.Ptr[float32](generationTopP),
		MaxOutputTokens:   generationMaxTokens,
	}

	result, err := r.client.Models.GenerateContent(ctx, r.model, contents, config)
	if err != nil {
		return "", WrapError(fmt.Errorf("generate content: %w", err), ProviderGemini, 0)
	}

	text := result.Text()
	if text == "" {
		return "", WrapError(errors.New("empty completion"), ProviderGemini, 0)
	}
	return text, nil
}

func (r *geminiResponder) Provider() Provider {
	return ProviderGemini
}

func (r *geminiResponder) Close() error {
	return nil
}
