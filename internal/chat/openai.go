package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiResponder produces replies via Groq's OpenAI-compatible API.
type openaiResponder struct {
	client openai.Client
	model  string
}

// NewGroqResponder creates a Groq-backed responder. Returns (nil, nil)
// when apiKey is empty so callers can treat the provider as disabled.
func NewGroqResponder(apiKey, model string) (Responder, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // provider disabled without an API key
	}

	client := openai.NewClient(
		option.WithBaseURL(GroqBaseURL),
		option.WithAPIKey(apiKey),
	)
	return &openaiResponder{client: client, model: model}, nil
}

// Complete sends the conversation to Groq and returns the reply text.
func (r *openaiResponder) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, turn := range req.History {
		if turn.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userMessage(req)))

	params := openai.ChatCompletionNewParams{
		Model:       r.model,
		Messages:    messages,
		Temperature: openai.Float(generationTemperature),
		TopP:        openai.Float(generationTopP),
		MaxTokens:   openai.Int(generationMaxTokens),
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", WrapError(fmt.Errorf("chat completion: %w", err), ProviderGroq, 0)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", WrapError(errors.New("empty completion"), ProviderGroq, 0)
	}
	return resp.Choices[0].Message.Content, nil
}

func (r *openaiResponder) Provider() Provider {
	return ProviderGroq
}

func (r *openaiResponder) Close() error {
	return nil
}
