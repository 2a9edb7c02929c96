// Package chat orchestrates conversational replies: it runs a course
// search, asks an LLM provider to phrase the answer with the matched
// courses as context, and falls back to locally generated markdown
// when no provider is available or all of them fail.
//
// Provider integration:
//   - Gemini: google.golang.org/genai (official SDK)
//   - Groq: github.com/openai/openai-go/v3 (OpenAI-compatible API)
package chat

import (
	"context"
	"time"
)

// Provider identifies an LLM provider.
type Provider string

const (
	// ProviderGemini is Google's Gemini API.
	ProviderGemini Provider = "gemini"
	// ProviderGroq is Groq's OpenAI-compatible API.
	ProviderGroq Provider = "groq"
	// ProviderLocal marks replies generated without any LLM.
	ProviderLocal Provider = "local"
)

// GroqBaseURL is the OpenAI-compatible endpoint for Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1/"

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Turn is one utterance in a conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request carries everything a Responder needs to produce a reply:
// the user's question, recent conversation turns (oldest first) and
// the matched courses serialized as JSON for grounding.
type Request struct {
	Question    string
	History     []Turn
	CoursesJSON string
}

// Responder produces a conversational reply from a request.
type Responder interface {
	// Complete returns the assistant reply text.
	Complete(ctx context.Context, req Request) (string, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Close releases any resources held by the responder.
	Close() error
}

// Generation parameters shared by all providers.
const (
	generationTemperature = 0.7
	generationTopP        = 0.95
	generationMaxTokens   = 2048
)

// RetryConfig defines retry behavior for LLM API calls.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int
	// InitialDelay is the base delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration
}

// Retry defaults: one retry with sub-second backoff keeps the chat
// endpoint responsive even when a provider is flapping.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  2,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     3 * time.Second,
}
