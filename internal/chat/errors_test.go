package chat

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil", nil, ActionFail},
		{"canceled", context.Canceled, ActionFail},
		{"deadline", context.DeadlineExceeded, ActionRetry},
		{"quota", errors.New("quota exceeded for today"), ActionFallback},
		{"billing", errors.New("billing hard limit reached"), ActionFallback},
		{"rate limit", errors.New("rate limit exceeded"), ActionRetry},
		{"http 429", errors.New("request failed: 429"), ActionRetry},
		{"server error", errors.New("503 service unavailable"), ActionRetry},
		{"connection", errors.New("connection refused"), ActionRetry},
		{"bad request", errors.New("400 bad request"), ActionFail},
		{"unauthorized", errors.New("invalid api key"), ActionFail},
		{"not found", errors.New("404 not found: model"), ActionFail},
		{"unknown", errors.New("something odd happened"), ActionRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyErrorStatusCode(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorAction
	}{
		{429, ActionRetry},
		{408, ActionRetry},
		{500, ActionRetry},
		{503, ActionRetry},
		{400, ActionFail},
		{401, ActionFail},
		{403, ActionFail},
		{404, ActionFail},
		{422, ActionFail},
	}

	for _, tt := range tests {
		err := WrapError(errors.New("provider error"), ProviderGemini, tt.status)
		if got := ClassifyError(err); got != tt.want {
			t.Errorf("ClassifyError(status %d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestLLMErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	wrapped := WrapError(base, ProviderGroq, 500)

	if !errors.Is(wrapped, base) {
		t.Error("WrapError() lost the underlying error")
	}

	var llmErr *LLMError
	if !errors.As(wrapped, &llmErr) {
		t.Fatal("WrapError() did not produce an *LLMError")
	}
	if llmErr.Provider != ProviderGroq || llmErr.StatusCode != 500 {
		t.Errorf("LLMError = %+v, want provider groq status 500", llmErr)
	}
}

func TestCalculateBackoff(t *testing.T) {
	initial := 500 * time.Millisecond
	maxDelay := 3 * time.Second

	if got := CalculateBackoff(0, initial, maxDelay); got != 0 {
		t.Errorf("CalculateBackoff(0) = %v, want 0", got)
	}

	// Full jitter: every sample must land in [0, min(max, initial*2^(n-1))).
	for attempt := 1; attempt <= 5; attempt++ {
		ceiling := initial << (attempt - 1)
		if ceiling > maxDelay {
			ceiling = maxDelay
		}
		for i := 0; i < 20; i++ {
			got := CalculateBackoff(attempt, initial, maxDelay)
			if got < 0 || got >= ceiling {
				t.Fatalf("CalculateBackoff(%d) = %v, want in [0, %v)", attempt, got, ceiling)
			}
		}
	}
}
