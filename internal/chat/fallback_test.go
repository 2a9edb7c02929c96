package chat

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sejong-careerpath/coursebot-go/internal/logger"
	"github.com/sejong-careerpath/coursebot-go/internal/metrics"
)

type mockResponder struct {
	provider Provider
	replies  []string
	errs     []error
	calls    int
}

func (m *mockResponder) Complete(ctx context.Context, req Request) (string, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func (m *mockResponder) Provider() Provider { return m.provider }
func (m *mockResponder) Close() error       { return nil }

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func newFallback(primary, fallback Responder) *FallbackResponder {
	log := logger.NewWithWriter("error", io.Discard)
	return NewFallbackResponder(primary, fallback, fastRetry(), log, metrics.New(prometheus.NewRegistry()))
}

func TestFallbackPrimarySucceeds(t *testing.T) {
	primary := &mockResponder{provider: ProviderGemini, replies: []string{"안녕하세요"}}
	fallback := &mockResponder{provider: ProviderGroq}
	f := newFallback(primary, fallback)

	text, err := f.Complete(context.Background(), Request{Question: "hi"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "안녕하세요" {
		t.Errorf("Complete() = %q, want 안녕하세요", text)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestFallbackRetriesTransientError(t *testing.T) {
	primary := &mockResponder{
		provider: ProviderGemini,
		errs:     []error{errors.New("503 service unavailable"), nil},
		replies:  []string{"", "회복된 응답"},
	}
	f := newFallback(primary, nil)

	text, err := f.Complete(context.Background(), Request{Question: "hi"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "회복된 응답" {
		t.Errorf("Complete() = %q, want 회복된 응답", text)
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2", primary.calls)
	}
}

func TestFallbackSwitchesProvider(t *testing.T) {
	primary := &mockResponder{
		provider: ProviderGemini,
		errs:     []error{errors.New("quota exceeded"), errors.New("quota exceeded")},
	}
	fallback := &mockResponder{provider: ProviderGroq, replies: []string{"대체 응답"}}
	f := newFallback(primary, fallback)

	text, err := f.Complete(context.Background(), Request{Question: "hi"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "대체 응답" {
		t.Errorf("Complete() = %q, want 대체 응답", text)
	}
	// Quota errors skip the retry loop and fall straight back.
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls)
	}
}

func TestFallbackPermanentErrorDoesNotFallback(t *testing.T) {
	primary := &mockResponder{
		provider: ProviderGemini,
		errs:     []error{errors.New("invalid api key")},
	}
	fallback := &mockResponder{provider: ProviderGroq, replies: []string{"unused"}}
	f := newFallback(primary, fallback)

	if _, err := f.Complete(context.Background(), Request{Question: "hi"}); err == nil {
		t.Fatal("Complete() error = nil, want permanent error")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times after permanent error, want 0", fallback.calls)
	}
}

func TestFallbackAllProvidersFail(t *testing.T) {
	primary := &mockResponder{
		provider: ProviderGemini,
		errs:     []error{errors.New("503"), errors.New("503")},
	}
	fallback := &mockResponder{
		provider: ProviderGroq,
		errs:     []error{errors.New("503"), errors.New("503")},
	}
	f := newFallback(primary, fallback)

	if _, err := f.Complete(context.Background(), Request{Question: "hi"}); err == nil {
		t.Fatal("Complete() error = nil, want error when all providers fail")
	}
	if primary.calls != 2 || fallback.calls != 2 {
		t.Errorf("calls = (%d, %d), want both providers exhausted at 2", primary.calls, fallback.calls)
	}
}

func TestFallbackNoPrimary(t *testing.T) {
	f := newFallback(nil, nil)
	if _, err := f.Complete(context.Background(), Request{Question: "hi"}); err == nil {
		t.Fatal("Complete() error = nil, want error without providers")
	}
}
