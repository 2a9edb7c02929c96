package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sejong-careerpath/coursebot-go/internal/logger"
	"github.com/sejong-careerpath/coursebot-go/internal/metrics"
)

// FallbackResponder chains a primary and a fallback provider with
// per-provider retry:
//  1. primary with exponential-backoff retry
//  2. fallback provider when the primary keeps failing
//
// When both fail the caller degrades to locally generated markdown.
type FallbackResponder struct {
	primary  Responder
	fallback Responder
	retry    RetryConfig
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewFallbackResponder wires the provider chain. fallback may be nil,
// in which case only retry logic applies.
func NewFallbackResponder(primary, fallback Responder, retry RetryConfig, log *logger.Logger, m *metrics.Metrics) *FallbackResponder {
	return &FallbackResponder{
		primary:  primary,
		fallback: fallback,
		retry:    retry,
		log:      log.WithModule("chat.fallback"),
		metrics:  m,
	}
}

// Complete tries the primary provider first, then the fallback.
func (f *FallbackResponder) Complete(ctx context.Context, req Request) (string, error) {
	if f.primary == nil {
		return "", errors.New("no responder configured")
	}

	text, err := f.completeWithRetry(ctx, f.primary, req)
	if err == nil {
		return text, nil
	}

	action := ClassifyError(err)
	f.log.WithError(err).WithFields(map[string]any{
		"provider": f.primary.Provider().String(),
		"action":   action.String(),
	}).Warn("primary responder failed")

	if f.fallback == nil || action == ActionFail {
		return "", err
	}

	f.metrics.RecordLLMFallback(f.primary.Provider().String(), f.fallback.Provider().String())
	text, err = f.completeWithRetry(ctx, f.fallback, req)
	if err != nil {
		f.log.WithError(err).WithField("provider", f.fallback.Provider().String()).
			Error("all responders failed")
		return "", fmt.Errorf("all providers failed: %w", err)
	}
	return text, nil
}

func (f *FallbackResponder) completeWithRetry(ctx context.Context, responder Responder, req Request) (string, error) {
	provider := responder.Provider().String()
	var lastErr error

	for attempt := 0; attempt < f.retry.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		start := time.Now()
		text, err := responder.Complete(ctx, req)
		elapsed := time.Since(start).Seconds()
		if err == nil {
			f.metrics.RecordLLMRequest(provider, "success", elapsed)
			return text, nil
		}
		f.metrics.RecordLLMRequest(provider, statusLabel(err), elapsed)
		lastErr = err

		if ClassifyError(err) != ActionRetry {
			return "", err
		}
		if attempt == f.retry.MaxAttempts-1 {
			break
		}

		backoff := CalculateBackoff(attempt+1, f.retry.InitialDelay, f.retry.MaxDelay)
		f.log.WithError(err).WithFields(map[string]any{
			"provider": provider,
			"attempt":  attempt + 1,
			"backoff":  backoff.String(),
		}).Debug("retrying completion")
		if err := sleep(ctx, backoff); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// Provider returns the primary provider type.
func (f *FallbackResponder) Provider() Provider {
	if f.primary == nil {
		return ProviderLocal
	}
	return f.primary.Provider()
}

// Close closes both providers.
func (f *FallbackResponder) Close() error {
	var errs []error
	if f.primary != nil {
		errs = append(errs, f.primary.Close())
	}
	if f.fallback != nil {
		errs = append(errs, f.fallback.Close())
	}
	return errors.Join(errs...)
}

// statusLabel maps an error to the metric status label.
func statusLabel(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if containsAny(strings.ToLower(err.Error()), "429", "rate limit", "too many requests") {
		return "rate_limit"
	}
	return "error"
}
