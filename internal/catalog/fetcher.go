package catalog

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"time"
)

// ErrCatalogUnavailable is returned when the catalog document cannot be
// fetched or parsed. No search can proceed without a loaded catalog, so
// callers must surface a retry/refresh instruction to the user.
var ErrCatalogUnavailable = errors.New("course catalog unavailable")

// maxCatalogBytes caps the catalog response body. The real document is a
// few hundred KB; anything past this is a misconfigured URL.
const maxCatalogBytes = 32 << 20

// Fetcher downloads the course catalog document over HTTP with retries.
type Fetcher struct {
	httpClient   *http.Client
	url          string
	maxRetries   int
	initialDelay time.Duration
}

// NewFetcher creates a catalog fetcher for the given URL.
func NewFetcher(url string, timeout time.Duration, maxRetries int, initialDelay time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		url:          url,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
	}
}

// Fetch downloads and decodes the catalog. Transient failures (network
// errors, 5xx, 429) are retried with exponential backoff; client errors
// are not. Any terminal failure is wrapped in ErrCatalogUnavailable.
func (f *Fetcher) Fetch(ctx context.Context) ([]CourseRecord, error) {
	var records []CourseRecord

	err := retryWithBackoff(ctx, f.maxRetries, f.initialDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
		if err != nil {
			return &permanentError{err: fmt.Errorf("create request: %w", err)}
		}
		req.Header.Set("Accept", "application/json")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			switch resp.StatusCode {
			case http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				return fmt.Errorf("server error for %s: status %d", f.url, resp.StatusCode)
			default:
				return &permanentError{err: fmt.Errorf("unexpected status for %s: %d", f.url, resp.StatusCode)}
			}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		var doc document
		if err := json.Unmarshal(body, &doc); err != nil {
			// Malformed JSON will not fix itself on retry.
			return &permanentError{err: fmt.Errorf("decode catalog: %w", err)}
		}

		records = doc.Records
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return records, nil
}

// permanentError marks failures that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// retryWithBackoff retries fn with exponential backoff and jitter.
// Stops immediately on a permanentError, returning the underlying error.
//
// Backoff formula: delay = initialDelay * 2^attempt ± 25% jitter.
func retryWithBackoff(ctx context.Context, maxRetries int, initialDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var permErr *permanentError
		if errors.As(err, &permErr) {
			return permErr.Unwrap()
		}

		if attempt == maxRetries {
			break
		}

		delay := time.Duration(float64(initialDelay) * math.Pow(2, float64(attempt)))

		// Add jitter (±25%)
		halfDelay := int64(delay) / 2
		if halfDelay == 0 {
			halfDelay = 1
		}
		jitterBig, err := rand.Int(rand.Reader, big.NewInt(halfDelay))
		if err != nil {
			jitterBig = big.NewInt(0)
		}
		delay = delay - delay/4 + time.Duration(jitterBig.Int64())

		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
