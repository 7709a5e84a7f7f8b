// Package fetch wraps outbound HTTP calls with bounded exponential backoff
// and shared concurrency limits for the source adapters.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"salvage_search/internal/config"
)

// StatusError reports a non-2xx upstream response. 4xx statuses are terminal:
// the client is wrong and retrying will not help.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Retryable reports whether err is worth another attempt. Server errors and
// transport failures are retryable; client errors and cancellation are not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return true
}

// Retrier executes requests with bounded exponential backoff.
type Retrier struct {
	client         *http.Client
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func NewRetrier(client *http.Client, cfg config.RetryConfig, logger *slog.Logger) *Retrier {
	return &Retrier{
		client:         client,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger,
	}
}

// Do issues the request built by build, retrying retryable failures up to the
// attempt ceiling. The factory runs once per attempt because a request body
// cannot be replayed. The caller owns the response body on success.
func (r *Retrier) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := r.attempt(ctx, build)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !Retryable(err) || attempt == r.maxAttempts {
			break
		}

		backoff := r.calculateBackoff(attempt)
		r.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("after %d attempts: %w", r.maxAttempts, lastErr)
}

func (r *Retrier) attempt(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
	}

	return resp, nil
}

func (r *Retrier) calculateBackoff(attempt int) time.Duration {
	backoff := r.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > r.maxBackoff {
		backoff = r.maxBackoff
	}
	return backoff
}
