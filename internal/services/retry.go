package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
)

// RetryPolicy bounds the transient-error retry loop shared by every
// provider call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// withRetry runs fn up to policy.MaxAttempts times. Only errors
// classified transient (rate limit, provider overload) are retried;
// everything else propagates after the first attempt. Backoff is
// exponential in the attempt index plus jitter, and the last error is
// returned unmodified once attempts are exhausted.
func withRetry[T any](ctx context.Context, log *logger.Logger, policy RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isTransient(err) || attempt == policy.MaxAttempts-1 {
			return zero, err
		}

		delay := policy.BaseDelay*(1<<attempt) + jitter(policy.BaseDelay)
		log.Warn("Provider request retrying",
			"op", op,
			"attempt", attempt+1,
			"max_attempts", policy.MaxAttempts,
			"delay", delay.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, lastErr
}

// jitter returns a random duration in [0, base/2) so concurrent callers
// do not retry in lockstep.
func jitter(base time.Duration) time.Duration {
	if base < 2 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base / 2)))
}

// isTransient reports whether an error signals rate limiting or
// temporary provider unavailability.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code == 503 {
			return true
		}
		switch apiErr.Status {
		case "RESOURCE_EXHAUSTED", "UNAVAILABLE":
			return true
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") {
		return true
	}
	if strings.Contains(msg, "503") || strings.Contains(msg, "UNAVAILABLE") {
		return true
	}
	return strings.Contains(strings.ToLower(msg), "overloaded")
}
