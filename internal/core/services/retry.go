package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// CallKind classifies the result of one transport call.
type CallKind int

const (
	// CallOK means the call succeeded.
	CallOK CallKind = iota

	// CallRetryable means the call failed in a way worth repeating.
	CallRetryable

	// CallFatal means the call failed and must not be repeated.
	CallFatal
)

func (k CallKind) String() string {
	switch k {
	case CallOK:
		return "ok"
	case CallRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// CallResult is the explicit result of a transport call.
type CallResult struct {
	Kind CallKind
	Err  error
}

// Ok is a successful call.
func Ok() CallResult { return CallResult{Kind: CallOK} }

// Retryable is a failed call that may be repeated.
func Retryable(err error) CallResult { return CallResult{Kind: CallRetryable, Err: err} }

// Fatal is a failed call that must not be repeated.
func Fatal(err error) CallResult { return CallResult{Kind: CallFatal, Err: err} }

// Classify maps an error returned by an extractor or loader call to a
// CallResult. ctx is the caller's context, not the per-call timeout context:
// a timeout while ctx is still live is a transport failure, while a cancelled
// ctx ends the run.
func Classify(ctx context.Context, err error) CallResult {
	switch {
	case err == nil:
		return Ok()
	case ctx.Err() != nil:
		return Fatal(fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err()))
	case errors.Is(err, domain.ErrAuth),
		errors.Is(err, domain.ErrConfig),
		errors.Is(err, domain.ErrUnsupportedOperation),
		errors.Is(err, domain.ErrValidation):
		return Fatal(err)
	case errors.Is(err, domain.ErrTransport):
		return Retryable(err)
	case errors.Is(err, context.DeadlineExceeded):
		return Retryable(domain.NewTransportError("call", 0, err))
	default:
		return Fatal(err)
	}
}

// RetryPolicy bounds how transport failures are repeated.
type RetryPolicy struct {
	// MaxRetries is the number of repeats after the first attempt.
	MaxRetries int

	// InitialBackoff is the wait before the first repeat. It doubles per repeat.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between repeats.
	MaxBackoff time.Duration

	wait func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns 3 retries starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     domain.DefaultMaxRetries,
		InitialBackoff: domain.DefaultInitialBackoff,
		MaxBackoff:     domain.DefaultMaxBackoff,
	}
}

// RetryPolicyFromConfig builds a policy from engine settings.
func RetryPolicyFromConfig(cfg domain.EngineConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff.Std(),
		MaxBackoff:     cfg.MaxBackoff.Std(),
	}
}

// Backoff returns the wait before retry n (1-based).
func (p RetryPolicy) Backoff(n int) time.Duration {
	if n < 1 || p.InitialBackoff <= 0 {
		return 0
	}
	d := p.InitialBackoff
	for i := 1; i < n; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.wait != nil {
		return p.wait(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry runs fn until it succeeds, fails fatally, or MaxRetries repeats
// have been spent. Exhaustion returns an error wrapping
// domain.ErrRetriesExhausted and the last cause.
func Retry(ctx context.Context, p RetryPolicy, op string, fn func(ctx context.Context) CallResult) error {
	attempts := p.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			backoff := p.Backoff(attempt - 1)
			if err := p.sleep(ctx, backoff); err != nil {
				return fmt.Errorf("%s: %w: %w", op, domain.ErrCancelled, err)
			}
		}

		res := fn(ctx)
		switch res.Kind {
		case CallOK:
			return nil
		case CallFatal:
			return res.Err
		}

		last = res.Err
		logger.Debug("%s failed (attempt %d/%d): %v", op, attempt, attempts, last)
	}

	return fmt.Errorf("%s: %w after %d attempts: %w", op, domain.ErrRetriesExhausted, attempts, last)
}
