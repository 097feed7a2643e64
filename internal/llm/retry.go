package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryVerdict says what the retry loop may do with a failed attempt.
type retryVerdict int

const (
	verdictGiveUp retryVerdict = iota
	verdictRetry
	verdictRetryOnce
)

// retryProvider reissues failed paper-generation calls with exponential
// backoff. When AttemptTimeout is set, each attempt runs under its own
// deadline so one stuck vendor call cannot eat the whole request budget.
type retryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry decorates p with the retry policy in cfg.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{inner: p, cfg: cfg}
}

func (r *retryProvider) ModelID() string { return r.inner.ModelID() }

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	retriedInvalid := false

	for attempt := range r.cfg.MaxAttempts {
		resp, err := r.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// The caller's context dying overrides any verdict. An attempt
		// deadline alone does not trip this; the parent is still alive.
		if ctx.Err() != nil {
			return nil, err
		}

		switch classifyRetry(err) {
		case verdictGiveUp:
			return nil, err
		case verdictRetryOnce:
			if retriedInvalid {
				return nil, err
			}
			retriedInvalid = true
		}

		if attempt == r.cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.waitFor(attempt, err)):
		}
	}

	return nil, lastErr
}

// attempt runs one inner call under the per-attempt deadline.
func (r *retryProvider) attempt(ctx context.Context, req Request) (*Response, error) {
	if r.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.AttemptTimeout)
		defer cancel()
	}
	return r.inner.Generate(ctx, req)
}

// classifyRetry sorts provider errors into verdicts. Truncation is a
// token-budget problem that retrying cannot fix; a schema miss gets one
// more chance; everything else, including a timed-out attempt, is
// assumed transient.
func classifyRetry(err error) retryVerdict {
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return verdictGiveUp
	}
	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		return verdictRetryOnce
	}
	return verdictRetry
}

// waitFor is the pause before the next attempt: the vendor's own
// Retry-After when it sent one, otherwise exponential backoff with
// 20% jitter either way.
func (r *retryProvider) waitFor(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.cfg.MaxWait))
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(wait, 0))
}
