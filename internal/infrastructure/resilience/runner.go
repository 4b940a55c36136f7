package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

// Verdict tells the Runner what an error means for retries and the breaker.
type Verdict int

const (
	// Permanent failures are returned at once but still count against the breaker.
	Permanent Verdict = iota
	// Transient failures are retried and count against the breaker.
	Transient
	// Benign errors (cancellation, bad input) are returned without counting.
	Benign
)

type Classifier func(error) Verdict

// Observer receives retry and breaker events; metrics implement it.
type Observer interface {
	ObserveRetry(operation string)
	ObserveBreakerState(operation, state string)
}

type Runner struct {
	policy   Policy
	observer Observer

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewRunner(policy Policy, observer Observer) *Runner {
	return &Runner{
		policy:   policy.withDefaults(),
		observer: observer,
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Run executes fn under the retry policy and the operation's circuit breaker.
func (r *Runner) Run(ctx context.Context, operation string, fn func(context.Context) error, classify Classifier) error {
	if classify == nil {
		classify = func(error) Verdict { return Permanent }
	}
	if !r.policy.Breaker.Enabled {
		return r.retry(ctx, operation, fn, classify)
	}
	_, err := r.breaker(operation, classify).Execute(func() (struct{}, error) {
		return struct{}{}, r.retry(ctx, operation, fn, classify)
	})
	return err
}

// Call is Run for operations that produce a value.
func Call[T any](ctx context.Context, r *Runner, operation string, fn func(context.Context) (T, error), classify Classifier) (T, error) {
	var out T
	err := r.Run(ctx, operation, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}, classify)
	return out, err
}

func (r *Runner) retry(ctx context.Context, operation string, fn func(context.Context) error, classify Classifier) error {
	var err error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = r.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if classify(err) != Transient || attempt == r.policy.Attempts {
			return err
		}

		wait := r.policy.delay(attempt)
		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", r.policy.Attempts,
			"backoff_ms", wait.Milliseconds(),
			"error", err,
		)
		if r.observer != nil {
			r.observer.ObserveRetry(operation)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

func (r *Runner) attempt(ctx context.Context, fn func(context.Context) error) error {
	if r.policy.AttemptTimeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.AttemptTimeout)
	defer cancel()
	return fn(attemptCtx)
}

func (r *Runner) breaker(operation string, classify Classifier) *gobreaker.CircuitBreaker[struct{}] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[operation]; ok {
		return cb
	}
	bp := r.policy.Breaker
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        operation,
		MaxRequests: bp.HalfOpenCalls,
		Timeout:     bp.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bp.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bp.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || classify(err) == Benign
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
			if r.observer != nil {
				r.observer.ObserveBreakerState(name, to.String())
			}
		},
	})
	r.breakers[operation] = cb
	return cb
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// MarkTemporary tags transient failures and open circuits with domain.ErrTemporary so
// callers can tell "try later" apart from permanent failures.
func MarkTemporary(operation string, err error, classify Classifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if IsCircuitOpen(err) || (classify != nil && classify(err) == Transient) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
