package poll

import (
	"context"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/query"
)

const (
	// DefaultInterval is the pause between resolution attempts.
	DefaultInterval = 50 * time.Millisecond
)

// Decision inspects one resolution and reports whether the assertion is
// satisfied.
type Decision func(query.Result) bool

// Observer is notified with the latency of every resolution attempt.
type Observer func(time.Duration)

// Evaluator repeatedly resolves a query against a scope until a decision
// succeeds or the wait budget expires. Resolutions are strictly sequential;
// every attempt re-resolves against the scope's current state.
type Evaluator struct {
	interval time.Duration
	observer Observer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithInterval sets the pause between attempts.
func WithInterval(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithObserver registers a per-resolution latency callback.
func WithObserver(fn Observer) Option {
	return func(e *Evaluator) {
		e.observer = fn
	}
}

// NewEvaluator returns an evaluator with the default retry interval.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{interval: DefaultInterval}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run resolves q against scope until decide reports success or wait elapses.
//
// The returned bool reports whether the decision was ever satisfied. On
// timeout the returned Result is the one from the final attempt, performed
// at or after the deadline, so the reported failure reflects the document's
// most current state. A wait of zero means exactly one attempt: no sleep,
// no retry.
func (e *Evaluator) Run(ctx context.Context, wait time.Duration, scope query.Scope, q query.Query, decide Decision) (query.Result, bool, error) {
	deadline := time.Now().Add(wait)

	for {
		res, err := e.resolve(ctx, scope, q)
		if err != nil {
			return nil, false, err
		}
		if decide(res) {
			return res, true, nil
		}
		if !time.Now().Before(deadline) {
			return res, false, nil
		}

		select {
		case <-ctx.Done():
			return res, false, ctx.Err()
		case <-time.After(e.interval):
		}
	}
}

func (e *Evaluator) resolve(ctx context.Context, scope query.Scope, q query.Query) (query.Result, error) {
	start := time.Now()
	res, err := q.Resolve(ctx, scope)
	if e.observer != nil {
		e.observer(time.Since(start))
	}
	return res, err
}
