package assert

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/count"
	"github.com/abdul-hamid-achik/domspec/packages/poll"
	"github.com/abdul-hamid-achik/domspec/packages/query"
)

// DefaultWait is the process-wide wait budget used when neither the query
// nor the Asserter specifies one.
const DefaultWait = 2 * time.Second

// ExpectationNotMet is the one failure kind of the assertion layer: the
// document never reached the asserted state within the wait budget. Any
// other error escaping an assertion is a defect or environment fault and is
// never converted to a boolean.
type ExpectationNotMet struct {
	Msg string
}

func (e *ExpectationNotMet) Error() string {
	return e.Msg
}

// countingQuery is the common surface of selector and text queries: a wait
// budget plus count constraints.
type countingQuery interface {
	query.Query
	Count() count.Options
}

// Asserter evaluates assertions against a single scope. Assertions block
// until satisfied or until the wait budget runs out; boolean predicates
// wrap the same evaluation and only convert ExpectationNotMet to false.
type Asserter struct {
	scope query.Scope
	eval  *poll.Evaluator
	wait  time.Duration
}

// Option configures an Asserter.
type Option func(*Asserter)

// WithEvaluator substitutes the retry evaluator.
func WithEvaluator(e *poll.Evaluator) Option {
	return func(a *Asserter) {
		a.eval = e
	}
}

// WithDefaultWait overrides the process default wait budget for this
// Asserter. Queries with an explicit wait still take precedence.
func WithDefaultWait(d time.Duration) Option {
	return func(a *Asserter) {
		a.wait = d
	}
}

// New returns an Asserter bound to scope.
func New(scope query.Scope, opts ...Option) *Asserter {
	a := &Asserter{
		scope: scope,
		eval:  poll.NewEvaluator(),
		wait:  DefaultWait,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Asserter) waitFor(q query.Query) time.Duration {
	if d, ok := q.Wait(); ok {
		return d
	}
	return a.wait
}

// satisfied is the single count-success condition shared by the positive
// and negative paths: all count constraints hold, and either something was
// found or zero was the requested outcome.
func satisfied(opts count.Options, size int) bool {
	return opts.Matches(size) && (size > 0 || opts.ExpectsNone())
}

// assertCount runs one synchronized count assertion. Presence and absence
// are the same loop with the decision inverted and the opposite message
// attached on failure.
func (a *Asserter) assertCount(ctx context.Context, q countingQuery, negated bool) error {
	opts := q.Count()
	decide := func(r query.Result) bool {
		ok := satisfied(opts, r.Size())
		if negated {
			return !ok
		}
		return ok
	}

	res, ok, err := a.eval.Run(ctx, a.waitFor(q), a.scope, q, decide)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if negated {
		return &ExpectationNotMet{Msg: res.NegativeFailureMessage()}
	}
	return &ExpectationNotMet{Msg: res.FailureMessage()}
}

// AssertSelector asserts that the selector query is satisfied within the
// wait budget. Returns nil on success and *ExpectationNotMet when the
// document never reached the asserted state.
func (a *Asserter) AssertSelector(ctx context.Context, q *query.SelectorQuery) error {
	return a.assertCount(ctx, q, false)
}

// AssertNoSelector asserts the negation of AssertSelector: the state the
// query describes must not be observed.
func (a *Asserter) AssertNoSelector(ctx context.Context, q *query.SelectorQuery) error {
	return a.assertCount(ctx, q, true)
}

// AssertText asserts that the text query is satisfied within the wait
// budget.
func (a *Asserter) AssertText(ctx context.Context, q *query.TextQuery) error {
	return a.assertCount(ctx, q, false)
}

// AssertNoText asserts the negation of AssertText.
func (a *Asserter) AssertNoText(ctx context.Context, q *query.TextQuery) error {
	return a.assertCount(ctx, q, true)
}

// matchQuery is what a membership assertion needs from a query: resolution
// plus a description for failure messages.
type matchQuery interface {
	query.Query
	Describe() string
}

// assertMatch runs one synchronized membership assertion. The query is
// resolved against the node's container, not the node itself: the question
// is whether the node satisfies the selector when evaluated from its
// context, not what the selector finds under the node.
func (a *Asserter) assertMatch(ctx context.Context, node *query.Node, q matchQuery, negated bool) error {
	if node == nil {
		return fmt.Errorf("match assertion requires a node")
	}

	// A resolution without membership support violates the query contract;
	// that is a hard error, never an unmet expectation.
	malformed := false
	decide := func(r query.Result) bool {
		mr, ok := r.(query.MatchResult)
		if !ok {
			malformed = true
			return true // stop polling, surfaced below
		}
		if negated {
			return !mr.Contains(node)
		}
		return mr.Contains(node)
	}

	res, ok, err := a.eval.Run(ctx, a.waitFor(q), node.Container(), q, decide)
	if err != nil {
		return err
	}
	if malformed {
		return fmt.Errorf("%s resolved to %T, which cannot test membership", q.Describe(), res)
	}
	if ok {
		return nil
	}
	if negated {
		return &ExpectationNotMet{Msg: fmt.Sprintf("expected %s not to match %s", node.Describe(), q.Describe())}
	}
	return &ExpectationNotMet{Msg: fmt.Sprintf("expected %s to match %s", node.Describe(), q.Describe())}
}

// AssertMatchesSelector asserts that node is a member of the elements the
// selector resolves to from the node's container.
func (a *Asserter) AssertMatchesSelector(ctx context.Context, node *query.Node, q *query.SelectorQuery) error {
	return a.assertMatch(ctx, node, q, false)
}

// AssertNotMatchesSelector asserts the negation of AssertMatchesSelector.
func (a *Asserter) AssertNotMatchesSelector(ctx context.Context, node *query.Node, q *query.SelectorQuery) error {
	return a.assertMatch(ctx, node, q, true)
}
