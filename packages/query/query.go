package query

import (
	"context"
	"fmt"
	"time"
)

// Scope is the node or document context an assertion is evaluated against.
// Root must reflect the current state of the underlying document on every
// call; the evaluator polls it and never caches a snapshot.
type Scope interface {
	Root(ctx context.Context) (*Node, error)
}

// Result is the outcome of one resolution: a count plus failure-message
// generators. Messages may be expensive to build and are only computed when
// an assertion actually fails.
type Result interface {
	Size() int
	FailureMessage() string
	NegativeFailureMessage() string
}

// MatchResult is produced by selector resolutions and additionally supports
// membership testing, used by match-assertions.
type MatchResult interface {
	Result
	Contains(n *Node) bool
}

// Query resolves a Scope to a Result. Implementations are immutable after
// construction and safe to resolve any number of times.
type Query interface {
	Resolve(ctx context.Context, scope Scope) (Result, error)
	// Wait returns the query's explicit wait budget, if one was set.
	Wait() (time.Duration, bool)
}

func pluralMatches(n int) string {
	if n == 1 {
		return "match"
	}
	return "matches"
}

// Elements is the result of a selector resolution: the matched nodes in
// document order, deduplicated.
type Elements struct {
	nodes       []*Node
	description string
	expectation string
}

func newElements(nodes []*Node, description, expectation string) *Elements {
	return &Elements{nodes: nodes, description: description, expectation: expectation}
}

// Size returns the number of matched elements.
func (e *Elements) Size() int {
	return len(e.nodes)
}

// Nodes returns the matched elements in document order.
func (e *Elements) Nodes() []*Node {
	return e.nodes
}

// Contains reports whether n is one of the matched elements.
func (e *Elements) Contains(n *Node) bool {
	for _, m := range e.nodes {
		if m.Equal(n) {
			return true
		}
	}
	return false
}

func (e *Elements) FailureMessage() string {
	return fmt.Sprintf("expected to find %s %s but found %d %s",
		e.description, e.expectation, len(e.nodes), pluralMatches(len(e.nodes)))
}

func (e *Elements) NegativeFailureMessage() string {
	return fmt.Sprintf("expected not to find %s %s but found %d %s",
		e.description, e.expectation, len(e.nodes), pluralMatches(len(e.nodes)))
}
