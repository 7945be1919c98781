package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/domspec/packages/count"
)

// TextQuery counts occurrences of a literal string or pattern in the
// whitespace-normalized text of a scope.
type TextQuery struct {
	literal string
	pattern *regexp.Regexp
	opts    count.Options
	wait    *time.Duration
}

// TextOption configures a TextQuery at construction.
type TextOption func(*TextQuery)

// WithTextCount attaches count constraints to the query.
func WithTextCount(o count.Options) TextOption {
	return func(q *TextQuery) {
		q.opts = o
	}
}

// WithTextWait sets an explicit wait budget, overriding the process default.
func WithTextWait(d time.Duration) TextOption {
	return func(q *TextQuery) {
		q.wait = &d
	}
}

// NewText builds a query counting occurrences of the literal string s.
func NewText(s string, opts ...TextOption) (*TextQuery, error) {
	if NormalizeText(s) == "" {
		return nil, fmt.Errorf("text locator must not be empty")
	}
	q := &TextQuery{literal: NormalizeText(s)}
	return q.finish(opts)
}

// NewTextPattern builds a query counting matches of a regular expression.
// The pattern is compiled here so a malformed expression is a construction
// error.
func NewTextPattern(pattern string, opts ...TextOption) (*TextQuery, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid text pattern: %w", err)
	}
	q := &TextQuery{pattern: re}
	return q.finish(opts)
}

func (q *TextQuery) finish(opts []TextOption) (*TextQuery, error) {
	for _, opt := range opts {
		opt(q)
	}
	if err := q.opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid count options: %w", err)
	}
	if q.wait != nil && *q.wait < 0 {
		return nil, fmt.Errorf("wait must be non-negative, got %v", *q.wait)
	}
	return q, nil
}

// Count returns the query's count constraints.
func (q *TextQuery) Count() count.Options {
	return q.opts
}

// Wait returns the explicit wait budget, if set.
func (q *TextQuery) Wait() (time.Duration, bool) {
	if q.wait == nil {
		return 0, false
	}
	return *q.wait, true
}

// Describe renders the query for failure messages.
func (q *TextQuery) Describe() string {
	if q.pattern != nil {
		return fmt.Sprintf("text matching /%s/", q.pattern.String())
	}
	return fmt.Sprintf("text %q", q.literal)
}

// Resolve counts occurrences in the scope's current text.
func (q *TextQuery) Resolve(ctx context.Context, scope Scope) (Result, error) {
	root, err := scope.Root(ctx)
	if err != nil {
		return nil, err
	}
	text := root.Text()

	var occurrences int
	if q.pattern != nil {
		occurrences = len(q.pattern.FindAllStringIndex(text, -1))
	} else {
		occurrences = strings.Count(text, q.literal)
	}
	return &textResult{
		occurrences: occurrences,
		description: q.Describe(),
		expectation: q.opts.Describe(),
		actual:      text,
	}, nil
}

type textResult struct {
	occurrences int
	description string
	expectation string
	actual      string
}

func (r *textResult) Size() int {
	return r.occurrences
}

func (r *textResult) FailureMessage() string {
	return fmt.Sprintf("expected to find %s %s but found %d %s in %q",
		r.description, r.expectation, r.occurrences, pluralMatches(r.occurrences), excerpt(r.actual))
}

func (r *textResult) NegativeFailureMessage() string {
	return fmt.Sprintf("expected not to find %s %s but found %d %s in %q",
		r.description, r.expectation, r.occurrences, pluralMatches(r.occurrences), excerpt(r.actual))
}

const excerptLen = 120

func excerpt(s string) string {
	if len(s) <= excerptLen {
		return s
	}
	// Back up to a rune boundary so the cut never splits a character.
	cut := excerptLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
