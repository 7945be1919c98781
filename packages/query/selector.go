package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/count"
	"golang.org/x/net/html"
)

// Kind enumerates the supported locator kinds. Each kind carries its own
// matching rules; there is no name-driven dispatch beyond this set.
type Kind string

const (
	// KindCSS locates elements with a restricted structural selector.
	KindCSS Kind = "css"
	// KindLink locates anchors by id, title or visible text.
	KindLink Kind = "link"
	// KindField locates form fields by id, name, placeholder or label.
	KindField Kind = "field"
	// KindButton locates buttons by id, value or visible text.
	KindButton Kind = "button"
)

// SelectorQuery describes a structural element lookup. Immutable once
// constructed; construction validates the locator and all options.
type SelectorQuery struct {
	kind    Kind
	locator string
	opts    count.Options
	wait    *time.Duration
	text    string
	attrs   map[string]string
	checked *bool

	compiled [][]simpleSelector // css only: comma groups of descendant chains
}

// SelectorOption configures a SelectorQuery at construction.
type SelectorOption func(*SelectorQuery)

// WithCount attaches count constraints to the query.
func WithCount(o count.Options) SelectorOption {
	return func(q *SelectorQuery) {
		q.opts = o
	}
}

// WithWait sets an explicit wait budget, overriding the process default.
func WithWait(d time.Duration) SelectorOption {
	return func(q *SelectorQuery) {
		q.wait = &d
	}
}

// WithText keeps only elements whose text contains s.
func WithText(s string) SelectorOption {
	return func(q *SelectorQuery) {
		q.text = s
	}
}

// WithAttr keeps only elements carrying the given attribute value.
func WithAttr(name, value string) SelectorOption {
	return func(q *SelectorQuery) {
		if q.attrs == nil {
			q.attrs = make(map[string]string)
		}
		q.attrs[name] = value
	}
}

// Checked keeps only checked fields. Valid for the field kind.
func Checked() SelectorOption {
	return func(q *SelectorQuery) {
		v := true
		q.checked = &v
	}
}

// Unchecked keeps only unchecked fields. Valid for the field kind.
func Unchecked() SelectorOption {
	return func(q *SelectorQuery) {
		v := false
		q.checked = &v
	}
}

// NewSelector builds a selector query and validates locator and options.
// A malformed locator, a bad count constraint or an option that the kind
// does not support is an error here, not a failing assertion later.
func NewSelector(kind Kind, locator string, opts ...SelectorOption) (*SelectorQuery, error) {
	q := &SelectorQuery{kind: kind, locator: locator}
	for _, opt := range opts {
		opt(q)
	}

	if err := q.opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid count options: %w", err)
	}
	if q.wait != nil && *q.wait < 0 {
		return nil, fmt.Errorf("wait must be non-negative, got %v", *q.wait)
	}

	switch kind {
	case KindCSS:
		if q.checked != nil {
			return nil, fmt.Errorf("checked/unchecked is only supported for %q queries", KindField)
		}
		compiled, err := compileSelector(locator)
		if err != nil {
			return nil, err
		}
		q.compiled = compiled
	case KindLink, KindField, KindButton:
		if locator == "" {
			return nil, fmt.Errorf("%s locator must not be empty", kind)
		}
		if q.checked != nil && kind != KindField {
			return nil, fmt.Errorf("checked/unchecked is only supported for %q queries", KindField)
		}
	default:
		return nil, fmt.Errorf("unsupported locator kind %q", kind)
	}
	return q, nil
}

// Kind returns the query's locator kind.
func (q *SelectorQuery) Kind() Kind {
	return q.kind
}

// Locator returns the query's locator string.
func (q *SelectorQuery) Locator() string {
	return q.locator
}

// Count returns the query's count constraints.
func (q *SelectorQuery) Count() count.Options {
	return q.opts
}

// Wait returns the explicit wait budget, if set.
func (q *SelectorQuery) Wait() (time.Duration, bool) {
	if q.wait == nil {
		return 0, false
	}
	return *q.wait, true
}

// Describe renders the query for failure messages, e.g. `css "div.item"`.
func (q *SelectorQuery) Describe() string {
	desc := fmt.Sprintf("%s %q", q.kind, q.locator)
	if q.text != "" {
		desc += fmt.Sprintf(" with text %q", q.text)
	}
	if q.checked != nil {
		if *q.checked {
			desc += " that is checked"
		} else {
			desc += " that is not checked"
		}
	}
	return desc
}

// Resolve evaluates the query against the scope's current root and returns
// the matching elements. Safe to call repeatedly; every call re-inspects the
// live tree.
func (q *SelectorQuery) Resolve(ctx context.Context, scope Scope) (Result, error) {
	root, err := scope.Root(ctx)
	if err != nil {
		return nil, err
	}

	var nodes []*Node
	switch q.kind {
	case KindCSS:
		nodes = q.resolveCSS(root.Base())
	default:
		eachElement(root.Base(), func(n *html.Node) {
			if q.matchesKind(n) {
				nodes = append(nodes, NewNode(n))
			}
		})
	}
	nodes = q.filter(nodes)
	return newElements(nodes, q.Describe(), q.opts.Describe()), nil
}

func (q *SelectorQuery) filter(nodes []*Node) []*Node {
	if q.text == "" && len(q.attrs) == 0 && q.checked == nil {
		return nodes
	}
	var kept []*Node
	for _, n := range nodes {
		if q.text != "" && !strings.Contains(n.Text(), NormalizeText(q.text)) {
			continue
		}
		if !q.attrsMatch(n) {
			continue
		}
		if q.checked != nil {
			_, isChecked := n.Attr("checked")
			if isChecked != *q.checked {
				continue
			}
		}
		kept = append(kept, n)
	}
	return kept
}

func (q *SelectorQuery) attrsMatch(n *Node) bool {
	for name, want := range q.attrs {
		got, ok := n.Attr(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (q *SelectorQuery) resolveCSS(root *html.Node) []*Node {
	seen := make(map[*html.Node]bool)
	var nodes []*Node
	eachElement(root, func(n *html.Node) {
		if seen[n] {
			return
		}
		for _, chain := range q.compiled {
			if matchChain(n, chain, root) {
				seen[n] = true
				nodes = append(nodes, NewNode(n))
				break
			}
		}
	})
	return nodes
}

func (q *SelectorQuery) matchesKind(n *html.Node) bool {
	switch q.kind {
	case KindLink:
		return matchesLink(n, q.locator)
	case KindField:
		return matchesField(n, q.locator)
	case KindButton:
		return matchesButton(n, q.locator)
	}
	return false
}

func attrVal(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttrVal(n *html.Node, name, want string) bool {
	got, ok := attrVal(n, name)
	return ok && got == want
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb)
	return NormalizeText(sb.String())
}

func matchesLink(n *html.Node, locator string) bool {
	if n.Data != "a" && n.Data != "area" {
		return false
	}
	if _, ok := attrVal(n, "href"); !ok {
		return false
	}
	return hasAttrVal(n, "id", locator) ||
		hasAttrVal(n, "title", locator) ||
		nodeText(n) == NormalizeText(locator)
}

var nonFieldInputTypes = map[string]bool{
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
	"hidden": true,
}

func isField(n *html.Node) bool {
	switch n.Data {
	case "textarea", "select":
		return true
	case "input":
		typ, _ := attrVal(n, "type")
		return !nonFieldInputTypes[typ]
	}
	return false
}

func matchesField(n *html.Node, locator string) bool {
	if !isField(n) {
		return false
	}
	if hasAttrVal(n, "id", locator) ||
		hasAttrVal(n, "name", locator) ||
		hasAttrVal(n, "placeholder", locator) {
		return true
	}
	return labeledAs(n, locator)
}

// labeledAs matches a field through its label: either a label whose "for"
// attribute references the field's id, or an enclosing label element.
func labeledAs(n *html.Node, locator string) bool {
	want := NormalizeText(locator)
	if id, ok := attrVal(n, "id"); ok {
		root := n
		for root.Parent != nil {
			root = root.Parent
		}
		found := false
		eachElement(root, func(l *html.Node) {
			if found || l.Data != "label" {
				return
			}
			if hasAttrVal(l, "for", id) && nodeText(l) == want {
				found = true
			}
		})
		if found {
			return true
		}
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "label" {
			return nodeText(p) == want
		}
	}
	return false
}

func matchesButton(n *html.Node, locator string) bool {
	switch n.Data {
	case "button":
		return hasAttrVal(n, "id", locator) ||
			hasAttrVal(n, "value", locator) ||
			nodeText(n) == NormalizeText(locator)
	case "input":
		typ, _ := attrVal(n, "type")
		switch typ {
		case "submit", "button", "reset", "image":
			return hasAttrVal(n, "id", locator) || hasAttrVal(n, "value", locator)
		}
	}
	return false
}
