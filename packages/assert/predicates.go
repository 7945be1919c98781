package assert

import (
	"context"
	"errors"

	"github.com/abdul-hamid-achik/domspec/packages/query"
)

// asBool is the single place assertion failures become booleans. It
// swallows exactly *ExpectationNotMet; anything else is a defect and
// propagates unchanged.
func asBool(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var enm *ExpectationNotMet
	if errors.As(err, &enm) {
		return false, nil
	}
	return false, err
}

// HasSelector reports whether AssertSelector would succeed.
func (a *Asserter) HasSelector(ctx context.Context, q *query.SelectorQuery) (bool, error) {
	return asBool(a.AssertSelector(ctx, q))
}

// HasNoSelector reports whether AssertNoSelector would succeed.
func (a *Asserter) HasNoSelector(ctx context.Context, q *query.SelectorQuery) (bool, error) {
	return asBool(a.AssertNoSelector(ctx, q))
}

// HasText reports whether AssertText would succeed.
func (a *Asserter) HasText(ctx context.Context, q *query.TextQuery) (bool, error) {
	return asBool(a.AssertText(ctx, q))
}

// HasNoText reports whether AssertNoText would succeed.
func (a *Asserter) HasNoText(ctx context.Context, q *query.TextQuery) (bool, error) {
	return asBool(a.AssertNoText(ctx, q))
}

// MatchesSelector reports whether AssertMatchesSelector would succeed.
func (a *Asserter) MatchesSelector(ctx context.Context, node *query.Node, q *query.SelectorQuery) (bool, error) {
	return asBool(a.AssertMatchesSelector(ctx, node, q))
}

// NotMatchesSelector reports whether AssertNotMatchesSelector would succeed.
func (a *Asserter) NotMatchesSelector(ctx context.Context, node *query.Node, q *query.SelectorQuery) (bool, error) {
	return asBool(a.AssertNotMatchesSelector(ctx, node, q))
}

// The derived checks below are fixed locator kinds plus a fixed options
// overlay routed through the selector path. None of them introduces new
// matching or retry logic.

func (a *Asserter) hasKind(ctx context.Context, kind query.Kind, locator string, negated bool, opts ...query.SelectorOption) (bool, error) {
	q, err := query.NewSelector(kind, locator, opts...)
	if err != nil {
		return false, err
	}
	if negated {
		return a.HasNoSelector(ctx, q)
	}
	return a.HasSelector(ctx, q)
}

// HasCSS reports whether the css locator is present.
func (a *Asserter) HasCSS(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindCSS, locator, false, opts...)
}

// HasNoCSS reports whether the css locator is absent.
func (a *Asserter) HasNoCSS(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindCSS, locator, true, opts...)
}

// HasLink reports whether a link with the given id, title or text is
// present.
func (a *Asserter) HasLink(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindLink, locator, false, opts...)
}

// HasNoLink reports whether no such link is present.
func (a *Asserter) HasNoLink(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindLink, locator, true, opts...)
}

// HasField reports whether a form field with the given id, name,
// placeholder or label is present.
func (a *Asserter) HasField(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindField, locator, false, opts...)
}

// HasNoField reports whether no such field is present.
func (a *Asserter) HasNoField(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindField, locator, true, opts...)
}

// HasCheckedField reports whether a checked field matching the locator is
// present.
func (a *Asserter) HasCheckedField(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindField, locator, false, append(opts, query.Checked())...)
}

// HasUncheckedField reports whether an unchecked field matching the locator
// is present.
func (a *Asserter) HasUncheckedField(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindField, locator, false, append(opts, query.Unchecked())...)
}

// HasButton reports whether a button with the given id, value or text is
// present.
func (a *Asserter) HasButton(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindButton, locator, false, opts...)
}

// HasNoButton reports whether no such button is present.
func (a *Asserter) HasNoButton(ctx context.Context, locator string, opts ...query.SelectorOption) (bool, error) {
	return a.hasKind(ctx, query.KindButton, locator, true, opts...)
}
