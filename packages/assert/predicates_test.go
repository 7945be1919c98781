package assert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/poll"
	"github.com/abdul-hamid-achik/domspec/packages/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasSelector(t *testing.T) {
	doc := parseDoc(t, `<div class="banner">hi</div>`)
	a := immediate(doc)
	ctx := context.Background()

	ok, err := a.HasSelector(ctx, cssQuery(t, ".banner"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.HasSelector(ctx, cssQuery(t, ".missing"))
	require.NoError(t, err, "an unmet expectation is false, not an error")
	assert.False(t, ok)

	ok, err = a.HasNoSelector(ctx, cssQuery(t, ".missing"))
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingScope struct {
	err error
}

func (s failingScope) Root(ctx context.Context) (*query.Node, error) {
	return nil, s.err
}

func TestHasSelector_UnrelatedErrorsPropagate(t *testing.T) {
	// Only ExpectationNotMet becomes false; a broken collaborator must
	// surface as a hard error.
	boom := errors.New("render backend gone")
	a := immediate(failingScope{err: boom})

	ok, err := a.HasSelector(context.Background(), cssQuery(t, ".anything"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)

	ok, err = a.HasNoSelector(context.Background(), cssQuery(t, ".anything"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestHasText_UnrelatedErrorsPropagate(t *testing.T) {
	boom := errors.New("scope detached")
	a := immediate(failingScope{err: boom})

	q, err := query.NewText("anything")
	require.NoError(t, err)

	ok, hasErr := a.HasText(context.Background(), q)
	assert.False(t, ok)
	assert.ErrorIs(t, hasErr, boom)
}

func TestHasCSS_ConstructionErrorPropagates(t *testing.T) {
	doc := parseDoc(t, `<p>x</p>`)
	a := immediate(doc)

	ok, err := a.HasCSS(context.Background(), "div[unclosed")
	assert.False(t, ok)
	assert.Error(t, err)
	var enm *ExpectationNotMet
	assert.False(t, errors.As(err, &enm), "a malformed locator is not a failed expectation")
}

func TestHas_Idempotent(t *testing.T) {
	doc := parseDoc(t, `<div class="banner">hi</div>`)

	resolutions := 0
	a := New(doc, WithEvaluator(poll.NewEvaluator(
		poll.WithObserver(func(time.Duration) { resolutions++ }),
	)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := a.HasCSS(ctx, ".banner")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 2, resolutions, "a satisfied check resolves once per call")
}

func TestDerivedChecks(t *testing.T) {
	doc := parseDoc(t, `
		<a href="/logout">Sign out</a>
		<label for="tos">Accept terms</label>
		<input id="tos" type="checkbox" checked>
		<input type="checkbox" name="newsletter">
		<button>Place order</button>`)
	a := immediate(doc)
	ctx := context.Background()

	tests := []struct {
		name  string
		check func() (bool, error)
		want  bool
	}{
		{"has link", func() (bool, error) { return a.HasLink(ctx, "Sign out") }, true},
		{"has no link", func() (bool, error) { return a.HasNoLink(ctx, "Sign in") }, true},
		{"has field", func() (bool, error) { return a.HasField(ctx, "Accept terms") }, true},
		{"has no field", func() (bool, error) { return a.HasNoField(ctx, "Nickname") }, true},
		{"has checked field", func() (bool, error) { return a.HasCheckedField(ctx, "tos") }, true},
		{"checked overlay excludes unchecked", func() (bool, error) { return a.HasCheckedField(ctx, "newsletter") }, false},
		{"has unchecked field", func() (bool, error) { return a.HasUncheckedField(ctx, "newsletter") }, true},
		{"has button", func() (bool, error) { return a.HasButton(ctx, "Place order") }, true},
		{"has no button", func() (bool, error) { return a.HasNoButton(ctx, "Cancel order") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesSelectorPredicate(t *testing.T) {
	doc := parseDoc(t, `<li class="active">Home</li>`)
	li := findByTag(t, doc, "li")
	a := immediate(doc)
	ctx := context.Background()

	ok, err := a.MatchesSelector(ctx, li, cssQuery(t, "li.active"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.NotMatchesSelector(ctx, li, cssQuery(t, "li.other"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.MatchesSelector(ctx, li, cssQuery(t, "li.other"))
	require.NoError(t, err)
	assert.False(t, ok)
}
