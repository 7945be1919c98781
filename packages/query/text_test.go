package query

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/domspec/packages/count"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextQuery_Literal(t *testing.T) {
	doc := parseDoc(t, `<p>hello world</p><p>hello   again</p>`)

	q, err := NewText("hello")
	require.NoError(t, err)
	assert.Equal(t, 2, resolve(t, q, doc).Size())

	q, err = NewText("absent")
	require.NoError(t, err)
	assert.Equal(t, 0, resolve(t, q, doc).Size())
}

func TestTextQuery_NormalizesWhitespace(t *testing.T) {
	doc := parseDoc(t, "<p>hello\n\t  world</p>")

	q, err := NewText("hello world")
	require.NoError(t, err)
	assert.Equal(t, 1, resolve(t, q, doc).Size())
}

func TestTextQuery_Pattern(t *testing.T) {
	doc := parseDoc(t, `<p>order #123 and order #456</p>`)

	q, err := NewTextPattern(`order #\d+`)
	require.NoError(t, err)
	assert.Equal(t, 2, resolve(t, q, doc).Size())
}

func TestTextQuery_ConstructionErrors(t *testing.T) {
	_, err := NewText("   ")
	assert.Error(t, err)

	_, err = NewTextPattern(`(unclosed`)
	assert.Error(t, err)

	_, err = NewText("x", WithTextCount(count.Exactly(-3)))
	assert.Error(t, err)

	_, err = NewText("x", WithTextWait(-time.Second))
	assert.Error(t, err)
}

func TestExcerpt_CutsAtRuneBoundary(t *testing.T) {
	// The leading "a" shifts every two-byte rune off an even offset, so a
	// naive byte cut at the limit would land inside a rune.
	long := "a" + strings.Repeat("é", 100)

	got := excerpt(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), excerptLen+len("..."))

	short := "barely anything"
	assert.Equal(t, short, excerpt(short))
}

func TestTextQuery_Messages(t *testing.T) {
	doc := parseDoc(t, `<p>one fish two fish</p>`)

	q, err := NewText("fish", WithTextCount(count.Exactly(3)))
	require.NoError(t, err)
	res := resolve(t, q, doc)

	assert.Equal(t, 2, res.Size())
	assert.Contains(t, res.FailureMessage(), `expected to find text "fish" exactly 3 times but found 2 matches`)
	assert.Contains(t, res.FailureMessage(), "one fish two fish")
	assert.Contains(t, res.NegativeFailureMessage(), `expected not to find text "fish"`)
}
