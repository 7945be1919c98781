package query

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/count"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseDoc(t *testing.T, markup string) *Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return NewNode(root)
}

func resolve(t *testing.T, q Query, scope Scope) Result {
	t.Helper()
	res, err := q.Resolve(context.Background(), scope)
	require.NoError(t, err)
	return res
}

func TestSelectorQuery_CSS(t *testing.T) {
	doc := parseDoc(t, `
		<div id="main" class="wrap">
			<p class="note first">one</p>
			<p class="note">two</p>
			<span class="note">three</span>
			<p data-role="hint">four</p>
		</div>
		<p class="note">outside</p>`)

	tests := []struct {
		name    string
		locator string
		size    int
	}{
		{"tag", "p", 4},
		{"class", ".note", 4},
		{"tag and class", "p.note", 3},
		{"multiple classes", ".note.first", 1},
		{"id", "#main", 1},
		{"attribute present", "[data-role]", 1},
		{"attribute value", `[data-role=hint]`, 1},
		{"attribute value quoted", `[data-role="hint"]`, 1},
		{"descendant", "#main p", 3},
		{"descendant class chain", "div.wrap .note", 3},
		{"comma groups", "span, #main [data-role]", 2},
		{"no match", ".missing", 0},
		{"universal", "*", 9}, // html, head, body, div, 4 p, span
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewSelector(KindCSS, tt.locator)
			require.NoError(t, err)
			assert.Equal(t, tt.size, resolve(t, q, doc).Size(), "locator %q", tt.locator)
		})
	}
}

func TestSelectorQuery_CSS_NoDuplicates(t *testing.T) {
	// The innermost p has two div ancestors; it must be counted once.
	doc := parseDoc(t, `<div><div><p>deep</p></div></div>`)

	q, err := NewSelector(KindCSS, "div p")
	require.NoError(t, err)
	assert.Equal(t, 1, resolve(t, q, doc).Size())
}

func TestSelectorQuery_CSS_ScopedToNode(t *testing.T) {
	doc := parseDoc(t, `
		<div id="inside"><p>in</p></div>
		<p>out</p>`)

	q, err := NewSelector(KindCSS, "p")
	require.NoError(t, err)

	inside := findElement(t, doc, "div")
	assert.Equal(t, 1, resolve(t, q, inside).Size())
	assert.Equal(t, 2, resolve(t, q, doc).Size())
}

func TestSelectorQuery_TextFilter(t *testing.T) {
	doc := parseDoc(t, `
		<li class="row">alpha item</li>
		<li class="row">beta  item</li>
		<li class="row">gamma</li>`)

	q, err := NewSelector(KindCSS, "li.row", WithText("item"))
	require.NoError(t, err)
	assert.Equal(t, 2, resolve(t, q, doc).Size())

	// Whitespace in the wanted text is normalized before matching.
	q, err = NewSelector(KindCSS, "li.row", WithText("beta item"))
	require.NoError(t, err)
	assert.Equal(t, 1, resolve(t, q, doc).Size())
}

func TestSelectorQuery_AttrFilter(t *testing.T) {
	doc := parseDoc(t, `
		<input type="text" name="email">
		<input type="text" name="nickname">`)

	q, err := NewSelector(KindCSS, "input", WithAttr("name", "email"))
	require.NoError(t, err)
	assert.Equal(t, 1, resolve(t, q, doc).Size())
}

func TestSelectorQuery_Link(t *testing.T) {
	doc := parseDoc(t, `
		<a href="/one" id="first-link">Go home</a>
		<a href="/two" title="Sign out">exit</a>
		<a name="anchor-only">Go home</a>
		<span>Go home</span>`)

	tests := []struct {
		name    string
		locator string
		size    int
	}{
		{"by text", "Go home", 1}, // the anchor without href does not count
		{"by id", "first-link", 1},
		{"by title", "Sign out", 1},
		{"absent", "nope", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewSelector(KindLink, tt.locator)
			require.NoError(t, err)
			assert.Equal(t, tt.size, resolve(t, q, doc).Size())
		})
	}
}

func TestSelectorQuery_Field(t *testing.T) {
	doc := parseDoc(t, `
		<label for="email-input">Email address</label>
		<input id="email-input" type="text">
		<input name="user[nickname]" type="text">
		<input type="text" placeholder="Search...">
		<label>Remember me <input type="checkbox" name="remember"></label>
		<input type="submit" value="Save">
		<input type="hidden" name="token">`)

	tests := []struct {
		name    string
		locator string
		size    int
	}{
		{"by id", "email-input", 1},
		{"by label for", "Email address", 1},
		{"by name", "user[nickname]", 1},
		{"by placeholder", "Search...", 1},
		{"by enclosing label", "Remember me", 1},
		{"submit is not a field", "Save", 0},
		{"hidden is not a field", "token", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewSelector(KindField, tt.locator)
			require.NoError(t, err)
			assert.Equal(t, tt.size, resolve(t, q, doc).Size())
		})
	}
}

func TestSelectorQuery_CheckedFilter(t *testing.T) {
	doc := parseDoc(t, `
		<input type="checkbox" name="opts" checked>
		<input type="checkbox" name="opts">`)

	q, err := NewSelector(KindField, "opts", Checked())
	require.NoError(t, err)
	assert.Equal(t, 1, resolve(t, q, doc).Size())

	q, err = NewSelector(KindField, "opts", Unchecked())
	require.NoError(t, err)
	assert.Equal(t, 1, resolve(t, q, doc).Size())

	q, err = NewSelector(KindField, "opts")
	require.NoError(t, err)
	assert.Equal(t, 2, resolve(t, q, doc).Size())
}

func TestSelectorQuery_Button(t *testing.T) {
	doc := parseDoc(t, `
		<button>Submit order</button>
		<button id="cancel-btn">Cancel</button>
		<input type="submit" value="Send">
		<input type="text" value="Send">`)

	tests := []struct {
		name    string
		locator string
		size    int
	}{
		{"button text", "Submit order", 1},
		{"button id", "cancel-btn", 1},
		{"input submit value", "Send", 1}, // the text input does not count
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewSelector(KindButton, tt.locator)
			require.NoError(t, err)
			assert.Equal(t, tt.size, resolve(t, q, doc).Size())
		})
	}
}

func TestNewSelector_ConstructionErrors(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		locator string
		opts    []SelectorOption
	}{
		{"unknown kind", Kind("xpath"), "//div", nil},
		{"empty css", KindCSS, "   ", nil},
		{"unclosed attribute", KindCSS, "div[role", nil},
		{"empty class", KindCSS, "div.", nil},
		{"empty group", KindCSS, "div,,p", nil},
		{"empty link locator", KindLink, "", nil},
		{"checked on css", KindCSS, "input", []SelectorOption{Checked()}},
		{"checked on button", KindButton, "Save", []SelectorOption{Checked()}},
		{"bad count", KindCSS, "div", []SelectorOption{WithCount(count.Exactly(-1))}},
		{"negative wait", KindCSS, "div", []SelectorOption{WithWait(-time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSelector(tt.kind, tt.locator, tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestSelectorQuery_Wait(t *testing.T) {
	q, err := NewSelector(KindCSS, "div")
	require.NoError(t, err)
	_, ok := q.Wait()
	assert.False(t, ok)

	q, err = NewSelector(KindCSS, "div", WithWait(250*time.Millisecond))
	require.NoError(t, err)
	d, ok := q.Wait()
	assert.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestElements_Messages(t *testing.T) {
	doc := parseDoc(t, `<p class="note">one</p>`)

	q, err := NewSelector(KindCSS, ".note", WithCount(count.Exactly(4)))
	require.NoError(t, err)
	res := resolve(t, q, doc)

	assert.Equal(t, `expected to find css ".note" exactly 4 times but found 1 match`, res.FailureMessage())
	assert.Equal(t, `expected not to find css ".note" exactly 4 times but found 1 match`, res.NegativeFailureMessage())
}

func TestElements_Contains(t *testing.T) {
	doc := parseDoc(t, `<p class="note">one</p><p>two</p>`)

	q, err := NewSelector(KindCSS, ".note", WithCount(count.Exactly(4)))
	require.NoError(t, err)
	res := resolve(t, q, doc)

	elements, ok := res.(MatchResult)
	require.True(t, ok)

	note := findElement(t, doc, "p")
	assert.True(t, elements.Contains(note))
	assert.True(t, elements.Contains(NewNode(note.Base())), "same base through a different wrapper")
}

// findElement returns the first element with the given tag, depth-first.
func findElement(t *testing.T, doc *Node, tag string) *Node {
	t.Helper()
	var found *html.Node
	eachElement(doc.Base(), func(n *html.Node) {
		if found == nil && n.Data == tag {
			found = n
		}
	})
	require.NotNil(t, found, "no <%s> in document", tag)
	return NewNode(found)
}
