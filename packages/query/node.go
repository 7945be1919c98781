package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Node wraps an element of the parsed document tree. Two Node values are
// equal when they are the identical wrapper or share the same underlying
// handle, so nodes obtained through different resolutions of the same
// document compare equal.
type Node struct {
	base *html.Node
}

// NewNode wraps an underlying parsed-HTML handle.
func NewNode(base *html.Node) *Node {
	return &Node{base: base}
}

// Base returns the underlying platform handle.
func (n *Node) Base() *html.Node {
	return n.base
}

// Equal reports node identity: same wrapper, or both backed by the same
// underlying handle.
func (n *Node) Equal(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	return n.base != nil && n.base == other.base
}

// Root makes a Node usable directly as a Scope: the node itself is the
// context queries resolve against.
func (n *Node) Root(ctx context.Context) (*Node, error) {
	if n == nil || n.base == nil {
		return nil, fmt.Errorf("node scope has no underlying element")
	}
	return n, nil
}

// Container returns the scope match-assertions resolve against: the node's
// document root. A detached or root node is its own container.
func (n *Node) Container() Scope {
	root := n.base
	for root != nil && root.Parent != nil {
		root = root.Parent
	}
	if root == nil || root == n.base {
		return n
	}
	return NewNode(root)
}

// Tag returns the element name, or "" for non-element nodes.
func (n *Node) Tag() string {
	if n.base == nil || n.base.Type != html.ElementNode {
		return ""
	}
	return n.base.Data
}

// Attr returns the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n.base == nil {
		return "", false
	}
	for _, a := range n.base.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the node's text content with whitespace collapsed, skipping
// script, style and noscript subtrees.
func (n *Node) Text() string {
	if n.base == nil {
		return ""
	}
	var sb strings.Builder
	collectText(n.base, &sb)
	return NormalizeText(sb.String())
}

// Describe renders a short identification of the node for failure messages,
// e.g. `<input id="email" name="user[email]">`.
func (n *Node) Describe() string {
	if n.base == nil {
		return "<nil>"
	}
	if n.base.Type == html.DocumentNode {
		return "<document>"
	}
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.base.Data)
	for _, key := range []string{"id", "name", "class"} {
		if v, ok := n.Attr(key); ok {
			fmt.Fprintf(&sb, " %s=%q", key, v)
		}
	}
	sb.WriteByte('>')
	return sb.String()
}

// NormalizeText collapses runs of whitespace to single spaces and trims the
// result, the form all text matching operates on.
func NormalizeText(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// eachElement walks every element node in the subtree rooted at root,
// excluding root itself, in document order.
func eachElement(root *html.Node, fn func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				fn(c)
			}
			walk(c)
		}
	}
	walk(root)
}
