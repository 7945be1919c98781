package query

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// The css kind supports a restricted selector form: comma-separated groups
// of descendant chains, each link being tag/#id/.class/[attr]/[attr=val] in
// any combination. That covers the structural checks page specs need without
// pulling in a full CSS engine.

type attrCond struct {
	name     string
	value    string
	hasValue bool
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrCond
}

func (s simpleSelector) matches(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && s.tag != "*" && n.Data != s.tag {
		return false
	}
	if s.id != "" && !hasAttrVal(n, "id", s.id) {
		return false
	}
	if len(s.classes) > 0 {
		classAttr, _ := attrVal(n, "class")
		have := strings.Fields(classAttr)
		for _, want := range s.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, a := range s.attrs {
		got, ok := attrVal(n, a.name)
		if !ok {
			return false
		}
		if a.hasValue && got != a.value {
			return false
		}
	}
	return true
}

// matchChain reports whether n matches the last selector in the chain with
// ancestors (up to and including root) satisfying the preceding links.
func matchChain(n *html.Node, chain []simpleSelector, root *html.Node) bool {
	if len(chain) == 0 {
		return false
	}
	if !chain[len(chain)-1].matches(n) {
		return false
	}

	cur := n.Parent
	for i := len(chain) - 2; i >= 0; i-- {
		matched := false
		for cur != nil {
			candidate := cur
			cur = cur.Parent
			if chain[i].matches(candidate) {
				matched = true
				break
			}
			if candidate == root {
				cur = nil
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func compileSelector(s string) ([][]simpleSelector, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("css locator must not be empty")
	}

	var groups [][]simpleSelector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("css locator %q has an empty selector group", s)
		}
		var chain []simpleSelector
		for _, token := range strings.Fields(part) {
			simple, err := parseSimple(token)
			if err != nil {
				return nil, fmt.Errorf("css locator %q: %w", s, err)
			}
			chain = append(chain, simple)
		}
		groups = append(groups, chain)
	}
	return groups, nil
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-' || c == '_'
}

func scanName(s string, i int) (string, int) {
	start := i
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	return s[start:i], i
}

func parseSimple(token string) (simpleSelector, error) {
	var sel simpleSelector
	i := 0

	if i < len(token) && token[i] == '*' {
		sel.tag = "*"
		i++
	} else if i < len(token) && isNameChar(token[i]) {
		sel.tag, i = scanName(token, i)
	}

	for i < len(token) {
		switch token[i] {
		case '#':
			name, next := scanName(token, i+1)
			if name == "" {
				return sel, fmt.Errorf("empty id in %q", token)
			}
			sel.id = name
			i = next
		case '.':
			name, next := scanName(token, i+1)
			if name == "" {
				return sel, fmt.Errorf("empty class in %q", token)
			}
			sel.classes = append(sel.classes, name)
			i = next
		case '[':
			end := strings.IndexByte(token[i:], ']')
			if end < 0 {
				return sel, fmt.Errorf("unclosed attribute selector in %q", token)
			}
			body := token[i+1 : i+end]
			i += end + 1
			cond := attrCond{}
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				cond.name = body[:eq]
				cond.value = strings.Trim(body[eq+1:], `"'`)
				cond.hasValue = true
			} else {
				cond.name = body
			}
			if cond.name == "" {
				return sel, fmt.Errorf("empty attribute name in %q", token)
			}
			sel.attrs = append(sel.attrs, cond)
		default:
			return sel, fmt.Errorf("unexpected %q in selector %q", string(token[i]), token)
		}
	}

	if sel.tag == "" && sel.id == "" && len(sel.classes) == 0 && len(sel.attrs) == 0 {
		return sel, fmt.Errorf("empty selector %q", token)
	}
	return sel, nil
}
