// Package query defines what domspec assertions look for and what a single
// resolution produces.
//
// A Scope hands out the current document root on every call, so a query can
// be resolved repeatedly against a page that is still changing. A Query is
// immutable once constructed and resolves a Scope to a Result: a match count
// plus lazily formatted failure messages.
//
// Concrete queries:
//   - SelectorQuery: structural element lookup. The css kind supports a
//     restricted selector form (tag, #id, .class, [attr] / [attr=val],
//     descendant combinator, comma groups). The link, field and button kinds
//     locate elements by id, name, label or visible text.
//   - TextQuery: whitespace-normalized occurrence count of a literal string
//     or regular expression in the scope's text.
//
// Unsupported locators and option combinations are rejected at construction,
// never silently ignored.
package query
