// Package count implements the count-matching policy for domspec assertions.
//
// An assertion resolves a query to a number of matches; Options decides
// whether that number is acceptable:
//   - Count: exact number of matches
//   - Minimum / Maximum: inclusive bounds
//   - Between: inclusive range
//   - none set: the caller's default policy applies (at least one match)
//
// ExpectsNone distinguishes "the caller asked for zero" (count: 0,
// maximum: 0, or a range starting at 0) from "no constraint", so a query
// matching nothing can still be declared successful when zero was the
// requested outcome.
package count
