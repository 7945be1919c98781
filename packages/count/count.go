package count

import (
	"fmt"
	"strings"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min int
	Max int
}

// Options constrains how many matches satisfy an assertion. All fields are
// optional; every constraint that is set must hold. When no field is set the
// assertion layer applies its default "at least one" policy.
type Options struct {
	Count   *int
	Minimum *int
	Maximum *int
	Between *Range
}

// Int returns a pointer to an int value, for building Options literals.
func Int(n int) *int {
	return &n
}

// Exactly returns options requiring exactly n matches.
func Exactly(n int) Options {
	return Options{Count: Int(n)}
}

// AtLeast returns options requiring at least n matches.
func AtLeast(n int) Options {
	return Options{Minimum: Int(n)}
}

// AtMost returns options requiring at most n matches.
func AtMost(n int) Options {
	return Options{Maximum: Int(n)}
}

// Within returns options requiring between lo and hi matches, inclusive.
func Within(lo, hi int) Options {
	return Options{Between: &Range{Min: lo, Max: hi}}
}

// Constrained reports whether any count constraint is set.
func (o Options) Constrained() bool {
	return o.Count != nil || o.Minimum != nil || o.Maximum != nil || o.Between != nil
}

// Validate rejects options that can never be satisfied or are malformed.
// Called at query construction so a bad constraint is a hard error, not a
// silently failing assertion.
func (o Options) Validate() error {
	if o.Count != nil && *o.Count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", *o.Count)
	}
	if o.Minimum != nil && *o.Minimum < 0 {
		return fmt.Errorf("minimum must be non-negative, got %d", *o.Minimum)
	}
	if o.Maximum != nil && *o.Maximum < 0 {
		return fmt.Errorf("maximum must be non-negative, got %d", *o.Maximum)
	}
	if o.Between != nil {
		if o.Between.Min < 0 {
			return fmt.Errorf("between lower bound must be non-negative, got %d", o.Between.Min)
		}
		if o.Between.Min > o.Between.Max {
			return fmt.Errorf("between range is inverted: [%d, %d]", o.Between.Min, o.Between.Max)
		}
	}
	if o.Minimum != nil && o.Maximum != nil && *o.Minimum > *o.Maximum {
		return fmt.Errorf("minimum %d exceeds maximum %d", *o.Minimum, *o.Maximum)
	}
	return nil
}

// Matches reports whether actual satisfies every constraint that is set.
// With no constraints set it always returns true; the "at least one" default
// is applied by the caller.
func (o Options) Matches(actual int) bool {
	if o.Count != nil && actual != *o.Count {
		return false
	}
	if o.Minimum != nil && actual < *o.Minimum {
		return false
	}
	if o.Maximum != nil && actual > *o.Maximum {
		return false
	}
	if o.Between != nil && (actual < o.Between.Min || actual > o.Between.Max) {
		return false
	}
	return true
}

// ExpectsNone reports whether the options, taken together, permit zero
// matches as a satisfying outcome: count 0, maximum 0, or a between range
// whose lower bound is 0. This is distinct from "no constraint", where the
// default at-least-one policy applies.
func (o Options) ExpectsNone() bool {
	if o.Count != nil && *o.Count == 0 {
		return true
	}
	if o.Maximum != nil && *o.Maximum == 0 {
		return true
	}
	if o.Between != nil && o.Between.Min == 0 {
		return true
	}
	return false
}

// Describe renders the constraints as human wording for failure messages,
// e.g. "exactly 4 times" or "at least 2 and at most 5 times". Unconstrained
// options describe the default policy, "at least 1 time".
func (o Options) Describe() string {
	if !o.Constrained() {
		return "at least 1 time"
	}

	var parts []string
	if o.Count != nil {
		parts = append(parts, fmt.Sprintf("exactly %d", *o.Count))
	}
	if o.Between != nil {
		parts = append(parts, fmt.Sprintf("between %d and %d", o.Between.Min, o.Between.Max))
	}
	if o.Minimum != nil {
		parts = append(parts, fmt.Sprintf("at least %d", *o.Minimum))
	}
	if o.Maximum != nil {
		parts = append(parts, fmt.Sprintf("at most %d", *o.Maximum))
	}

	plural := true
	if o.Count != nil && *o.Count == 1 {
		plural = false
	}
	unit := "times"
	if !plural {
		unit = "time"
	}
	return strings.Join(parts, " and ") + " " + unit
}
