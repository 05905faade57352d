package driver

import (
	"fmt"
	"slices"
	"strings"

	"tower/internal/world"
)

// checkExpectation compares r with e and returns one line per difference.
func checkExpectation(e world.Expectation, r *CallResult) []string {
	if e.IsZero() {
		return nil
	}
	var out []string
	if e.Outcome != "" && e.Outcome != r.Outcome {
		out = append(out, fmt.Sprintf("outcome: expected %s, got %s", e.Outcome, r.Outcome))
	}
	if len(e.Candidates) > 0 {
		want := slices.Sorted(slices.Values(e.Candidates))
		if got := r.Names(); !slices.Equal(want, got) {
			out = append(out, fmt.Sprintf("candidates: expected [%s], got [%s]", strings.Join(want, ", "), strings.Join(got, ", ")))
		}
	}
	if e.Group != "" && e.Group != r.Group {
		got := r.Group
		if got == "" {
			got = "none"
		}
		out = append(out, fmt.Sprintf("group: expected %s, got %s", e.Group, got))
	}
	return out
}
