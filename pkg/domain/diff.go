package domain

import (
	"fmt"
	"strings"
)

// BlueprintDiff summarises what a human review changed in a blueprint.
// It is designed to be logged or printed after a checkpoint resumes.
type BlueprintDiff struct {
	// Added holds descriptions that did not exist before the review.
	Added []string `json:"added,omitempty"`

	// Removed holds descriptions dropped by the review.
	Removed []string `json:"removed,omitempty"`

	// Skipped holds descriptions newly flagged to be skipped.
	Skipped []string `json:"skipped,omitempty"`

	// Reordered is true when surviving tasks changed relative order.
	Reordered bool `json:"reordered,omitempty"`
}

// Empty reports whether the review left the blueprint untouched.
func (d *BlueprintDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Skipped) == 0 && !d.Reordered
}

func (d *BlueprintDiff) String() string {
	if d.Empty() {
		return "no changes"
	}
	parts := []string{}
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	if n := len(d.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	if d.Reordered {
		parts = append(parts, "reordered")
	}
	return strings.Join(parts, ", ")
}

// DiffBlueprint compares two blueprints by task description.
// An edited description shows up as one removal plus one addition.
func DiffBlueprint(before, after []Task) *BlueprintDiff {
	diff := &BlueprintDiff{}

	remaining := make(map[string]int, len(before))
	for _, t := range before {
		remaining[t.Description]++
	}
	wasSkipped := make(map[string]bool, len(before))
	for _, t := range before {
		if t.Skip {
			wasSkipped[t.Description] = true
		}
	}

	// kept preserves the order in which surviving tasks appear after the review.
	kept := []string{}
	for _, t := range after {
		if remaining[t.Description] > 0 {
			remaining[t.Description]--
			kept = append(kept, t.Description)
			if t.Skip && !wasSkipped[t.Description] {
				diff.Skipped = append(diff.Skipped, t.Description)
			}
			continue
		}
		diff.Added = append(diff.Added, t.Description)
		if t.Skip {
			diff.Skipped = append(diff.Skipped, t.Description)
		}
	}

	originalOrder := []string{}
	for _, t := range before {
		if remaining[t.Description] > 0 {
			remaining[t.Description]--
			diff.Removed = append(diff.Removed, t.Description)
			continue
		}
		originalOrder = append(originalOrder, t.Description)
	}

	for i := range kept {
		if i < len(originalOrder) && kept[i] != originalOrder[i] {
			diff.Reordered = true
			break
		}
	}

	return diff
}
