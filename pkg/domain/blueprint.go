package domain

import (
	"fmt"
	"strings"
)

// TaskStatus is the execution status of a single task.
type TaskStatus string

const (
	TaskPending TaskStatus = "PENDING"
	TaskDone    TaskStatus = "DONE"
	TaskFailed  TaskStatus = "FAILED"
	TaskSkipped TaskStatus = "SKIPPED"
)

// ParseTaskStatus normalises a status string (case-insensitive).
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case TaskPending, "":
		return TaskPending, nil
	case TaskDone:
		return TaskDone, nil
	case TaskFailed:
		return TaskFailed, nil
	case TaskSkipped:
		return TaskSkipped, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// Resolved reports whether the task has been settled by the executor.
func (s TaskStatus) Resolved() bool {
	return s == TaskDone || s == TaskFailed || s == TaskSkipped
}

// Task is one unit of planned work.
type Task struct {
	Index       int    `json:"index"`
	Description string `json:"description"`

	// Model names the task capability to route this task to. Empty means the default.
	Model string `json:"model,omitempty"`

	Status TaskStatus `json:"status"`
	Result string     `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`

	// Skip is a human request to settle this task as SKIPPED without running it.
	Skip bool `json:"skip,omitempty"`
}

// TaskDraft is a task proposed by the orchestrator, before it joins a blueprint.
type TaskDraft struct {
	Description string `json:"description"`
	Model       string `json:"model,omitempty"`
}

// NewBlueprint turns orchestrator drafts into PENDING tasks with sequential indices.
// Drafts with a blank description are dropped.
func NewBlueprint(drafts []TaskDraft) []Task {
	tasks := make([]Task, 0, len(drafts))
	for _, d := range drafts {
		desc := strings.TrimSpace(d.Description)
		if desc == "" {
			continue
		}
		tasks = append(tasks, Task{
			Index:       len(tasks),
			Description: desc,
			Model:       strings.TrimSpace(d.Model),
			Status:      TaskPending,
		})
	}
	return tasks
}

// ValidateBlueprint checks index stability and the cursor invariant:
// tasks before the cursor are resolved, tasks at or after it are PENDING.
func ValidateBlueprint(tasks []Task, cursor int) error {
	for i, t := range tasks {
		if t.Index != i {
			return errInvariant("task at position %d has index %d", i, t.Index)
		}
		if i < cursor && !t.Status.Resolved() {
			return errInvariant("task %d is %s but precedes the cursor", i, t.Status)
		}
		if i >= cursor && t.Status != TaskPending {
			return errInvariant("task %d is %s but is at or after the cursor", i, t.Status)
		}
	}
	return nil
}

// ApplyEdits merges a human-edited blueprint into the current one.
//
// Resolved tasks (before the cursor) are immutable and must appear unchanged,
// in order, at the head of edited. The remaining rows may be reordered, edited,
// removed or flagged as skipped. Rows without a matching original may be added.
// The returned blueprint is renumbered.
func ApplyEdits(current []Task, cursor int, edited []Task) ([]Task, error) {
	if len(edited) < cursor {
		return nil, &BlueprintEditError{Reason: "resolved tasks cannot be removed"}
	}
	out := make([]Task, 0, len(edited))
	for i := 0; i < cursor; i++ {
		orig, got := current[i], edited[i]
		if got.Description != orig.Description || got.Status != orig.Status {
			return nil, &BlueprintEditError{
				Index:  i,
				Reason: "resolved tasks are immutable",
			}
		}
		out = append(out, orig)
	}
	for _, t := range edited[cursor:] {
		desc := strings.TrimSpace(t.Description)
		if desc == "" {
			return nil, &BlueprintEditError{Index: t.Index, Reason: "description is empty"}
		}
		skip := t.Skip
		switch t.Status {
		case TaskPending, "":
		case TaskSkipped:
			skip = true
		default:
			return nil, &BlueprintEditError{
				Index:  t.Index,
				Reason: fmt.Sprintf("pending task cannot be set to %s", t.Status),
			}
		}
		out = append(out, Task{
			Index:       len(out),
			Description: desc,
			Model:       strings.TrimSpace(t.Model),
			Status:      TaskPending,
			Skip:        skip,
		})
	}
	if len(out) == 0 {
		return nil, &BlueprintEditError{Reason: "blueprint must keep at least one task"}
	}
	return out, nil
}

// Counts tallies task statuses across a blueprint.
func Counts(tasks []Task) map[TaskStatus]int {
	counts := make(map[TaskStatus]int, 4)
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}
