package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageChange EventType = "stage_change"
	EventTaskStart   EventType = "task_start"
	EventTaskFinish  EventType = "task_finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Project   string    `json:"project"`
	RunID     string    `json:"run_id,omitempty"`
}

// StageEvent represents a lifecycle transition.
type StageEvent struct {
	EventBase
	From Stage `json:"from"`
	To   Stage `json:"to"`
}

// TaskEvent represents the start or resolution of a task.
type TaskEvent struct {
	EventBase
	Index    int           `json:"index"`
	Model    string        `json:"model,omitempty"`
	Status   TaskStatus    `json:"status,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStageChange func(context.Context, *StageEvent)
	OnTaskStart   func(context.Context, *TaskEvent)
	OnTaskFinish  func(context.Context, *TaskEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStageChange: chain(h.OnStageChange, other.OnStageChange),
		OnTaskStart:   chain(h.OnTaskStart, other.OnTaskStart),
		OnTaskFinish:  chain(h.OnTaskFinish, other.OnTaskFinish),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
