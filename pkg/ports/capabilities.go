package ports

import (
	"context"

	"github.com/aretw0/weaver/pkg/domain"
)

// Orchestrator is the planning LLM capability.
type Orchestrator interface {
	// Complete turns a goal and the corpus texts into an ordered list of task drafts.
	Complete(ctx context.Context, goal string, corpus []string) ([]domain.TaskDraft, error)
}

// TaskModel is the task-execution LLM capability.
type TaskModel interface {
	// Complete executes one task given its accumulated context and returns the result text.
	// Errors wrapping domain.ErrAuthentication are treated as fatal for the run.
	Complete(ctx context.Context, task domain.Task, context []string) (string, error)
}

// CorpusSource reads raw source material into text.
type CorpusSource interface {
	// Read returns the decoded text behind a locator.
	// Any failure is reported as a *domain.SourceUnavailableError.
	Read(ctx context.Context, locator string) (string, error)
}

// Reviewer is the human side of the checkpoint between planning and execution.
type Reviewer interface {
	// Present exposes the blueprint for editing.
	Present(ctx context.Context, state *domain.ProjectState) error

	// Collect returns the blueprint as edited by the human.
	Collect(ctx context.Context, state *domain.ProjectState) ([]domain.Task, error)
}

// OrchestratorFunc adapts a function to the Orchestrator interface.
type OrchestratorFunc func(ctx context.Context, goal string, corpus []string) ([]domain.TaskDraft, error)

func (f OrchestratorFunc) Complete(ctx context.Context, goal string, corpus []string) ([]domain.TaskDraft, error) {
	return f(ctx, goal, corpus)
}

// TaskModelFunc adapts a function to the TaskModel interface.
type TaskModelFunc func(ctx context.Context, task domain.Task, context []string) (string, error)

func (f TaskModelFunc) Complete(ctx context.Context, task domain.Task, context []string) (string, error) {
	return f(ctx, task, context)
}
