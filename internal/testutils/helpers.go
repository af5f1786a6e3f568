// Package testutils holds fakes shared by adapter tests.
package testutils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/weaver"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/stretchr/testify/require"
)

// StaticPlanner returns an orchestrator that always drafts the given task descriptions.
func StaticPlanner(descriptions ...string) ports.Orchestrator {
	return ports.OrchestratorFunc(func(ctx context.Context, goal string, corpus []string) ([]domain.TaskDraft, error) {
		drafts := make([]domain.TaskDraft, len(descriptions))
		for i, d := range descriptions {
			drafts[i] = domain.TaskDraft{Description: d}
		}
		return drafts, nil
	})
}

// IndexedResults returns a task model that answers "result <index>".
func IndexedResults() ports.TaskModel {
	return ports.TaskModelFunc(func(ctx context.Context, task domain.Task, c []string) (string, error) {
		return fmt.Sprintf("result %d", task.Index), nil
	})
}

// MapSource serves corpus text from memory keyed by locator.
type MapSource map[string]string

func (m MapSource) Read(ctx context.Context, locator string) (string, error) {
	text, ok := m[locator]
	if !ok {
		return "", &domain.SourceUnavailableError{Locator: locator, Err: errors.New("no such file")}
	}
	return text, nil
}

// NewEngine creates an in-memory engine with a two-task planner and indexed results.
// Extra options are applied last.
func NewEngine(t *testing.T, opts ...weaver.Option) *weaver.Engine {
	t.Helper()
	base := []weaver.Option{
		weaver.WithOrchestrator(StaticPlanner("outline", "draft")),
		weaver.WithTaskModel(IndexedResults()),
	}
	eng, err := weaver.New(append(base, opts...)...)
	require.NoError(t, err)
	return eng
}
