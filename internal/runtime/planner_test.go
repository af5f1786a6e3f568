package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/weaver/internal/runtime"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanner_Plan(t *testing.T) {
	calls := 0
	var gotCorpus []string
	orch := ports.OrchestratorFunc(func(ctx context.Context, goal string, corpus []string) ([]domain.TaskDraft, error) {
		calls++
		gotCorpus = corpus
		return []domain.TaskDraft{{Description: "outline"}, {Description: "  "}, {Description: "draft", Model: "writer"}}, nil
	})

	tasks, err := runtime.NewPlanner(orch, nil).Plan(context.Background(), "essay", []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"x", "y"}, gotCorpus)
	require.Len(t, tasks, 2)
	assert.Equal(t, 1, tasks[1].Index)
	assert.Equal(t, domain.TaskPending, tasks[1].Status)
	assert.Equal(t, "writer", tasks[1].Model)
}

func TestPlanner_Errors(t *testing.T) {
	t.Run("Empty Plan", func(t *testing.T) {
		orch := ports.OrchestratorFunc(func(context.Context, string, []string) ([]domain.TaskDraft, error) {
			return nil, nil
		})
		_, err := runtime.NewPlanner(orch, nil).Plan(context.Background(), "g", nil)
		var perr *domain.PlanningError
		assert.ErrorAs(t, err, &perr)
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		calls := 0
		orch := ports.OrchestratorFunc(func(context.Context, string, []string) ([]domain.TaskDraft, error) {
			calls++
			return nil, errors.New("503")
		})
		_, err := runtime.NewPlanner(orch, nil).Plan(context.Background(), "g", nil)
		var uerr *domain.UpstreamError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "orchestrator", uerr.Capability)
		assert.Equal(t, 1, calls, "planning is not retried")
	})

	t.Run("Unparseable Reply", func(t *testing.T) {
		orch := ports.OrchestratorFunc(func(context.Context, string, []string) ([]domain.TaskDraft, error) {
			return nil, &domain.PlanningError{Reason: "no task list"}
		})
		_, err := runtime.NewPlanner(orch, nil).Plan(context.Background(), "g", nil)
		var perr *domain.PlanningError
		require.ErrorAs(t, err, &perr)
		var uerr *domain.UpstreamError
		assert.False(t, errors.As(err, &uerr))
	})

	t.Run("Missing Orchestrator", func(t *testing.T) {
		_, err := runtime.NewPlanner(nil, nil).Plan(context.Background(), "g", nil)
		var uerr *domain.UpstreamError
		assert.ErrorAs(t, err, &uerr)
	})
}
