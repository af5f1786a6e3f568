package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending(descs ...string) []Task {
	drafts := make([]TaskDraft, len(descs))
	for i, d := range descs {
		drafts[i] = TaskDraft{Description: d}
	}
	return NewBlueprint(drafts)
}

func TestNewBlueprint(t *testing.T) {
	tasks := NewBlueprint([]TaskDraft{
		{Description: "  outline  "},
		{Description: "   "},
		{Description: "draft", Model: " fast "},
	})

	require.Len(t, tasks, 2)
	assert.Equal(t, Task{Index: 0, Description: "outline", Status: TaskPending}, tasks[0])
	assert.Equal(t, Task{Index: 1, Description: "draft", Model: "fast", Status: TaskPending}, tasks[1])
}

func TestValidateBlueprint(t *testing.T) {
	tasks := pending("a", "b", "c")
	assert.NoError(t, ValidateBlueprint(tasks, 0))

	tasks[0].Status = TaskDone
	assert.NoError(t, ValidateBlueprint(tasks, 1))
	assert.Error(t, ValidateBlueprint(tasks, 0), "resolved task at the cursor")
	assert.Error(t, ValidateBlueprint(tasks, 2), "pending task before the cursor")

	tasks[2].Index = 7
	assert.Error(t, ValidateBlueprint(tasks, 1), "unstable index")
}

func TestApplyEdits(t *testing.T) {
	t.Run("Reorder, edit, remove and skip pending tasks", func(t *testing.T) {
		current := pending("a", "b", "c", "d")
		edited := []Task{
			{Index: 2, Description: "c (tightened)", Status: TaskPending},
			{Index: 0, Description: "a", Status: TaskPending},
			{Index: 3, Description: "d", Status: TaskSkipped},
		}

		out, err := ApplyEdits(current, 0, edited)
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "c (tightened)", out[0].Description)
		assert.Equal(t, "a", out[1].Description)
		assert.True(t, out[2].Skip)
		for i, task := range out {
			assert.Equal(t, i, task.Index)
			assert.Equal(t, TaskPending, task.Status)
		}
	})

	t.Run("Resolved tasks are immutable", func(t *testing.T) {
		current := pending("a", "b")
		current[0].Status = TaskDone
		current[0].Result = "done"

		edited := []Task{
			{Index: 0, Description: "a rewritten", Status: TaskDone},
			{Index: 1, Description: "b", Status: TaskPending},
		}
		_, err := ApplyEdits(current, 1, edited)
		var ee *BlueprintEditError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, 0, ee.Index)

		_, err = ApplyEdits(current, 1, nil)
		assert.Error(t, err, "resolved tasks cannot be removed")
	})

	t.Run("Resolved tasks keep their results", func(t *testing.T) {
		current := pending("a", "b")
		current[0].Status = TaskDone
		current[0].Result = "kept"

		edited := []Task{
			{Index: 0, Description: "a", Status: TaskDone},
			{Index: 1, Description: "b2", Status: TaskPending},
		}
		out, err := ApplyEdits(current, 1, edited)
		require.NoError(t, err)
		assert.Equal(t, "kept", out[0].Result)
		assert.Equal(t, "b2", out[1].Description)
	})

	t.Run("Pending tasks cannot be marked done by hand", func(t *testing.T) {
		_, err := ApplyEdits(pending("a"), 0, []Task{{Description: "a", Status: TaskDone}})
		assert.Error(t, err)
	})

	t.Run("Empty result is rejected", func(t *testing.T) {
		_, err := ApplyEdits(pending("a"), 0, []Task{})
		assert.Error(t, err)
	})
}

func TestProjectState_Validate(t *testing.T) {
	now := time.Now()
	s := NewProjectState("demo", "goal", now)
	assert.NoError(t, s.Validate())

	s.Stage = StagePlanned
	assert.Error(t, s.Validate(), "planned without blueprint")

	s.Blueprint = pending("a", "b")
	assert.NoError(t, s.Validate())

	s.Cursor = 3
	assert.Error(t, s.Validate(), "cursor out of range")

	s.Cursor = 2
	s.Blueprint[0].Status = TaskDone
	s.Blueprint[1].Status = TaskDone
	assert.Error(t, s.Validate(), "exhausted blueprint must be COMPLETED")
	s.Stage = StageCompleted
	assert.NoError(t, s.Validate())
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("demo"))
	assert.NoError(t, ValidateName("my-project_2.v1"))
	for _, bad := range []string{"", "../etc", ".hidden", "a/b", "with space"} {
		assert.Error(t, ValidateName(bad), bad)
	}
}

func TestNewUpstreamError_Classification(t *testing.T) {
	assert.True(t, IsFatal(NewUpstreamError("task", ErrAuthentication)))
	assert.False(t, IsFatal(NewUpstreamError("task", errors.New("timeout"))))

	inner := NewUpstreamError("orchestrator", errors.New("boom"))
	assert.Same(t, inner, NewUpstreamError("task", inner), "already wrapped errors are kept")
}
