package file_test

import (
	"strings"
	"testing"

	"github.com/aretw0/weaver/internal/adapters/file"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBlueprint(t *testing.T) {
	tasks := []domain.Task{
		{Index: 0, Description: "outline", Status: domain.TaskDone, Result: "1. intro"},
		{Index: 1, Description: "draft", Status: domain.TaskFailed, Error: "timeout"},
		{Index: 2, Description: "polish", Status: domain.TaskPending, Skip: true, Model: "fast"},
	}

	data, err := file.EncodeBlueprint(tasks)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"index,status,model,description,result",
		"0,DONE,,outline,1. intro",
		"1,FAILED,,draft,timeout",
		"2,SKIPPED,fast,polish,",
		"",
	}, "\n"), string(data))
}

func TestDecodeBlueprint(t *testing.T) {
	t.Run("Human Edited", func(t *testing.T) {
		in := strings.Join([]string{
			"index,status,model,description,result",
			"0,DONE,,outline,1. intro",
			"5,pending,,  write the body  ,",
			",,,,",
			"9,SKIPPED,,polish,",
			"",
		}, "\n")

		tasks, err := file.DecodeBlueprint(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, domain.Task{Index: 0, Description: "outline", Status: domain.TaskDone, Result: "1. intro"}, tasks[0])
		assert.Equal(t, domain.Task{Index: 1, Description: "write the body", Status: domain.TaskPending}, tasks[1])
		assert.Equal(t, domain.TaskSkipped, tasks[2].Status)
	})

	t.Run("Reordered Columns", func(t *testing.T) {
		in := "description,status\nfirst,PENDING\nsecond,\n"
		tasks, err := file.DecodeBlueprint(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "second", tasks[1].Description)
		assert.Equal(t, domain.TaskPending, tasks[1].Status)
	})

	t.Run("Missing Description Column", func(t *testing.T) {
		_, err := file.DecodeBlueprint(strings.NewReader("index,status\n0,PENDING\n"))
		assert.Error(t, err)
	})

	t.Run("Unknown Status", func(t *testing.T) {
		_, err := file.DecodeBlueprint(strings.NewReader("description,status\nx,MAYBE\n"))
		assert.ErrorContains(t, err, "line 2")
	})
}
