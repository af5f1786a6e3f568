package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewProjectState(name, "write a poem", time.Now().UTC())
		state.Stage = domain.StagePaused
		state.Corpus = []domain.CorpusEntry{{SourceID: "style.txt", Text: "terse"}}
		state.Blueprint = domain.NewBlueprint([]domain.TaskDraft{
			{Description: "outline"},
			{Description: "draft", Model: "fast"},
		})
		state.Blueprint[0].Status = domain.TaskDone
		state.Blueprint[0].Result = "an outline"
		state.Cursor = 1
		state.Reviewed = true

		require.NoError(t, store.Save(ctx, name, state), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Goal, loaded.Goal)
		assert.Equal(t, state.Stage, loaded.Stage)
		assert.Equal(t, state.Cursor, loaded.Cursor)
		assert.True(t, loaded.Reviewed)
		require.Len(t, loaded.Corpus, 1)
		assert.Equal(t, "terse", loaded.Corpus[0].Text)
		require.Len(t, loaded.Blueprint, 2)
		assert.Equal(t, state.Blueprint[0], loaded.Blueprint[0])
		assert.Equal(t, "fast", loaded.Blueprint[1].Model)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		state, err := store.Load(ctx, name)
		require.NoError(t, err)
		state.Cursor = 2
		state.Blueprint[1].Status = domain.TaskFailed
		state.Blueprint[1].Error = "boom"
		state.Stage = domain.StageCompleted
		require.NoError(t, store.Save(ctx, name, state))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, domain.StageCompleted, loaded.Stage)
		assert.Equal(t, "boom", loaded.Blueprint[1].Error)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		a, err := store.Load(ctx, name)
		require.NoError(t, err)
		a.Blueprint[0].Result = "mutated"

		b, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", b.Blueprint[0].Result, "loaded state must not alias stored state")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+name)
		assert.True(t, errors.Is(err, domain.ErrProjectNotFound), "got %v", err)
	})

	t.Run("List", func(t *testing.T) {
		other := name + "-2"
		require.NoError(t, store.Save(ctx, other, domain.NewProjectState(other, "g", time.Now().UTC())))

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, name)
		assert.Contains(t, names, other)
	})

	t.Run("Names Shadowing Store Internals", func(t *testing.T) {
		for _, n := range []string{"index", "lock"} {
			require.NoError(t, store.Save(ctx, n, domain.NewProjectState(n, "g", time.Now().UTC())), "save %q", n)
		}

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "index")
		assert.Contains(t, names, "lock")
		assert.Contains(t, names, name)

		loaded, err := store.Load(ctx, "index")
		require.NoError(t, err)
		assert.Equal(t, "index", loaded.Name)
	})
}
