package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/weaver/internal/adapters/file"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunStateStoreContract(t, store)
}

func plannedState(name string) *domain.ProjectState {
	state := domain.NewProjectState(name, "summarise the notes", time.Now().UTC())
	state.Stage = domain.StagePlanned
	state.Blueprint = domain.NewBlueprint([]domain.TaskDraft{
		{Description: "read, then outline"},
		{Description: "write \"summary\"", Model: "writer"},
	})
	return state
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "notes", plannedState("notes")))

	assert.FileExists(t, filepath.Join(dir, "notes", "project.json"))
	csvData, err := os.ReadFile(filepath.Join(dir, "notes", "blueprint.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "index,status,model,description,result", lines[0])
	assert.Equal(t, `0,PENDING,,"read, then outline",`, lines[1])

	entries, err := os.ReadDir(filepath.Join(dir, "notes"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	t.Run("Truncated JSON", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken", "project.json"), []byte(`{"name": "bro`), 0644))

		_, err := store.Load(ctx, "broken")
		var corrupt *domain.CorruptStateError
		require.ErrorAs(t, err, &corrupt)
		assert.Equal(t, "broken", corrupt.Project)
	})

	t.Run("Broken Invariant", func(t *testing.T) {
		state := plannedState("cursor")
		require.NoError(t, store.Save(ctx, "cursor", state))

		path := filepath.Join(dir, "cursor", "project.json")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		data = []byte(strings.Replace(string(data), `"cursor": 0`, `"cursor": 7`, 1))
		require.NoError(t, os.WriteFile(path, data, 0644))

		_, err = store.Load(ctx, "cursor")
		var corrupt *domain.CorruptStateError
		assert.ErrorAs(t, err, &corrupt)
	})
}

func TestFileStore_InvalidName(t *testing.T) {
	store := file.New(t.TempDir())
	err := store.Save(context.Background(), "../escape", plannedState("../escape"))
	var invalid *domain.InvalidNameError
	assert.ErrorAs(t, err, &invalid)
}

func TestFileStore_ListIgnoresStrayDirs(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "not-a-project"), 0755))
	require.NoError(t, store.Save(ctx, "real", plannedState("real")))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"real"}, names)
}

func TestFileStore_ListMissingBase(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFileStore_KeepsEditsDuringReview(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	state := plannedState("review")
	require.NoError(t, store.Save(ctx, "review", state))

	csvPath := filepath.Join(dir, "review", "blueprint.csv")
	edited := []byte("description,status\nonly this,PENDING\n")
	require.NoError(t, os.WriteFile(csvPath, edited, 0644))

	state.Checkpoint = &domain.Checkpoint{Token: "t", IssuedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, "review", state))

	got, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, edited, got)
}
