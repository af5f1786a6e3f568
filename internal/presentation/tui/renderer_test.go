package tui

import (
	"testing"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestBlueprintMarkdown(t *testing.T) {
	state := domain.NewProjectState("poem", "write | a poem", time.Now())
	state.Stage = domain.StagePaused
	state.Blueprint = domain.NewBlueprint([]domain.TaskDraft{
		{Description: "outline"},
		{Description: "draft", Model: "fast"},
		{Description: "polish"},
	})
	state.Blueprint[0].Status = domain.TaskFailed
	state.Blueprint[0].Error = "timeout"
	state.Blueprint[2].Skip = true
	state.Cursor = 1

	md := BlueprintMarkdown(state)
	assert.Contains(t, md, "# poem")
	assert.Contains(t, md, `write \| a poem`)
	assert.Contains(t, md, "| 0 | FAILED |  | outline | timeout |")
	assert.Contains(t, md, "| 1 | ▶ PENDING | fast | draft |  |")
	assert.Contains(t, md, "| 2 | SKIPPED |  | polish |  |")
	assert.Contains(t, md, "**Progress:** 0 done, 1 failed, 0 skipped, 2 pending")
	assert.NotContains(t, md, "Awaiting review")

	state.Checkpoint = &domain.Checkpoint{Token: "tok-1"}
	assert.Contains(t, BlueprintMarkdown(state), "`tok-1`")
}

func TestBlueprintMarkdown_Empty(t *testing.T) {
	md := BlueprintMarkdown(domain.NewProjectState("p", "g", time.Now()))
	assert.Contains(t, md, "No blueprint yet")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
