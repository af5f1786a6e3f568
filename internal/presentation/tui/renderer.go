package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// maxCell truncates long results in the blueprint table.
const maxCell = 80

// NewRenderer returns a function that renders markdown using glamour.
// It falls back to the raw markdown when no terminal renderer can be built.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// BlueprintMarkdown describes a project and its blueprint as a markdown document.
func BlueprintMarkdown(state *domain.ProjectState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", state.Name)
	fmt.Fprintf(&sb, "**Goal:** %s\n\n", escape(state.Goal))
	fmt.Fprintf(&sb, "**Stage:** `%s` | **Corpus:** %d source(s) | **Cursor:** %d/%d\n\n",
		state.Stage, len(state.Corpus), state.Cursor, len(state.Blueprint))

	if len(state.Blueprint) == 0 {
		sb.WriteString("_No blueprint yet._\n")
		return sb.String()
	}

	sb.WriteString("| # | Status | Model | Task | Result |\n")
	sb.WriteString("|---|--------|-------|------|--------|\n")
	for _, t := range state.Blueprint {
		status := string(t.Status)
		if t.Skip && t.Status == domain.TaskPending {
			status = string(domain.TaskSkipped)
		}
		if t.Index == state.Cursor && !t.Status.Resolved() {
			status = "▶ " + status
		}
		result := t.Result
		if t.Status == domain.TaskFailed {
			result = t.Error
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n",
			t.Index, status, escape(t.Model), escape(t.Description), escape(truncate(result, maxCell)))
	}

	counts := domain.Counts(state.Blueprint)
	fmt.Fprintf(&sb, "\n**Progress:** %d done, %d failed, %d skipped, %d pending\n",
		counts[domain.TaskDone], counts[domain.TaskFailed], counts[domain.TaskSkipped], counts[domain.TaskPending])

	if state.Checkpoint != nil {
		sb.WriteString("\n> Awaiting review. Edit `blueprint.csv` then resume with the token `")
		sb.WriteString(state.Checkpoint.Token)
		sb.WriteString("`.\n")
	}
	return sb.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
