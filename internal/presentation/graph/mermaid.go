package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/weaver/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a project blueprint.
// Tasks are chained in execution order between a goal node and an end node.
// Shapes follow the task kind:
// - Goal and end: ((Circle))
// - Task routed to a named model: [[Subroutine]]
// - Default: [Rectangle]
// Resolved tasks and the cursor are styled through class definitions.
func GenerateMermaid(state *domain.ProjectState) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    goal((\"%s\"))\n", label(state.Goal)))

	prev := "goal"
	for _, t := range state.Blueprint {
		id := fmt.Sprintf("t%d", t.Index)
		opener, closer := "[", "]"
		text := fmt.Sprintf("%d. %s", t.Index, label(t.Description))
		if t.Model != "" {
			opener, closer = "[[", "]]"
			text = fmt.Sprintf("%s <br/> %s", text, label(t.Model))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, text, closer))

		arrow := "-->"
		if t.Skip || t.Status == domain.TaskSkipped {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", prev, arrow, id))
		prev = id
	}
	sb.WriteString("    done((\"end\"))\n")
	sb.WriteString(fmt.Sprintf("    %s --> done\n", prev))

	sb.WriteString("\n    %% Status Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef done fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef skipped fill:#f4f4f5,stroke:#a1a1aa,stroke-dasharray:4,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	for _, t := range state.Blueprint {
		class := ""
		switch {
		case t.Status == domain.TaskDone:
			class = "done"
		case t.Status == domain.TaskFailed:
			class = "failed"
		case t.Status == domain.TaskSkipped || t.Skip:
			class = "skipped"
		case t.Index == state.Cursor && state.Stage != domain.StageCompleted:
			class = "current"
		}
		if class != "" {
			sb.WriteString(fmt.Sprintf("    class t%d %s;\n", t.Index, class))
		}
	}

	return sb.String()
}

// label escapes text for a quoted Mermaid label.
func label(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.Join(strings.Fields(s), " ")
}
