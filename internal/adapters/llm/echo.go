package llm

import (
	"context"
	"fmt"
	"strings"
)

// EchoClient is an offline provider. Planner requests get a fixed three-step
// plan built from the goal; any other request gets its last line echoed back.
type EchoClient struct{}

func (EchoClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return ChatResponse{}, err
	}
	if len(req.Messages) == 0 {
		return ChatResponse{}, fmt.Errorf("llm chat requires at least one message")
	}
	last := req.Messages[len(req.Messages)-1].Content

	if goal, ok := strings.CutPrefix(firstLine(last), "Goal: "); ok {
		return ChatResponse{
			Content: fmt.Sprintf(`["Research: %[1]s", "Draft: %[1]s", "Review: %[1]s"]`,
				strings.ReplaceAll(goal, `"`, `'`)),
			FinishReason: "stop",
		}, nil
	}

	lines := strings.Split(strings.TrimSpace(last), "\n")
	return ChatResponse{Content: "[echo] " + lines[len(lines)-1], FinishReason: "stop"}, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
