package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/aretw0/weaver/pkg/domain"
)

var (
	fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	itemPattern  = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+(.+)$`)
)

// ParseTasks extracts task drafts from an orchestrator reply.
// It accepts a JSON array of strings or of {"description","model"} objects,
// optionally inside a code fence, and falls back to a numbered or bulleted list.
func ParseTasks(content string) ([]domain.TaskDraft, error) {
	body := strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(body); m != nil {
		body = strings.TrimSpace(m[1])
	}

	if start := strings.Index(body, "["); start >= 0 {
		if end := strings.LastIndex(body, "]"); end > start {
			if drafts, err := parseJSON(body[start : end+1]); err == nil {
				return drafts, nil
			}
		}
	}

	drafts := []domain.TaskDraft{}
	for _, line := range strings.Split(body, "\n") {
		if m := itemPattern.FindStringSubmatch(line); m != nil {
			drafts = append(drafts, domain.TaskDraft{Description: strings.TrimSpace(m[1])})
		}
	}
	if len(drafts) == 0 {
		return nil, &domain.PlanningError{Reason: "no task list found in orchestrator reply"}
	}
	return drafts, nil
}

func parseJSON(raw string) ([]domain.TaskDraft, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	drafts := make([]domain.TaskDraft, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			drafts = append(drafts, domain.TaskDraft{Description: s})
			continue
		}
		var d domain.TaskDraft
		if err := json.Unmarshal(item, &d); err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
