package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/weaver/internal/config"
	"github.com/aretw0/weaver/internal/resilience"
	"github.com/aretw0/weaver/pkg/domain"
)

const plannerPrompt = `You are the orchestrator of a multi-step writing and research workflow.
Break the goal into an ordered list of small, self-contained tasks.
Reply with a JSON array only. Each element is either a string or an object
{"description": "...", "model": "..."} where model is optional.`

const taskPrompt = `You are executing one task of a larger plan.
Use the provided context, which holds the source material followed by the
results of earlier tasks. Reply with the task result only.`

// capability wraps a Client with the model parameters and breaker of one configured capability.
type capability struct {
	name    string
	client  Client
	model   string
	params  config.Parameters
	breaker *resilience.Breaker
}

func (c *capability) chat(ctx context.Context, messages []Message) (string, error) {
	req := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.params.Temperature,
		TopP:        c.params.TopP,
		MaxTokens:   c.params.MaxTokens,
	}
	var resp ChatResponse
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.client.Chat(ctx, req)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", fmt.Errorf("%s: %w: %w", c.name, domain.ErrCapabilityUnavailable, err)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	return resp.Content, nil
}

func (c *capability) system(fallback string) Message {
	if c.params.System != "" {
		return Message{Role: "system", Content: c.params.System}
	}
	return Message{Role: "system", Content: fallback}
}

// Orchestrator implements ports.Orchestrator over a chat capability.
type Orchestrator struct {
	capability
}

func (o *Orchestrator) Complete(ctx context.Context, goal string, corpus []string) ([]domain.TaskDraft, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", goal)
	for i, text := range corpus {
		fmt.Fprintf(&b, "\n--- Source %d ---\n%s\n", i+1, text)
	}

	content, err := o.chat(ctx, []Message{o.system(plannerPrompt), {Role: "user", Content: b.String()}})
	if err != nil {
		return nil, err
	}
	return ParseTasks(content)
}

// TaskModel implements ports.TaskModel over a chat capability.
type TaskModel struct {
	capability
}

func (m *TaskModel) Complete(ctx context.Context, task domain.Task, context []string) (string, error) {
	var b strings.Builder
	for i, text := range context {
		fmt.Fprintf(&b, "--- Context %d ---\n%s\n\n", i+1, text)
	}
	fmt.Fprintf(&b, "Task %d: %s\n", task.Index+1, task.Description)

	return m.chat(ctx, []Message{m.system(taskPrompt), {Role: "user", Content: b.String()}})
}
