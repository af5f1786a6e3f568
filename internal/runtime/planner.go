package runtime

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
)

// Planner turns a goal and corpus into a blueprint with one orchestrator call.
type Planner struct {
	orchestrator ports.Orchestrator
	logger       *slog.Logger
}

// NewPlanner creates a planner. A nil logger is replaced by a no-op logger.
func NewPlanner(orchestrator ports.Orchestrator, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Planner{orchestrator: orchestrator, logger: logger}
}

// Plan asks the orchestrator exactly once. Failures are not retried.
func (p *Planner) Plan(ctx context.Context, goal string, corpus []string) ([]domain.Task, error) {
	if p.orchestrator == nil {
		return nil, domain.NewUpstreamError("orchestrator", errNoCapability)
	}

	drafts, err := p.orchestrator.Complete(ctx, goal, corpus)
	var perr *domain.PlanningError
	if errors.As(err, &perr) {
		return nil, err
	}
	if err != nil {
		return nil, domain.NewUpstreamError("orchestrator", err)
	}

	tasks := domain.NewBlueprint(drafts)
	if len(tasks) == 0 {
		return nil, &domain.PlanningError{Reason: "orchestrator returned no usable task"}
	}
	p.logger.Debug("Blueprint planned", "tasks", len(tasks), "drafts", len(drafts))
	return tasks, nil
}
