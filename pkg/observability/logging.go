package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/weaver/pkg/domain"
)

// LoggingHooks logs stage changes at info level and task events at debug level.
// Failed tasks are logged as warnings.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageChange: func(ctx context.Context, e *domain.StageEvent) {
			logger.InfoContext(ctx, "stage changed",
				"project", e.Project,
				"run_id", e.RunID,
				"from", e.From,
				"to", e.To,
			)
		},
		OnTaskStart: func(ctx context.Context, e *domain.TaskEvent) {
			logger.DebugContext(ctx, "task started",
				"project", e.Project,
				"run_id", e.RunID,
				"index", e.Index,
				"model", e.Model,
			)
		},
		OnTaskFinish: func(ctx context.Context, e *domain.TaskEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "task failed",
					"project", e.Project,
					"run_id", e.RunID,
					"index", e.Index,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "task finished",
				"project", e.Project,
				"run_id", e.RunID,
				"index", e.Index,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
	}
}
