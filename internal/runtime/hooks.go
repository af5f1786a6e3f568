package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
)

var errNoCapability = errors.New("capability not configured")

// Transition moves state to a new stage and fires OnStageChange when it differs.
// It does not persist.
func Transition(ctx context.Context, hooks domain.LifecycleHooks, state *domain.ProjectState, to domain.Stage, runID string, now time.Time) {
	from := state.Stage
	state.Stage = to
	state.UpdatedAt = now
	if from == to || hooks.OnStageChange == nil {
		return
	}
	hooks.OnStageChange(ctx, &domain.StageEvent{
		EventBase: domain.EventBase{
			Timestamp: now,
			Type:      domain.EventStageChange,
			Project:   state.Name,
			RunID:     runID,
		},
		From: from,
		To:   to,
	})
}
