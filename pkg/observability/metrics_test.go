package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStageChange(ctx, &domain.StageEvent{To: domain.StageCreated})
	hooks.OnStageChange(ctx, &domain.StageEvent{From: domain.StagePlanned, To: domain.StageRunning})

	hooks.OnTaskFinish(ctx, &domain.TaskEvent{Status: domain.TaskDone, Duration: time.Second})
	hooks.OnTaskFinish(ctx, &domain.TaskEvent{Status: domain.TaskFailed, Model: "fast", Err: errors.New("timeout")})
	hooks.OnTaskFinish(ctx, &domain.TaskEvent{Status: domain.TaskPending, Err: domain.ErrAuthentication})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTransitions.WithLabelValues("NONE", "CREATED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTransitions.WithLabelValues("PLANNED", "RUNNING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tasks.WithLabelValues("DONE", "default")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tasks.WithLabelValues("FAILED", "fast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tasks.WithLabelValues("FATAL", "default")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.TaskDuration))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestNewMetrics_Unregistered(t *testing.T) {
	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Hooks().OnTaskFinish)
}
