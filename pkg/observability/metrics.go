package observability

import (
	"context"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weaver"

// statusFatal labels a task that stopped the run without being resolved.
const statusFatal = "FATAL"

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	StageTransitions *prometheus.CounterVec
	Tasks            *prometheus.CounterVec
	TaskDuration     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StageTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_transitions_total",
				Help:      "Total number of project stage transitions.",
			},
			[]string{"from", "to"},
		),
		Tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Total number of executed tasks by outcome.",
			},
			[]string{"status", "model"},
		),
		TaskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Duration of task model calls.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"model"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.StageTransitions, m.Tasks, m.TaskDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageChange: func(_ context.Context, e *domain.StageEvent) {
			from := string(e.From)
			if from == "" {
				from = "NONE"
			}
			m.StageTransitions.WithLabelValues(from, string(e.To)).Inc()
		},
		OnTaskFinish: func(_ context.Context, e *domain.TaskEvent) {
			status := string(e.Status)
			if e.Err != nil && e.Status != domain.TaskFailed {
				status = statusFatal
			}
			model := modelLabel(e.Model)
			m.Tasks.WithLabelValues(status, model).Inc()
			m.TaskDuration.WithLabelValues(model).Observe(e.Duration.Seconds())
		},
	}
}

func modelLabel(model string) string {
	if model == "" {
		return "default"
	}
	return model
}
