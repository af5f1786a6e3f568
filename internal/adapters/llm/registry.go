package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/aretw0/weaver/internal/config"
	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/internal/resilience"
	"github.com/aretw0/weaver/pkg/domain"
)

// Registry routes each task to the capability named by its model field,
// falling back to the "task" capability. It implements ports.TaskModel.
type Registry struct {
	orchestrator *Orchestrator
	models       map[string]*TaskModel
	logger       *slog.Logger
}

// Option configures registry construction.
type Option func(*options)

type options struct {
	getenv  func(string) string
	clients map[string]Client
	logger  *slog.Logger
}

// WithGetenv overrides how API keys are looked up.
func WithGetenv(getenv func(string) string) Option {
	return func(o *options) { o.getenv = getenv }
}

// WithClient replaces the transport for one capability.
func WithClient(name string, c Client) Option {
	return func(o *options) { o.clients[name] = c }
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewRegistry builds every configured capability. Each one gets its own breaker.
func NewRegistry(cfg *config.Config, opts ...Option) (*Registry, error) {
	o := &options{getenv: os.Getenv, clients: map[string]Client{}, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{models: map[string]*TaskModel{}, logger: o.logger}
	for name, c := range cfg.Capabilities {
		client, ok := o.clients[name]
		if !ok {
			switch c.Provider {
			case config.ProviderEcho:
				client = EchoClient{}
			case config.ProviderOpenAI, config.ProviderLiteLLM, config.ProviderLMStudio:
				client = NewHTTPClient(c, o.getenv)
			default:
				return nil, fmt.Errorf("capability %s: unknown provider %q", name, c.Provider)
			}
		}
		capab := capability{
			name:    name,
			client:  client,
			model:   c.Model,
			params:  c.Params,
			breaker: resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout),
		}
		if name == config.CapabilityOrchestrator {
			r.orchestrator = &Orchestrator{capability: capab}
			continue
		}
		r.models[name] = &TaskModel{capability: capab}
	}

	if r.orchestrator == nil {
		return nil, fmt.Errorf("capability %s is not configured", config.CapabilityOrchestrator)
	}
	if _, ok := r.models[config.CapabilityTask]; !ok {
		return nil, fmt.Errorf("capability %s is not configured", config.CapabilityTask)
	}
	return r, nil
}

// Orchestrator returns the planning capability.
func (r *Registry) Orchestrator() *Orchestrator {
	return r.orchestrator
}

// Names lists the task capabilities a blueprint may reference.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Complete(ctx context.Context, task domain.Task, context []string) (string, error) {
	model, ok := r.models[task.Model]
	if !ok {
		if task.Model != "" {
			r.logger.Warn("Unknown task model, using default", "model", task.Model, "index", task.Index)
		}
		model = r.models[config.CapabilityTask]
	}
	return model.Complete(ctx, task, context)
}
