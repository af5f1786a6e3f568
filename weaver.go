package weaver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/weaver/internal/runtime"
	"github.com/aretw0/weaver/pkg/adapters/memory"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/aretw0/weaver/pkg/session"
)

// Engine is the high-level entry point for the weaver library.
// It owns the project lifecycle and writes every mutation through to the StateStore
// before returning.
type Engine struct {
	store        ports.StateStore
	locker       ports.Locker
	lockTTL      time.Duration
	orchestrator ports.Orchestrator
	model        ports.TaskModel
	source       ports.CorpusSource
	reviewer     ports.Reviewer
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time

	sessions *session.Manager
	planner  *runtime.Planner
	executor *runtime.Executor
}

var _ ports.ProjectEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the persistence backend. Defaults to an in-memory store.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables cross-process locking of projects.
func WithLocker(locker ports.Locker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL sets the lease requested from the Locker.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithOrchestrator sets the planning capability.
func WithOrchestrator(o ports.Orchestrator) Option {
	return func(e *Engine) {
		e.orchestrator = o
	}
}

// WithTaskModel sets the task execution capability.
func WithTaskModel(m ports.TaskModel) Option {
	return func(e *Engine) {
		e.model = m
	}
}

// WithSource sets the reader used by Ingest to resolve locators.
func WithSource(s ports.CorpusSource) Option {
	return func(e *Engine) {
		e.source = s
	}
}

// WithReviewer sets the human side of the checkpoint.
func WithReviewer(r ports.Reviewer) Option {
	return func(e *Engine) {
		e.reviewer = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.now == nil {
		eng.now = func() time.Time { return time.Now().UTC() }
	}
	if eng.model == nil {
		eng.model = ports.TaskModelFunc(func(context.Context, domain.Task, []string) (string, error) {
			return "", errors.New("no task model configured")
		})
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger), session.WithLockTTL(eng.lockTTL)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(sessionOpts...)
	eng.planner = runtime.NewPlanner(eng.orchestrator, eng.logger)

	execOpts := []runtime.ExecutorOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithClock(eng.now),
	}
	if eng.reviewer != nil {
		execOpts = append(execOpts, runtime.WithReviewer(eng.reviewer))
	}
	eng.executor = runtime.NewExecutor(eng.model, eng.store, execOpts...)

	return eng, nil
}

// Initialize creates a project in the CREATED stage.
func (e *Engine) Initialize(ctx context.Context, name, goal string) (*domain.ProjectState, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, domain.ErrEmptyGoal
	}

	var state *domain.ProjectState
	err := e.sessions.WithLock(ctx, name, func(ctx context.Context) error {
		_, err := e.store.Load(ctx, name)
		if err == nil {
			return &domain.AlreadyExistsError{Project: name}
		}
		if !errors.Is(err, domain.ErrProjectNotFound) {
			return err
		}

		now := e.now()
		state = domain.NewProjectState(name, goal, now)
		state.Stage = ""
		runtime.Transition(ctx, e.hooks, state, domain.StageCreated, "", now)
		return e.store.Save(ctx, name, state)
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("Project initialized", "project", name)
	return state, nil
}

// Ingest reads every locator through the CorpusSource and appends the results to the corpus.
// Nothing is persisted unless every source was read.
func (e *Engine) Ingest(ctx context.Context, name string, locators []string) (*domain.ProjectState, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if e.source == nil {
		return nil, fmt.Errorf("cannot ingest into %q: no source reader configured", name)
	}

	// Duplicates are rejected before any source is touched.
	seen := make(map[string]struct{}, len(locators))
	for _, loc := range locators {
		if _, dup := seen[loc]; dup {
			return nil, &domain.DuplicateSourceError{SourceID: loc}
		}
		seen[loc] = struct{}{}
	}

	var state *domain.ProjectState
	err := e.sessions.WithLock(ctx, name, func(ctx context.Context) error {
		var err error
		state, err = e.load(ctx, name, domain.OpIngest)
		if err != nil {
			return err
		}

		entries := make([]domain.CorpusEntry, 0, len(locators))
		for _, loc := range locators {
			text, err := e.source.Read(ctx, loc)
			if err != nil {
				var unavailable *domain.SourceUnavailableError
				if !errors.As(err, &unavailable) {
					err = &domain.SourceUnavailableError{Locator: loc, Err: err}
				}
				return err
			}
			entries = append(entries, domain.CorpusEntry{SourceID: loc, Text: text, IngestedAt: e.now()})
		}
		return e.ingest(ctx, state, entries)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// IngestEntries appends already-decoded content to the corpus.
func (e *Engine) IngestEntries(ctx context.Context, name string, entries []domain.CorpusEntry) (*domain.ProjectState, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	var state *domain.ProjectState
	err := e.sessions.WithLock(ctx, name, func(ctx context.Context) error {
		var err error
		state, err = e.load(ctx, name, domain.OpIngest)
		if err != nil {
			return err
		}
		stamped := make([]domain.CorpusEntry, len(entries))
		for i, entry := range entries {
			if entry.IngestedAt.IsZero() {
				entry.IngestedAt = e.now()
			}
			stamped[i] = entry
		}
		return e.ingest(ctx, state, stamped)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (e *Engine) ingest(ctx context.Context, state *domain.ProjectState, entries []domain.CorpusEntry) error {
	corpus, err := runtime.AppendCorpus(state.Corpus, entries)
	if err != nil {
		return err
	}
	state.Corpus = corpus

	if state.Stage == domain.StagePlanned {
		// The blueprint was derived from the old corpus; re-planning is explicit.
		e.logger.Info("Discarding blueprint after re-ingest", "project", state.Name, "tasks", len(state.Blueprint))
		resetPlan(state, []domain.Task{})
	}
	runtime.Transition(ctx, e.hooks, state, domain.StageIngested, "", e.now())
	if err := e.store.Save(ctx, state.Name, state); err != nil {
		return err
	}
	e.logger.Info("Corpus ingested", "project", state.Name, "added", len(entries), "total", len(state.Corpus))
	return nil
}

// Plan asks the orchestrator for a blueprint, replacing any previous one.
func (e *Engine) Plan(ctx context.Context, name string) (*domain.ProjectState, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	var state *domain.ProjectState
	err := e.sessions.WithLock(ctx, name, func(ctx context.Context) error {
		var err error
		state, err = e.load(ctx, name, domain.OpPlan)
		if err != nil {
			return err
		}

		tasks, err := e.planner.Plan(ctx, state.Goal, state.CorpusTexts())
		if err != nil {
			return err
		}
		resetPlan(state, tasks)
		runtime.Transition(ctx, e.hooks, state, domain.StagePlanned, "", e.now())
		return e.store.Save(ctx, name, state)
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("Project planned", "project", name, "tasks", len(state.Blueprint))
	return state, nil
}

// Run executes the blueprint from the cursor.
// On error the returned report, when non-nil, describes the progress that was persisted.
func (e *Engine) Run(ctx context.Context, name string, opts ports.RunOptions) (*domain.ExecutionReport, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	var report *domain.ExecutionReport
	err := e.sessions.WithLock(ctx, name, func(ctx context.Context) error {
		state, err := e.load(ctx, name, domain.OpRun)
		if err != nil {
			return err
		}
		report, err = e.executor.Run(ctx, state, opts)
		return err
	})
	return report, err
}

// Resume continues a run suspended at the human checkpoint.
func (e *Engine) Resume(ctx context.Context, name, token string, opts ports.RunOptions) (*domain.ExecutionReport, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	var report *domain.ExecutionReport
	err := e.sessions.WithLock(ctx, name, func(ctx context.Context) error {
		state, err := e.load(ctx, name, domain.OpResume)
		if err != nil {
			return err
		}
		report, err = e.executor.Resume(ctx, state, token, opts)
		return err
	})
	return report, err
}

// Status loads the persisted state without taking the project lock.
func (e *Engine) Status(ctx context.Context, name string) (*domain.ProjectState, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	return e.store.Load(ctx, name)
}

// List returns the names of all persisted projects.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.store.List(ctx)
}

// load expects a name that already passed domain.ValidateName.
func (e *Engine) load(ctx context.Context, name string, op domain.Operation) (*domain.ProjectState, error) {
	state, err := e.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireStage(op, state.Stage); err != nil {
		return nil, err
	}
	return state, nil
}

func resetPlan(state *domain.ProjectState, tasks []domain.Task) {
	state.Blueprint = tasks
	state.Cursor = 0
	state.Reviewed = false
	state.Checkpoint = nil
}
