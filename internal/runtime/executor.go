package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/google/uuid"
)

// Executor drives a blueprint task by task, persisting after every resolution.
type Executor struct {
	model    ports.TaskModel
	store    ports.StateStore
	reviewer ports.Reviewer
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithReviewer sets the human side of the checkpoint.
func WithReviewer(r ports.Reviewer) ExecutorOption {
	return func(e *Executor) { e.reviewer = r }
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) ExecutorOption {
	return func(e *Executor) { e.hooks = hooks }
}

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

// NewExecutor creates an executor writing through to store.
func NewExecutor(model ports.TaskModel, store ports.StateStore, opts ...ExecutorOption) *Executor {
	e := &Executor{
		model:  model,
		store:  store,
		logger: logging.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes pending tasks from the cursor.
//
// With HumanFeedback on a blueprint that was never reviewed and has not started,
// Run suspends instead: it issues a checkpoint token, presents the blueprint and
// returns a report with AwaitingReview set. Without HumanFeedback the checkpoint
// is bypassed.
func (e *Executor) Run(ctx context.Context, state *domain.ProjectState, opts ports.RunOptions) (*domain.ExecutionReport, error) {
	if err := domain.RequireStage(domain.OpRun, state.Stage); err != nil {
		return nil, err
	}
	if opts.Steps < 0 {
		return nil, domain.ErrInvalidSteps
	}
	report := e.newReport(state)

	if opts.HumanFeedback && state.Cursor == 0 && !state.Reviewed {
		return e.suspend(ctx, state, report)
	}
	return e.loop(ctx, state, opts.Steps, report)
}

// Resume continues past an outstanding checkpoint, applying the human's blueprint edits first.
func (e *Executor) Resume(ctx context.Context, state *domain.ProjectState, token string, opts ports.RunOptions) (*domain.ExecutionReport, error) {
	if err := domain.RequireStage(domain.OpResume, state.Stage); err != nil {
		return nil, err
	}
	if opts.Steps < 0 {
		return nil, domain.ErrInvalidSteps
	}
	if state.Checkpoint == nil || token == "" || token != state.Checkpoint.Token {
		return nil, domain.ErrInvalidResumeToken
	}
	if e.reviewer == nil {
		return nil, fmt.Errorf("cannot resume %q: no reviewer configured", state.Name)
	}

	edited, err := e.reviewer.Collect(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to collect reviewed blueprint: %w", err)
	}
	merged, err := domain.ApplyEdits(state.Blueprint, state.Cursor, edited)
	if err != nil {
		return nil, err
	}
	diff := domain.DiffBlueprint(state.Blueprint, merged)
	e.logger.Info("Blueprint reviewed", "project", state.Name, "changes", diff.String())

	state.Blueprint = merged
	return e.loop(ctx, state, opts.Steps, e.newReport(state))
}

func (e *Executor) newReport(state *domain.ProjectState) *domain.ExecutionReport {
	return &domain.ExecutionReport{
		RunID:   uuid.NewString(),
		Project: state.Name,
		Total:   len(state.Blueprint),
	}
}

func (e *Executor) suspend(ctx context.Context, state *domain.ProjectState, report *domain.ExecutionReport) (*domain.ExecutionReport, error) {
	if e.reviewer == nil {
		return nil, fmt.Errorf("cannot pause %q for review: no reviewer configured", state.Name)
	}
	// Re-running before resuming keeps the outstanding token and any edits in progress.
	if state.Checkpoint == nil {
		if err := e.reviewer.Present(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to present blueprint: %w", err)
		}
		state.Checkpoint = &domain.Checkpoint{Token: uuid.NewString(), IssuedAt: e.now()}
	}
	state.UpdatedAt = e.now()
	if err := e.store.Save(ctx, state.Name, state); err != nil {
		return nil, err
	}

	e.logger.Info("Awaiting human review", "project", state.Name, "tasks", len(state.Blueprint))
	report.AwaitingReview = true
	report.ResumeToken = state.Checkpoint.Token
	report.Stage = state.Stage
	report.Cursor = state.Cursor
	return report, nil
}

func (e *Executor) loop(ctx context.Context, state *domain.ProjectState, steps int, report *domain.ExecutionReport) (*domain.ExecutionReport, error) {
	state.Reviewed = true
	state.Checkpoint = nil
	if err := e.setStage(ctx, state, domain.StageRunning, report); err != nil {
		return nil, err
	}
	log := e.logger.With("project", state.Name, "run_id", report.RunID)

	attempted := 0
	for state.Cursor < len(state.Blueprint) {
		task := &state.Blueprint[state.Cursor]

		if task.Skip {
			task.Status = domain.TaskSkipped
			task.Skip = false
			state.Cursor++
			report.Skipped++
			if err := e.advance(ctx, state, report); err != nil {
				return e.finish(report, state), err
			}
			e.emitTaskFinish(ctx, state, report, task, 0, nil)
			continue
		}

		if steps > 0 && attempted >= steps {
			break
		}
		if err := ctx.Err(); err != nil {
			return e.interrupt(state, report, err)
		}

		e.emitTaskStart(ctx, state, report, task)
		started := time.Now()
		result, err := e.model.Complete(ctx, *task, TaskContext(state))
		elapsed := time.Since(started)
		attempted++

		if err != nil {
			if ctx.Err() != nil {
				return e.interrupt(state, report, ctx.Err())
			}
			uerr := domain.NewUpstreamError("task", err)
			if errors.Is(err, domain.ErrCapabilityUnavailable) {
				// The task was never sent; it stays PENDING for the next run.
				log.Warn("Task capability unavailable, pausing", "index", task.Index, "err", err)
				e.emitTaskFinish(ctx, state, report, task, elapsed, err)
				return e.interrupt(state, report, uerr)
			}
			if uerr.Fatal {
				log.Error("Fatal task failure", "index", task.Index, "err", err)
				report.Failures = append(report.Failures, domain.TaskFailure{Index: task.Index, Error: err.Error(), Fatal: true})
				e.emitTaskFinish(ctx, state, report, task, elapsed, err)
				if serr := e.setStage(ctx, state, domain.StageFailed, report); serr != nil {
					return e.finish(report, state), errors.Join(uerr, serr)
				}
				return e.finish(report, state), uerr
			}

			log.Warn("Task failed", "index", task.Index, "err", err)
			task.Status = domain.TaskFailed
			task.Error = err.Error()
			state.Cursor++
			report.Failed++
			report.Failures = append(report.Failures, domain.TaskFailure{Index: task.Index, Error: err.Error()})
		} else {
			task.Status = domain.TaskDone
			task.Result = result
			state.Cursor++
			report.Done++
		}

		// Write-ahead point: status and cursor land together.
		if err := e.advance(ctx, state, report); err != nil {
			return e.finish(report, state), err
		}
		e.emitTaskFinish(ctx, state, report, task, elapsed, err)
	}

	if state.Stage != domain.StageCompleted {
		next := domain.StagePaused
		if state.Cursor == len(state.Blueprint) {
			next = domain.StageCompleted
		}
		if err := e.setStage(ctx, state, next, report); err != nil {
			return e.finish(report, state), err
		}
	}
	log.Info("Run finished", "stage", state.Stage, "done", report.Done, "failed", report.Failed, "skipped", report.Skipped)
	return e.finish(report, state), nil
}

// interrupt records a cancelled run as PAUSED. The in-flight task is left untouched.
func (e *Executor) interrupt(state *domain.ProjectState, report *domain.ExecutionReport, cause error) (*domain.ExecutionReport, error) {
	if err := e.setStage(context.Background(), state, domain.StagePaused, report); err != nil {
		return e.finish(report, state), errors.Join(cause, err)
	}
	e.logger.Info("Run interrupted", "project", state.Name, "cursor", state.Cursor)
	return e.finish(report, state), cause
}

func (e *Executor) finish(report *domain.ExecutionReport, state *domain.ProjectState) *domain.ExecutionReport {
	report.Stage = state.Stage
	report.Cursor = state.Cursor
	report.Total = len(state.Blueprint)
	return report
}

func (e *Executor) setStage(ctx context.Context, state *domain.ProjectState, to domain.Stage, report *domain.ExecutionReport) error {
	Transition(ctx, e.hooks, state, to, report.RunID, e.now())
	return e.store.Save(ctx, state.Name, state)
}

// advance persists a resolved task. Resolving the last task completes the
// project in the same write, so no stored state has an exhausted cursor while RUNNING.
func (e *Executor) advance(ctx context.Context, state *domain.ProjectState, report *domain.ExecutionReport) error {
	if state.Cursor < len(state.Blueprint) {
		return e.save(ctx, state)
	}
	from := state.Stage
	state.Stage = domain.StageCompleted
	err := e.save(ctx, state)
	state.Stage = from
	if err != nil {
		return err
	}
	Transition(ctx, e.hooks, state, domain.StageCompleted, report.RunID, e.now())
	return nil
}

func (e *Executor) save(ctx context.Context, state *domain.ProjectState) error {
	state.UpdatedAt = e.now()
	// A task that resolved must be recorded even if the caller is cancelling.
	return e.store.Save(context.WithoutCancel(ctx), state.Name, state)
}

func (e *Executor) emitTaskStart(ctx context.Context, state *domain.ProjectState, report *domain.ExecutionReport, task *domain.Task) {
	if e.hooks.OnTaskStart == nil {
		return
	}
	e.hooks.OnTaskStart(ctx, &domain.TaskEvent{
		EventBase: e.eventBase(domain.EventTaskStart, state, report),
		Index:     task.Index,
		Model:     task.Model,
	})
}

func (e *Executor) emitTaskFinish(ctx context.Context, state *domain.ProjectState, report *domain.ExecutionReport, task *domain.Task, elapsed time.Duration, err error) {
	if e.hooks.OnTaskFinish == nil {
		return
	}
	e.hooks.OnTaskFinish(ctx, &domain.TaskEvent{
		EventBase: e.eventBase(domain.EventTaskFinish, state, report),
		Index:     task.Index,
		Model:     task.Model,
		Status:    task.Status,
		Duration:  elapsed,
		Err:       err,
	})
}

func (e *Executor) eventBase(t domain.EventType, state *domain.ProjectState, report *domain.ExecutionReport) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		Project:   state.Name,
		RunID:     report.RunID,
	}
}

// TaskContext is the context handed to a task model: corpus texts in ingestion
// order, then the results of DONE tasks before the cursor in index order.
func TaskContext(state *domain.ProjectState) []string {
	out := state.CorpusTexts()
	for _, t := range state.Blueprint[:state.Cursor] {
		if t.Status == domain.TaskDone {
			out = append(out, t.Result)
		}
	}
	return out
}
