package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProjectNotFound is returned when a project name cannot be found in the store.
var ErrProjectNotFound = errors.New("project not found")

// ErrAuthentication marks a capability failure that no later task can recover from.
var ErrAuthentication = errors.New("authentication failed")

// ErrCapabilityUnavailable marks a capability that is refusing calls for now,
// such as one behind an open circuit breaker. The task was not attempted.
var ErrCapabilityUnavailable = errors.New("capability temporarily unavailable")

// ErrInvalidSteps is returned when a run is given a negative step budget.
var ErrInvalidSteps = errors.New("steps must not be negative")

// ErrEmptyGoal is returned when a project is initialized without a goal.
var ErrEmptyGoal = errors.New("goal must not be empty")

// ErrInvalidResumeToken is returned when a resume token does not match the outstanding checkpoint.
var ErrInvalidResumeToken = errors.New("invalid resume token")

// InvalidStageError is returned when an operation is not legal in the project's current stage.
type InvalidStageError struct {
	Operation Operation
	Current   Stage
	Required  []Stage
}

func (e *InvalidStageError) Error() string {
	req := make([]string, len(e.Required))
	for i, s := range e.Required {
		req[i] = string(s)
	}
	if len(req) == 0 {
		return fmt.Sprintf("cannot %s: project is %s", e.Operation, e.Current)
	}
	return fmt.Sprintf("cannot %s: project is %s, requires one of %s", e.Operation, e.Current, strings.Join(req, "|"))
}

// UpstreamError wraps a failure of an external LLM capability.
type UpstreamError struct {
	Capability string
	Fatal      bool
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s capability failed: %v", e.Capability, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError wraps err, classifying it as fatal when it carries ErrAuthentication.
func NewUpstreamError(capability string, err error) *UpstreamError {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue
	}
	return &UpstreamError{
		Capability: capability,
		Fatal:      errors.Is(err, ErrAuthentication),
		Err:        err,
	}
}

// IsFatal reports whether err must stop a run immediately.
func IsFatal(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Fatal
	}
	return errors.Is(err, ErrAuthentication)
}

// CorruptStateError is returned when persisted state cannot be read back consistently.
type CorruptStateError struct {
	Project string
	Err     error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("project %q has corrupt state: %v", e.Project, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// ConcurrentRunError is returned when another operation holds the project lock.
type ConcurrentRunError struct {
	Project string
}

func (e *ConcurrentRunError) Error() string {
	return fmt.Sprintf("project %q is locked by another run, retry later", e.Project)
}

// DuplicateSourceError is returned when one ingest call names the same source twice.
type DuplicateSourceError struct {
	SourceID string
}

func (e *DuplicateSourceError) Error() string {
	return fmt.Sprintf("duplicate source %q in a single ingest", e.SourceID)
}

// SourceUnavailableError is returned when a source cannot be read.
type SourceUnavailableError struct {
	Locator string
	Err     error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.Locator, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// AlreadyExistsError is returned when initializing a project name that is already persisted.
type AlreadyExistsError struct {
	Project string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("project %q already exists", e.Project)
}

// PlanningError is returned when the orchestrator response yields no usable task.
type PlanningError struct {
	Reason string
}

func (e *PlanningError) Error() string {
	return "planning failed: " + e.Reason
}

// InvalidNameError is returned for project names that cannot be used as directory names.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid project name %q", e.Name)
}

// BlueprintEditError is returned when a human edit breaks blueprint rules.
type BlueprintEditError struct {
	Index  int
	Reason string
}

func (e *BlueprintEditError) Error() string {
	return fmt.Sprintf("blueprint edit rejected at task %d: %s", e.Index, e.Reason)
}

type invariantError struct {
	msg string
}

func (e *invariantError) Error() string { return "invariant violated: " + e.msg }

func errInvariant(format string, args ...any) error {
	return &invariantError{msg: fmt.Sprintf(format, args...)}
}
