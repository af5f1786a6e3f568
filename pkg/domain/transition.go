package domain

// Operation is a lifecycle command applied to a project.
type Operation string

const (
	OpInitialize Operation = "initialize"
	OpIngest     Operation = "ingest"
	OpPlan       Operation = "plan"
	OpRun        Operation = "run"
	OpResume     Operation = "resume"
)

// transitions lists, per operation, the stages it may be invoked from.
// RUNNING is a valid source for run only after a crash: a live run holds the project lock.
var transitions = map[Operation][]Stage{
	OpIngest: {StageCreated, StageIngested, StagePlanned},
	OpPlan:   {StageCreated, StageIngested, StagePlanned},
	OpRun:    {StagePlanned, StageRunning, StagePaused},
	OpResume: {StagePlanned},
}

// AllowedFrom returns the stages an operation may be invoked from.
func AllowedFrom(op Operation) []Stage {
	return append([]Stage(nil), transitions[op]...)
}

// RequireStage returns an InvalidStageError if op is not legal in the current stage.
func RequireStage(op Operation, current Stage) error {
	for _, s := range transitions[op] {
		if s == current {
			return nil
		}
	}
	return &InvalidStageError{
		Operation: op,
		Current:   current,
		Required:  AllowedFrom(op),
	}
}
