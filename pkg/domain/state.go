package domain

import (
	"regexp"
	"time"
)

// Stage is the lifecycle position of a project.
type Stage string

const (
	StageCreated   Stage = "CREATED"
	StageIngested  Stage = "INGESTED"
	StagePlanned   Stage = "PLANNED"
	StageRunning   Stage = "RUNNING"
	StagePaused    Stage = "PAUSED"
	StageCompleted Stage = "COMPLETED"
	StageFailed    Stage = "FAILED"
)

// HasBlueprint reports whether a project in this stage must carry a non-empty blueprint.
func (s Stage) HasBlueprint() bool {
	switch s {
	case StagePlanned, StageRunning, StagePaused, StageCompleted:
		return true
	}
	return false
}

// CorpusEntry is one piece of ingested source content.
type CorpusEntry struct {
	SourceID   string    `json:"source_id"`
	Text       string    `json:"text"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Checkpoint is an outstanding human review suspension.
// The Token must be presented back to resume execution.
type Checkpoint struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// ProjectState represents the persisted snapshot of a project.
type ProjectState struct {
	Name  string `json:"name"`
	Goal  string `json:"goal"`
	Stage Stage  `json:"stage"`

	Corpus    []CorpusEntry `json:"corpus"`
	Blueprint []Task        `json:"blueprint"`

	// Cursor is the index of the next task to execute.
	Cursor int `json:"cursor"`

	// Reviewed is set once the human checkpoint for the current blueprint was passed or bypassed.
	Reviewed   bool        `json:"reviewed"`
	Checkpoint *Checkpoint `json:"checkpoint,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks that a project name is usable as a directory name and storage key.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return &InvalidNameError{Name: name}
	}
	return nil
}

// NewProjectState creates a clean project in the CREATED stage.
func NewProjectState(name, goal string, now time.Time) *ProjectState {
	return &ProjectState{
		Name:      name,
		Goal:      goal,
		Stage:     StageCreated,
		Corpus:    []CorpusEntry{},
		Blueprint: []Task{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a deep copy of the state.
func (s *ProjectState) Snapshot() *ProjectState {
	if s == nil {
		return nil
	}
	out := *s
	out.Corpus = append([]CorpusEntry{}, s.Corpus...)
	out.Blueprint = append([]Task{}, s.Blueprint...)
	if s.Checkpoint != nil {
		cp := *s.Checkpoint
		out.Checkpoint = &cp
	}
	return &out
}

// CorpusTexts returns the text of every corpus entry in ingestion order.
func (s *ProjectState) CorpusTexts() []string {
	texts := make([]string, 0, len(s.Corpus))
	for _, e := range s.Corpus {
		texts = append(texts, e.Text)
	}
	return texts
}

// Validate checks the structural invariants of a loaded state.
// A state that fails validation must not be resumed from.
func (s *ProjectState) Validate() error {
	if s.Name == "" {
		return errInvariant("missing project name")
	}
	switch s.Stage {
	case StageCreated, StageIngested, StagePlanned, StageRunning, StagePaused, StageCompleted, StageFailed:
	default:
		return errInvariant("unknown stage %q", s.Stage)
	}
	if s.Stage.HasBlueprint() && len(s.Blueprint) == 0 {
		return errInvariant("stage %s requires a blueprint", s.Stage)
	}
	if !s.Stage.HasBlueprint() && s.Stage != StageFailed && len(s.Blueprint) > 0 {
		return errInvariant("stage %s must not carry a blueprint", s.Stage)
	}
	if s.Cursor < 0 || s.Cursor > len(s.Blueprint) {
		return errInvariant("cursor %d out of range [0,%d]", s.Cursor, len(s.Blueprint))
	}
	if len(s.Blueprint) > 0 && s.Cursor == len(s.Blueprint) && s.Stage != StageCompleted {
		return errInvariant("exhausted blueprint in stage %s", s.Stage)
	}
	return ValidateBlueprint(s.Blueprint, s.Cursor)
}
