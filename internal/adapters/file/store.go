package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/weaver/pkg/domain"
)

const (
	stateFile     = "project.json"
	blueprintFile = "blueprint.csv"
	lockFile      = ".lock"
)

// Store implements ports.StateStore using the local filesystem.
// Each project lives in its own directory holding project.json and a blueprint.csv mirror.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to the working directory.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = "."
	}
	return &Store{BasePath: basePath}
}

// ProjectDir returns the directory holding a project's files.
func (s *Store) ProjectDir(name string) string {
	return filepath.Join(s.BasePath, name)
}

// Save persists the project state to project.json atomically and refreshes the CSV mirror.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, name string, state *domain.ProjectState) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}
	dir := s.ProjectDir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure project directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := writeAtomic(dir, stateFile, data); err != nil {
		return err
	}

	// While a review is outstanding the CSV belongs to the human.
	if state.Checkpoint != nil {
		return nil
	}
	// The mirror is derived data; project.json stays authoritative if this write fails.
	csvData, err := EncodeBlueprint(state.Blueprint)
	if err != nil {
		return fmt.Errorf("failed to encode blueprint mirror: %w", err)
	}
	if err := writeAtomic(dir, blueprintFile, csvData); err != nil {
		return fmt.Errorf("failed to write blueprint mirror: %w", err)
	}
	return nil
}

// Load retrieves the project state from project.json.
// Unreadable JSON or a state that breaks its invariants yields a CorruptStateError.
func (s *Store) Load(ctx context.Context, name string) (*domain.ProjectState, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.ProjectDir(name), stateFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var state domain.ProjectState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &domain.CorruptStateError{Project: name, Err: err}
	}
	if state.Name != name {
		return nil, &domain.CorruptStateError{
			Project: name,
			Err:     fmt.Errorf("file belongs to project %q", state.Name),
		}
	}
	if err := state.Validate(); err != nil {
		return nil, &domain.CorruptStateError{Project: name, Err: err}
	}
	return &state, nil
}

// List returns every directory under the base path that holds a project.json.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.BasePath, entry.Name(), stateFile)); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func writeAtomic(dir, name string, data []byte) error {
	destPath := filepath.Join(dir, name)

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", name, err)
	}
	return nil
}
