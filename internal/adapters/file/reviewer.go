package file

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/weaver/pkg/domain"
)

// Reviewer implements ports.Reviewer on top of the blueprint.csv mirror.
// Present writes the current blueprint; Collect reads back whatever the human saved.
type Reviewer struct {
	BasePath string
}

// NewReviewer creates a Reviewer rooted at the same base path as the Store.
func NewReviewer(basePath string) *Reviewer {
	if basePath == "" {
		basePath = "."
	}
	return &Reviewer{BasePath: basePath}
}

// Path returns the CSV file a human edits for the given project.
func (r *Reviewer) Path(name string) string {
	return filepath.Join(r.BasePath, name, blueprintFile)
}

func (r *Reviewer) Present(ctx context.Context, state *domain.ProjectState) error {
	data, err := EncodeBlueprint(state.Blueprint)
	if err != nil {
		return fmt.Errorf("failed to encode blueprint: %w", err)
	}
	dir := filepath.Join(r.BasePath, state.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure project directory: %w", err)
	}
	return writeAtomic(dir, blueprintFile, data)
}

func (r *Reviewer) Collect(ctx context.Context, state *domain.ProjectState) ([]domain.Task, error) {
	data, err := os.ReadFile(r.Path(state.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to read reviewed blueprint: %w", err)
	}
	tasks, err := DecodeBlueprint(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.BlueprintEditError{Index: -1, Reason: err.Error()}
	}
	return tasks, nil
}
