package ports

import (
	"context"

	"github.com/aretw0/weaver/pkg/domain"
)

// StateStore defines the interface for persisting project state.
// This allows for durable execution, enabling "Stop & Resume" workflows.
type StateStore interface {
	// Save persists the state for a given project name.
	// A save either fully lands or the previously saved state remains readable.
	Save(ctx context.Context, name string, state *domain.ProjectState) error

	// Load retrieves the state for a given project name.
	// Returns domain.ErrProjectNotFound if the project does not exist and
	// a *domain.CorruptStateError if the record cannot be decoded.
	Load(ctx context.Context, name string) (*domain.ProjectState, error)

	// List returns the names of all persisted projects.
	List(ctx context.Context) ([]string, error)
}
