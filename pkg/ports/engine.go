package ports

import (
	"context"

	"github.com/aretw0/weaver/pkg/domain"
)

// RunOptions configures a run invocation.
type RunOptions struct {
	// HumanFeedback suspends at the checkpoint before the first task of a fresh blueprint.
	HumanFeedback bool

	// Steps caps how many tasks are attempted. Zero means unbounded; negative values are rejected.
	Steps int
}

// ProjectEngine is the lifecycle surface used by driving adapters (HTTP, MCP, CLI).
type ProjectEngine interface {
	Initialize(ctx context.Context, name, goal string) (*domain.ProjectState, error)
	Ingest(ctx context.Context, name string, locators []string) (*domain.ProjectState, error)
	IngestEntries(ctx context.Context, name string, entries []domain.CorpusEntry) (*domain.ProjectState, error)
	Plan(ctx context.Context, name string) (*domain.ProjectState, error)
	Run(ctx context.Context, name string, opts RunOptions) (*domain.ExecutionReport, error)
	Resume(ctx context.Context, name, token string, opts RunOptions) (*domain.ExecutionReport, error)
	Status(ctx context.Context, name string) (*domain.ProjectState, error)
	List(ctx context.Context) ([]string, error)
}
