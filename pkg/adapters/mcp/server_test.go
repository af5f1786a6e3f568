package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/weaver/internal/testutils"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(testutils.NewEngine(t), "test", nil)
}

func TestServer_ProjectFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	req := mcp.CallToolRequest{}

	_, err := s.handleInit(ctx, req, InitArgs{Name: "essay", Goal: "write an essay"})
	require.NoError(t, err)

	state, err := s.handleIngest(ctx, req, IngestArgs{Name: "essay", SourceID: "notes", Text: "three points"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageIngested, state.Stage)

	state, err = s.handlePlan(ctx, req, ProjectArgs{Name: "essay"})
	require.NoError(t, err)
	assert.Len(t, state.Blueprint, 2)

	report, err := s.handleRun(ctx, req, RunArgs{Name: "essay", Steps: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Done)
	assert.Equal(t, domain.StagePaused, report.Stage)

	report, err = s.handleRun(ctx, req, RunArgs{Name: "essay"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageCompleted, report.Stage)

	state, err = s.handleStatus(ctx, req, ProjectArgs{Name: "essay"})
	require.NoError(t, err)
	assert.Equal(t, 2, state.Cursor)

	list, err := s.handleList(ctx, req, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []string{"essay"}, list.Projects)
}

func TestServer_Errors(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	req := mcp.CallToolRequest{}

	_, err := s.handleStatus(ctx, req, ProjectArgs{Name: "missing"})
	assert.True(t, errors.Is(err, domain.ErrProjectNotFound))

	_, err = s.handleInit(ctx, req, InitArgs{Name: "p", Goal: "g"})
	require.NoError(t, err)

	_, err = s.handleResume(ctx, req, ResumeArgs{Name: "p", Token: "x"})
	var stageErr *domain.InvalidStageError
	assert.True(t, errors.As(err, &stageErr), "got %v", err)
}

func TestServer_EmptyList(t *testing.T) {
	list, err := newTestServer(t).handleList(context.Background(), mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.NotNil(t, list.Projects)
	assert.Empty(t, list.Projects)
}
