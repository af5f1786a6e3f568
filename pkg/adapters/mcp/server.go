package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// ProjectArgs identifies a project.
type ProjectArgs struct {
	Name string `json:"name"`
}

// InitArgs creates a project.
type InitArgs struct {
	Name string `json:"name"`
	Goal string `json:"goal"`
}

// IngestArgs appends one piece of already decoded text to a project corpus.
type IngestArgs struct {
	Name     string `json:"name"`
	SourceID string `json:"source_id"`
	Text     string `json:"text"`
}

// RunArgs starts or continues execution of a project blueprint.
type RunArgs struct {
	Name          string `json:"name"`
	HumanFeedback bool   `json:"human_feedback,omitempty"`
	Steps         int    `json:"steps,omitempty"`
}

// ResumeArgs continues a run suspended at the human checkpoint.
type ResumeArgs struct {
	Name  string `json:"name"`
	Token string `json:"token"`
	Steps int    `json:"steps,omitempty"`
}

// ListResponse wraps the project names so the tool output is an object.
type ListResponse struct {
	Projects []string `json:"projects" jsonschema_description:"Names of all persisted projects"`
}

// Server wraps a ProjectEngine and exposes it as an MCP Server.
type Server struct {
	engine    ports.ProjectEngine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.ProjectEngine, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("weaver-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP endpoints over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("project_list",
		mcp.WithDescription("List the names of all projects."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("project_status",
		mcp.WithDescription("Return the persisted state of a project: stage, corpus, blueprint and cursor."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithOutputSchema[domain.ProjectState](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("project_init",
		mcp.WithDescription("Create a project with a goal."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name, usable as a directory name")),
		mcp.WithString("goal", mcp.Required(), mcp.Description("What the project should produce")),
		mcp.WithOutputSchema[domain.ProjectState](),
	), mcp.NewStructuredToolHandler(s.handleInit))

	s.mcpServer.AddTool(mcp.NewTool("project_ingest",
		mcp.WithDescription("Append source text to a project corpus. Discards an existing blueprint."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("Identifier of the source")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Decoded source text")),
		mcp.WithOutputSchema[domain.ProjectState](),
	), mcp.NewStructuredToolHandler(s.handleIngest))

	s.mcpServer.AddTool(mcp.NewTool("project_plan",
		mcp.WithDescription("Ask the orchestrator for a blueprint, replacing any previous one."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithOutputSchema[domain.ProjectState](),
	), mcp.NewStructuredToolHandler(s.handlePlan))

	s.mcpServer.AddTool(mcp.NewTool("project_run",
		mcp.WithDescription("Execute the blueprint from the cursor. With human_feedback the run stops at the review checkpoint and returns a resume token."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithBoolean("human_feedback", mcp.Description("Suspend for review before the first task")),
		mcp.WithNumber("steps", mcp.Description("Maximum number of tasks to attempt; 0 means all")),
		mcp.WithOutputSchema[domain.ExecutionReport](),
	), mcp.NewStructuredToolHandler(s.handleRun))

	s.mcpServer.AddTool(mcp.NewTool("project_resume",
		mcp.WithDescription("Continue a run suspended at the review checkpoint."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("token", mcp.Required(), mcp.Description("Resume token returned by project_run")),
		mcp.WithNumber("steps", mcp.Description("Maximum number of tasks to attempt; 0 means all")),
		mcp.WithOutputSchema[domain.ExecutionReport](),
	), mcp.NewStructuredToolHandler(s.handleResume))
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (ListResponse, error) {
	names, err := s.engine.List(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return ListResponse{Projects: names}, nil
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest, args ProjectArgs) (*domain.ProjectState, error) {
	return s.engine.Status(ctx, args.Name)
}

func (s *Server) handleInit(ctx context.Context, _ mcp.CallToolRequest, args InitArgs) (*domain.ProjectState, error) {
	return s.engine.Initialize(ctx, args.Name, args.Goal)
}

func (s *Server) handleIngest(ctx context.Context, _ mcp.CallToolRequest, args IngestArgs) (*domain.ProjectState, error) {
	return s.engine.IngestEntries(ctx, args.Name, []domain.CorpusEntry{{SourceID: args.SourceID, Text: args.Text}})
}

func (s *Server) handlePlan(ctx context.Context, _ mcp.CallToolRequest, args ProjectArgs) (*domain.ProjectState, error) {
	return s.engine.Plan(ctx, args.Name)
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, args RunArgs) (*domain.ExecutionReport, error) {
	report, err := s.engine.Run(ctx, args.Name, ports.RunOptions{HumanFeedback: args.HumanFeedback, Steps: args.Steps})
	if err != nil {
		s.logger.Warn("MCP run failed", "project", args.Name, "err", err)
		return nil, err
	}
	return report, nil
}

func (s *Server) handleResume(ctx context.Context, _ mcp.CallToolRequest, args ResumeArgs) (*domain.ExecutionReport, error) {
	report, err := s.engine.Resume(ctx, args.Name, args.Token, ports.RunOptions{Steps: args.Steps})
	if err != nil {
		s.logger.Warn("MCP resume failed", "project", args.Name, "err", err)
		return nil, err
	}
	return report, nil
}
