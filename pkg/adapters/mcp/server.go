package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/internal/compiler"
	"github.com/aretw0/flowstep/internal/dto"
	"github.com/aretw0/flowstep/internal/logging"
	"github.com/aretw0/flowstep/internal/presentation/graph"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/session"
	"github.com/aretw0/flowstep/pkg/view"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CreateSessionArgs are the create_session arguments.
type CreateSessionArgs struct {
	SessionID string `json:"session_id,omitempty"`
	Network   string `json:"network"`
	Format    string `json:"format,omitempty"`
}

// SessionArgs address an existing session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// SolveArgs are the solve arguments.
type SolveArgs struct {
	SessionID string `json:"session_id"`
	MaxSteps  int    `json:"max_steps,omitempty"`
}

// RenderViewArgs are the render_view arguments.
type RenderViewArgs struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind,omitempty"`
	Format    string `json:"format,omitempty"`
}

// RenderViewResponse carries a rendered view as text.
type RenderViewResponse struct {
	Kind    view.Kind `json:"kind" jsonschema_description:"network or residual"`
	Format  string    `json:"format" jsonschema_description:"json, mermaid or dot"`
	Content string    `json:"content" jsonschema_description:"The rendered view"`
}

// Server wraps the session manager and exposes it as an MCP Server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("flowstep-mcp", strings.TrimSpace(flowstep.Version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, mostly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a stepping session from a network document (YAML, JSON or TOML) with nodes, edges and options."),
		mcp.WithString("network", mcp.Required(), mcp.Description("The network document, e.g. {\"nodes\": 4, \"edges\": [[0,1,3],[1,3,2]]}")),
		mcp.WithString("format", mcp.Description("yaml (default, also reads JSON) or toml")),
		mcp.WithString("session_id", mcp.Description("Session ID to use (optional, generated when omitted)")),
		mcp.WithOutputSchema[dto.SessionView](),
	), mcp.NewStructuredToolHandler(s.handleCreateSession))

	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to act on"))

	s.mcpServer.AddTool(mcp.NewTool("step",
		mcp.WithDescription("Perform one elementary step of the labeling algorithm."),
		sessionID,
		mcp.WithOutputSchema[dto.StepView](),
	), mcp.NewStructuredToolHandler(s.handleStep))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the most recent step."),
		sessionID,
		mcp.WithOutputSchema[dto.StepView](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("solve",
		mcp.WithDescription("Step until the maximum flow is found or max_steps steps were taken."),
		sessionID,
		mcp.WithNumber("max_steps", mcp.Description("Upper bound on steps, 0 for none")),
		mcp.WithOutputSchema[dto.StepView](),
	), mcp.NewStructuredToolHandler(s.handleSolve))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the current network and algorithm state."),
		sessionID,
		mcp.WithOutputSchema[dto.SessionView](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("render_view",
		mcp.WithDescription("Render the network or residual view as JSON, Mermaid or DOT."),
		sessionID,
		mcp.WithString("kind", mcp.Description("network (default) or residual")),
		mcp.WithString("format", mcp.Description("json (default), mermaid or dot")),
		mcp.WithOutputSchema[RenderViewResponse](),
	), mcp.NewStructuredToolHandler(s.handleRenderView))
}

func (s *Server) handleCreateSession(ctx context.Context, _ mcp.CallToolRequest, args CreateSessionArgs) (dto.SessionView, error) {
	format := compiler.Format(strings.ToLower(args.Format))
	def, err := compiler.NewParser().ParseAndCompile([]byte(args.Network), format)
	if err != nil {
		return dto.SessionView{}, err
	}
	sess, err := s.sessions.Create(ctx, args.SessionID, def.Nodes, def.Edges, flowstep.WithConfig(def.Config))
	if err != nil {
		return dto.SessionView{}, err
	}
	return dto.FromSession(sess), nil
}

func (s *Server) handleStep(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (dto.StepView, error) {
	return s.apply(ctx, args.SessionID, func(ctx context.Context, eng *flowstep.Engine) (*domain.StepResult, error) {
		return eng.Step(ctx)
	})
}

func (s *Server) handleUndo(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (dto.StepView, error) {
	return s.apply(ctx, args.SessionID, func(ctx context.Context, eng *flowstep.Engine) (*domain.StepResult, error) {
		res, ok := eng.Undo(ctx)
		if !ok {
			return nil, domain.ErrNothingToUndo
		}
		return res, nil
	})
}

func (s *Server) handleSolve(ctx context.Context, _ mcp.CallToolRequest, args SolveArgs) (dto.StepView, error) {
	if args.MaxSteps < 0 {
		return dto.StepView{}, errors.New("max_steps must not be negative")
	}
	return s.apply(ctx, args.SessionID, func(ctx context.Context, eng *flowstep.Engine) (*domain.StepResult, error) {
		return eng.Solve(ctx, args.MaxSteps)
	})
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (dto.SessionView, error) {
	sess, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return dto.SessionView{}, err
	}
	return dto.FromSession(sess), nil
}

func (s *Server) handleRenderView(ctx context.Context, _ mcp.CallToolRequest, args RenderViewArgs) (RenderViewResponse, error) {
	kind, ok := view.ParseKind(args.Kind)
	if !ok {
		return RenderViewResponse{}, fmt.Errorf("unknown view %q", args.Kind)
	}
	sess, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return RenderViewResponse{}, err
	}
	g := view.Build(kind, &sess.Current)

	resp := RenderViewResponse{Kind: kind, Format: args.Format}
	switch args.Format {
	case "", "json":
		b, err := json.Marshal(g)
		if err != nil {
			return RenderViewResponse{}, err
		}
		resp.Format, resp.Content = "json", string(b)
	case "mermaid":
		resp.Content = graph.GenerateMermaid(g)
	case "dot":
		resp.Content = graph.GenerateDOT(g)
	default:
		return RenderViewResponse{}, fmt.Errorf("unknown format %q", args.Format)
	}
	return resp, nil
}

func (s *Server) apply(ctx context.Context, id string, fn func(context.Context, *flowstep.Engine) (*domain.StepResult, error)) (dto.StepView, error) {
	if id == "" {
		return dto.StepView{}, errors.New("session_id is required")
	}
	var res *domain.StepResult
	_, after, err := s.sessions.Apply(ctx, id, func(ctx context.Context, eng *flowstep.Engine) error {
		var err error
		res, err = fn(ctx, eng)
		return err
	})
	if err != nil {
		s.logger.Warn("MCP: tool failed", "session_id", id, "err", err)
		return dto.StepView{}, err
	}
	if res == nil {
		res = &domain.StepResult{Kind: domain.KindNoopTerminated}
	}
	return dto.FromStep(res, after), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("flowstep://sessions", "Stored Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "flowstep://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
