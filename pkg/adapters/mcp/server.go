package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/pkg/document"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/runner"
	"github.com/aretw0/keyframe/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DocumentURI is the resource holding the previewed prototype document.
const DocumentURI = "keyframe://document"

// Server exposes preview sessions as MCP tools.
type Server struct {
	previewer *session.Previewer
	proto     *domain.Prototype
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the tool handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(previewer *session.Previewer, proto *domain.Prototype, opts ...Option) *Server {
	s := &Server{
		previewer: previewer,
		proto:     proto,
		mcpServer: server.NewMCPServer("keyframe-mcp", keyframe.Version),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Tool arguments. Durations are milliseconds.

type startArgs struct {
	SessionID string `json:"session_id"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type eventArgs struct {
	SessionID string  `json:"session_id"`
	Type      string  `json:"type"`
	ElementID string  `json:"element_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	ScrollX   float64 `json:"scroll_x"`
	ScrollY   float64 `json:"scroll_y"`
}

type advanceArgs struct {
	SessionID string  `json:"session_id"`
	Ms        float64 `json:"ms"`
}

type navigateArgs struct {
	SessionID  string `json:"session_id"`
	Target     string `json:"target"`
	Transition string `json:"transition"`
}

type variableArgs struct {
	SessionID  string   `json:"session_id"`
	VariableID string   `json:"variable_id"`
	Operation  string   `json:"operation"`
	Value      string   `json:"value"`
	Amount     *float64 `json:"amount"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a preview session on the entry screen. An existing session is returned untouched."),
		mcp.WithString("session_id", mcp.Description("Session ID (generated when omitted)")),
		mcp.WithOutputSchema[session.Result](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("send_event",
		mcp.WithDescription("Dispatch a gesture to the session. Time does not move; call advance to play the transition."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Gesture type"),
			mcp.Enum("tap", "hover", "press", "release", "longPress", "drag", "scroll")),
		mcp.WithString("element_id", mcp.Description("Target element (optional)")),
		mcp.WithNumber("x", mcp.Description("Pointer x")),
		mcp.WithNumber("y", mcp.Description("Pointer y")),
		mcp.WithNumber("dx", mcp.Description("Drag displacement x")),
		mcp.WithNumber("dy", mcp.Description("Drag displacement y")),
		mcp.WithNumber("scroll_x", mcp.Description("Scroll offset x")),
		mcp.WithNumber("scroll_y", mcp.Description("Scroll offset y")),
		mcp.WithOutputSchema[session.Result](),
	), mcp.NewStructuredToolHandler(s.handleEvent))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Move the session's virtual clock forward, firing due timers and animation steps."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithNumber("ms", mcp.Required(), mcp.Description("Milliseconds to advance"), mcp.Min(0)),
		mcp.WithOutputSchema[session.Result](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Navigate to a screen like a prototype link would."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Screen ID, or \"back\"")),
		mcp.WithString("transition", mcp.Description("Animation type (instant when omitted)")),
		mcp.WithOutputSchema[session.Result](),
	), mcp.NewStructuredToolHandler(s.handleNavigate))

	s.mcpServer.AddTool(mcp.NewTool("set_variable",
		mcp.WithDescription("Mutate a prototype variable."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("variable_id", mcp.Required(), mcp.Description("Variable ID")),
		mcp.WithString("operation", mcp.Description("Operation (default set)"),
			mcp.Enum("set", "toggle", "increment", "decrement")),
		mcp.WithString("value", mcp.Description("New value for set: true, false, a number or text")),
		mcp.WithNumber("amount", mcp.Description("Step for increment and decrement")),
		mcp.WithOutputSchema[session.Result](),
	), mcp.NewStructuredToolHandler(s.handleSetVariable))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Reset the session to its entry screen and default variables."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[session.Result](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Read the session snapshot and the frame at its current virtual time."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[session.Result](),
	), mcp.NewStructuredToolHandler(s.handleGet))
}

// Handler methods for structured tools

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args startArgs) (session.Result, error) {
	return s.result(s.previewer.Start(ctx, args.SessionID))
}

func (s *Server) handleEvent(ctx context.Context, request mcp.CallToolRequest, args eventArgs) (session.Result, error) {
	ev := domain.Event{
		Type:      domain.EventType(args.Type),
		ElementID: args.ElementID,
		X:         args.X,
		Y:         args.Y,
		DX:        args.DX,
		DY:        args.DY,
		ScrollX:   args.ScrollX,
		ScrollY:   args.ScrollY,
	}
	if !ev.Type.IsGesture() {
		return session.Result{}, fmt.Errorf("unsupported event type %q", args.Type)
	}
	return s.result(s.previewer.Dispatch(ctx, args.SessionID, ev))
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args advanceArgs) (session.Result, error) {
	d := time.Duration(args.Ms * float64(time.Millisecond))
	return s.result(s.previewer.Advance(ctx, args.SessionID, d))
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest, args navigateArgs) (session.Result, error) {
	var spec *domain.TransitionSpec
	if args.Transition != "" {
		decoded, err := document.DecodeTransitionSpec(args.Transition)
		if err != nil {
			return session.Result{}, err
		}
		spec = &decoded
	}
	if args.Target == domain.TargetBack {
		return s.result(s.previewer.Back(ctx, args.SessionID, spec))
	}
	return s.result(s.previewer.Navigate(ctx, args.SessionID, args.Target, spec))
}

func (s *Server) handleSetVariable(ctx context.Context, request mcp.CallToolRequest, args variableArgs) (session.Result, error) {
	action := domain.SetVariableAction{
		VariableID: args.VariableID,
		Op:         domain.VariableOp(args.Operation),
		Amount:     args.Amount,
	}
	if action.Op == "" {
		action.Op = domain.OpSet
	}
	if args.Value != "" {
		clean, err := runner.SanitizeInput(args.Value)
		if err != nil {
			s.logger.Warn("MCP set_variable: value rejected", "err", err, "size", len(args.Value))
			return session.Result{}, fmt.Errorf("value rejected: %w", err)
		}
		action.Value = runner.ParseValue(clean)
	}
	return s.result(s.previewer.SetVariable(ctx, args.SessionID, action))
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (session.Result, error) {
	return s.result(s.previewer.Reset(ctx, args.SessionID))
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (session.Result, error) {
	return s.result(s.previewer.Frame(ctx, args.SessionID))
}

func (s *Server) result(res *session.Result, err error) (session.Result, error) {
	if err != nil {
		s.logger.Debug("MCP tool failed", "err", err)
		return session.Result{}, err
	}
	return *res, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DocumentURI, "Prototype Document",
		mcp.WithResourceDescription("The prototype being previewed, in its JSON document form."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := document.Encode(s.proto)
		if err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      DocumentURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
