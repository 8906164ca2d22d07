package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service"
)

// Server is the MCP server of the storefront.
// It exposes catalog, cart and designer tools so AI agents can shop and design.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	logger   *zap.Logger

	// Services (injected from app layer)
	catalog *service.CatalogService
	cart    *service.CartService
	design  *service.DesignService
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter     EventEmitter
	Logger      *zap.Logger
	Catalog     *service.CatalogService
	Cart        *service.CartService
	Design      *service.DesignService
	AutoApprove bool // headless mode: destructive tools run without asking
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	if deps.Emitter == nil {
		deps.Emitter = service.NopEmitter{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	approval := NewApprovalQueue(ctx, deps.Emitter)
	approval.SetAutoApprove(deps.AutoApprove)

	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		logger:   deps.Logger,
		catalog:  deps.Catalog,
		cart:     deps.Cart,
		design:   deps.Design,
	}

	s.mcp = server.NewMCPServer(
		"storefront-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerCatalogTools()
	s.registerCartTools()
	s.registerDesignTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// ServeHTTP serves the streamable HTTP transport on addr until ctx is done.
// The desktop app uses it so approvals can be answered in its UI.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpSrv := server.NewStreamableHTTPServer(s.mcp)
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP http server", zap.String("addr", addr))
		errCh <- httpSrv.Start(addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult reports err to the agent as a tool error. Validation and
// session problems are the agent's to fix, so they are not protocol errors.
func errorResult(err error) (*mcp.CallToolResult, error) {
	var v *domain.ValidationError
	switch {
	case errors.As(err, &v):
		return mcp.NewToolResultError(fmt.Sprintf("invalid %s: %s", v.Field, v.Message)), nil
	case errors.Is(err, domain.ErrNoSession):
		return mcp.NewToolResultError("not signed in: sign in through the storefront app first"), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", domain.Classify(err), err)), nil
}

func boolPtr(v bool) *bool { return &v }
