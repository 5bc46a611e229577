// Package mcp exposes the Pine Script documentation and review tools
// over the Model Context Protocol on stdio.
package mcp

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/iamrichardD/mcp-server-pinescript/internal/config"
	"github.com/iamrichardD/mcp-server-pinescript/internal/validation"
	"github.com/iamrichardD/mcp-server-pinescript/internal/version"
)

// Server wires the validation pipeline and documentation index to the MCP
// tool surface.
type Server struct {
	cfg              *config.Config
	vctx             *validation.Context
	diagnosticLogger *DiagnosticLogger
	paginator        *ViolationPaginator
	server           *mcp.Server
}

// NewServer builds the server and registers its tools. The embedded
// reference corpus and rule table load here; a corpus failure aborts
// startup.
func NewServer(cfg *config.Config) (*Server, error) {
	// Use file-based logging to keep stdio clean for the protocol.
	diagnosticLogger := NewDiagnosticLogger(true)

	if cfg == nil {
		cfg = config.Defaults()
	}

	vctx, err := validation.NewContext(cfg.Cache)
	if err != nil {
		diagnosticLogger.Errorf("failed to load validation context: %v", err)
		return nil, err
	}
	diagnosticLogger.Printf("Loaded reference corpus: %d entries", vctx.Docs().EntryCount())

	s := &Server{
		cfg:              cfg,
		vctx:             vctx,
		diagnosticLogger: diagnosticLogger,
		paginator:        NewViolationPaginator(),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "pinescript-mcp-server",
		Version: version.Version,
	}, nil)

	s.registerTools()
	return s, nil
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Get server version and tool usage help. Use 'info' for an overview or 'info <tool>' for specifics.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name to get information about (e.g. 'pinescript_review')",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "pinescript_reference",
		Description: "Search the Pine Script language reference and style guide. Returns ranked function documentation with signatures and parameters.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Function name (e.g. 'ta.sma') or free-text query (e.g. 'moving average')",
				},
				"namespace": {
					Type:        "string",
					Description: "List every function in one namespace instead of searching (e.g. 'ta')",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum search results to return",
				},
			},
		},
	}, s.handleReference)

	s.server.AddTool(&mcp.Tool{
		Name:        "pinescript_review",
		Description: "Review Pine Script source against the v6 style guide and built-in signatures. Accepts inline code, a file path, or a directory.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"code": {
					Type:        "string",
					Description: "Pine Script source to review",
				},
				"path": {
					Type:        "string",
					Description: "File or directory to review instead of inline code",
				},
				"severity_filter": {
					Type:        "string",
					Description: "Only list violations of this severity: error, warning or suggestion",
				},
				"format": {
					Type:        "string",
					Description: "Response format: json (default) or text",
				},
				"page": {
					Type:        "integer",
					Description: "Zero-based page of violations to return",
				},
				"page_size": {
					Type:        "integer",
					Description: "Violations per page; 0 picks a size that fits the token budget",
				},
			},
		},
	}, s.handleReview)

	s.server.AddTool(&mcp.Tool{
		Name:        "syntax_check",
		Description: "Fast parse-only check of Pine Script source. Reports parse errors and metrics without running style rules.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"code": {
					Type:        "string",
					Description: "Pine Script source to check",
				},
			},
			Required: []string{"code"},
		},
	}, s.handleSyntaxCheck)
}

// recoverFromPanic provides panic recovery middleware for MCP operations.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Errorf("PANIC RECOVERED in %s: %v", operation, r)
			s.diagnosticLogger.Printf("Stack trace: %s", debug.Stack())

			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.diagnosticLogger.Printf("Memory stats - Alloc: %d KB, Sys: %d KB, NumGC: %d",
				m.Alloc/1024, m.Sys/1024, m.NumGC)

			result, err = createErrorResponse(operation, panicError{operation})
		}
	}()

	result, err = handler()
	if err != nil {
		s.diagnosticLogger.Errorf("Error in %s: %v", operation, err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}

type panicError struct {
	operation string
}

func (e panicError) Error() string {
	return "internal error in " + e.operation + ", see diagnostic log"
}

// Start runs the server on stdio until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport at %s",
		time.Now().Format(time.RFC3339))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown flushes diagnostics. The stdio transport stops with the Start
// context.
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("Shutting down MCP server")
	return s.diagnosticLogger.Close()
}
