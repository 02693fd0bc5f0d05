// Package mcpserver exposes the chunk planner as an MCP tool over stdio,
// so agent toolchains can plan map chunking without shelling out.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg/oj"

	"github.com/docfold/docfold/internal/config"
	"github.com/docfold/docfold/internal/planner"
)

const (
	// ServerName is the MCP server name.
	ServerName = "docfold"
	// ServerVersion is the advertised server version.
	ServerVersion = "0.3.0"
)

// Server wraps the MCP server with the planner's configuration.
type Server struct {
	mcp *server.MCPServer
	cfg *config.Config
	log *slog.Logger
}

// New builds the server and registers its tools.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(ServerName, ServerVersion),
		cfg: cfg,
		log: logger,
	}
	s.mcp.AddTool(planChunksTool(), s.handlePlanChunks)
	return s
}

// Serve runs the server on stdio until the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func planChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "plan_chunks",
		Description: "Compute chunk operations (merge/split plan, change and conflict tables) for a map document",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the map document",
				},
				"chunk": map[string]interface{}{
					"type":        "string",
					"description": "Chunk token set forced onto the map root (e.g. \"to-content by-topic\")",
				},
				"navigation": map[string]interface{}{
					"type":        "boolean",
					"description": "Enable to-navigation extraction",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

func (s *Server) handlePlanChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	if !filepath.IsAbs(path) {
		return mcp.NewToolResultError("path must be absolute"), nil
	}

	cfg := *s.cfg
	if chunk, ok := args["chunk"].(string); ok && chunk != "" {
		cfg.RootChunk = chunk
	}
	if nav, ok := args["navigation"].(bool); ok {
		cfg.Navigation = nav
	}

	out, err := planner.Request{
		MapPath: path,
		Config:  &cfg,
		Logger:  s.log,
	}.Run()
	if err != nil {
		s.log.Error("planning failed", "map", path, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("planning failed: %v", err)), nil
	}

	payload, err := oj.Marshal(out.Plan, 2)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode plan: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
