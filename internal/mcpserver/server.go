// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the context health tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ccd/internal/annotation"
	"github.com/starford/ccd/internal/engine"
	"github.com/starford/ccd/internal/models"
	"github.com/starford/ccd/internal/report"
	"github.com/starford/ccd/internal/syntax"
)

// Server wraps the MCP server with context health tools.
type Server struct {
	mcp *server.MCPServer
	eng *engine.Engine
}

// New creates a new MCP server with all tools registered.
func New(eng *engine.Engine) *Server {
	s := &Server{eng: eng}

	s.mcp = server.NewMCPServer(
		"CCD",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("scan_file",
		mcp.WithDescription("Scan a single source file and return its annotation state and parsed record."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the source file")),
	), s.scanFile)

	s.mcp.AddTool(mcp.NewTool("validate_project",
		mcp.WithDescription("Run the full validation pipeline and return the repository health report."),
	), s.validateProject)

	s.mcp.AddTool(mcp.NewTool("get_health_report",
		mcp.WithDescription("Return the repository and per-module health reports as plain text."),
	), s.getHealthReport)

	s.mcp.AddTool(mcp.NewTool("list_unannotated",
		mcp.WithDescription("List eligible source files that carry no annotation block."),
	), s.listUnannotated)

	s.mcp.AddTool(mcp.NewTool("get_annotation_contract",
		mcp.WithDescription("Returns the canonical CCD annotation block contract. "+
			"Call this before writing annotation blocks to ensure correct structure."),
	), s.getAnnotationContract)

	// Resource: annotation block contract.
	s.mcp.AddResource(
		mcp.NewResource("ccd://annotation-format", "Annotation Block Contract",
			mcp.WithResourceDescription("Canonical annotation block format every source file must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) scanFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cs, supported := syntax.LookupPath(path)
	if !supported {
		return mcp.NewToolResultText(fmt.Sprintf("unsupported syntax: %s", filepath.Ext(path))), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	rec, found := annotation.Scan(data, cs)
	if !found {
		return mcp.NewToolResultText("absent: no annotation block found"), nil
	}
	out, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) validateProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.eng.Run(ctx, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result.Repo, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getHealthReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.eng.Run(ctx, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.FormatText(result.Repo, result.Modules)), nil
}

func (s *Server) listUnannotated(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.eng.Run(ctx, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var paths []string
	for _, r := range result.Files {
		if r.File.State == models.StateAbsent {
			paths = append(paths, r.File.Path)
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("all eligible files are annotated"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getAnnotationContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AnnotationContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ccd://annotation-format",
			MIMEType: "text/markdown",
			Text:     AnnotationContract,
		},
	}, nil
}
