package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cmespinar/docrename/internal/config"
	"github.com/cmespinar/docrename/internal/extract"
	"github.com/cmespinar/docrename/internal/pdfdoc"
	"github.com/cmespinar/docrename/internal/rename"
	"github.com/cmespinar/docrename/internal/service"
)

// Server exposes document analysis and filename suggestion as MCP tools
// over stdio. File access is restricted to the configured directory.
type Server struct {
	config    *config.Config
	svc       *service.Service
	guard     *PathGuard
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	guard, err := NewPathGuard(cfg.Directory)
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		svc:       svc,
		guard:     guard,
		mcpServer: mcpServer,
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	analyzeTool := mcp.NewTool(
		"pdf_analyze_file",
		mcp.WithDescription("Extract DNI, name, company, exam type and evaluation date from an occupational-exam PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file (relative paths resolve against the configured directory)"),
		),
	)
	s.mcpServer.AddTool(analyzeTool, s.handleAnalyzeFile)

	suggestTool := mcp.NewTool(
		"pdf_suggest_filename",
		mcp.WithDescription("Suggest a canonical filename for an occupational-exam PDF based on its extracted fields"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithString("format",
			mcp.Description("Naming format: 'standard' or 'hudbay' (defaults to the detected format)"),
		),
	)
	s.mcpServer.AddTool(suggestTool, s.handleSuggestFilename)

	validateTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription("Validate that a file is a readable PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateFile)

	listTool := mcp.NewTool(
		"pdf_list_directory",
		mcp.WithDescription("List PDF files available in the configured directory"),
		mcp.WithString("directory",
			mcp.Description("Subdirectory to list (uses the configured directory if empty)"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleListDirectory)
}

// Handler functions
func (s *Server) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, data, err := s.readPDF(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.svc.AnalyzeFile(ctx, name, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatAnalysis(result)), nil
}

func (s *Server) handleSuggestFilename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, data, err := s.readPDF(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.svc.AnalyzeFile(ctx, name, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !result.Success {
		return mcp.NewToolResultError(fmt.Sprintf("no DNI found in %s; cannot suggest a filename", name)), nil
	}

	format := result.DetectedFormat
	args := request.GetArguments()
	if f, ok := args["format"].(string); ok && f != "" {
		parsed, err := extract.ParseFormat(f)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format = parsed
	}

	suggested, err := s.svc.BuildFilename(result.Defaults, rename.DefaultSpec(format))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot build a name for %s: %v", name, err)), nil
	}

	text := fmt.Sprintf("Suggested filename: %s\n", suggested)
	text += fmt.Sprintf("Format: %s\n", format)
	text += fmt.Sprintf("Original: %s\n", name)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, data, err := s.readPDF(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := pdfdoc.Open(name, data)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %v", name, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("PDF file %s is valid and readable (%d pages)", name, doc.Pages)), nil
}

func (s *Server) handleListDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := s.guard.Root()
	args := request.GetArguments()
	if d, ok := args["directory"].(string); ok && d != "" {
		resolved, err := s.guard.Resolve(d)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dir = resolved
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read directory %s: %v", dir, err)), nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No PDF files found in directory: %s", dir)), nil
	}

	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n\n", len(names), dir)
	for i, n := range names {
		text += fmt.Sprintf("%d. %s\n", i+1, n)
	}
	return mcp.NewToolResultText(text), nil
}

// readPDF resolves the path through the guard and loads the file.
func (s *Server) readPDF(path string) (string, []byte, error) {
	resolved, err := s.guard.Resolve(path)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return filepath.Base(resolved), data, nil
}

// Formatting helpers
func (s *Server) formatAnalysis(result *service.DocumentResult) string {
	text := fmt.Sprintf("Analysis of %s\n", result.OriginalName)
	text += fmt.Sprintf("Success: %t\n", result.Success)
	text += fmt.Sprintf("Detected format: %s\n", result.DetectedFormat)
	if result.SuggestedName != "" {
		text += fmt.Sprintf("Suggested filename: %s\n", result.SuggestedName)
	}

	text += "\nFields:\n"
	for _, field := range extract.AllFields {
		value := result.Defaults[field]
		if value == "" {
			value = "(no encontrado)"
		}
		text += fmt.Sprintf("  %s: %s\n", field, value)
		if cands := result.Candidates[field]; len(cands) > 1 {
			text += fmt.Sprintf("    other candidates: %s\n", strings.Join(cands[1:], ", "))
		}
	}

	if len(result.Notes) > 0 {
		text += "\nNotes:\n"
		for _, note := range result.Notes {
			text += fmt.Sprintf("  - %s\n", note)
		}
	}
	return text
}

// Run starts the MCP server over stdio.
func (s *Server) Run(_ context.Context) error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
