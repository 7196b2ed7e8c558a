package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/usecase"
)

// Pipeline is the subset of the extraction pipeline exposed as tools.
type Pipeline interface {
	Classify(ctx context.Context, in domain.SourceFile) (domain.DocumentFormat, error)
	Process(ctx context.Context, in domain.SourceFile, opts domain.ProcessOptions) (*domain.DocumentResult, error)
}

type Server struct {
	pipeline    Pipeline
	maxFileSize int64
	logger      *slog.Logger
	mcpServer   *server.MCPServer
}

func NewServer(name, version string, pipeline Pipeline, maxFileSize int64, logger *slog.Logger) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
		logger:      logger,
		mcpServer:   server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	classify := mcp.NewTool(
		"classify_certificate",
		mcp.WithDescription("Detect which vehicle certificate family a PDF belongs to"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(classify, s.handleClassify)

	extract := mcp.NewTool(
		"extract_certificate",
		mcp.WithDescription("Extract the fields of a vehicle certificate PDF as JSON"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("expected_format",
			mcp.Description("Optional expected format: HOMOLOGATION, TECH_REVIEW, INSURANCE or CIRCULATION_PERMIT"),
		),
		mcp.WithBoolean("patterns",
			mcp.Description("Include the raw regex matches where the format supports them"),
		),
	)
	s.mcpServer.AddTool(extract, s.handleExtract)
}

func (s *Server) handleClassify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := s.readSource(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format, err := s.pipeline.Classify(ctx, file)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s (%s)", file.Name, format, format.DisplayName())), nil
}

func (s *Server) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := s.readSource(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var expected domain.DocumentFormat
	if raw := strings.TrimSpace(request.GetString("expected_format", "")); raw != "" {
		f, ok := domain.ParseFormat(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", raw)), nil
		}
		expected = f
	}

	res, err := s.pipeline.Process(ctx, file, domain.ProcessOptions{
		ExpectedFormat: expected,
		WantPatterns:   request.GetBool("patterns", false),
	})
	if err != nil {
		s.logger.Warn("mcp_extract_failed", "file", file.Name, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) readSource(request mcp.CallToolRequest) (domain.SourceFile, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return domain.SourceFile{}, err
	}
	name := filepath.Base(path)
	if err := usecase.ValidateSourceName(name, ""); err != nil {
		return domain.SourceFile{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.SourceFile{}, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	file := domain.SourceFile{Name: name, MimeType: "application/pdf", Data: data}
	if err := usecase.ValidateSourceFile(file, s.maxFileSize); err != nil {
		return domain.SourceFile{}, err
	}
	return file, nil
}

// Run serves the tools over stdio until the client disconnects.
func (s *Server) Run() error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve mcp stdio: %w", err)
	}
	return nil
}
