// Package mcp exposes the validator as tools over the Model Context
// Protocol on stdio.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/audit"
	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/validate"
)

// Config holds MCP server configuration.
type Config struct {
	Options       validate.Options
	MaxInputBytes int64
	ConfigHash    string
	AuditLogPath  string
	Version       string
	Logger        *zap.Logger
}

// Server wraps the MCP SDK server with the validation tools.
type Server struct {
	mcpServer  *mcpsdk.Server
	opts       validate.Options
	maxBytes   int64
	configHash string
	auditLog   *audit.Log
	logger     *zap.Logger
}

// New creates an MCP server with its tools registered.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes := cfg.MaxInputBytes
	if maxBytes <= 0 {
		maxBytes = validate.DefaultMaxInputBytes
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		l, err := audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		auditLog = l
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		opts:       cfg.Options,
		maxBytes:   maxBytes,
		configHash: cfg.ConfigHash,
		auditLog:   auditLog,
		logger:     logger.Named("mcp"),
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "icscheck",
			Version: version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// Run serves on stdio. Blocks until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

func (s *Server) recordAudit(source, input string, r *model.Report) {
	if s.auditLog == nil {
		return
	}
	if err := s.auditLog.Record(audit.NewEntry("", source, input, r, s.configHash)); err != nil {
		s.logger.Warn("audit record failed", zap.Error(err))
	}
}

// registerTools adds the validation tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ics_validate",
		Description: "Validate an ICS instruction (five delimited layers) and return a conformance report. compliant is false when any ERROR violation is present.",
	}, s.handleValidate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ics_directives",
		Description: "Parse the body of a CAPABILITY_DECLARATION layer into ALLOW/DENY/REQUIRE directives, reporting malformed lines.",
	}, s.handleDirectives)
}
