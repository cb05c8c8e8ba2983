package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	icsmcp "github.com/ppiankov/icscheck/internal/mcp"
)

var mcpAuditLog string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to audit log JSONL file (default from config)")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs icscheck as an MCP (Model Context Protocol) server over stdio.\nExposes tools: ics_validate, ics_directives.",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	auditPath := s.cfg.Audit.Path
	if mcpAuditLog != "" {
		auditPath = mcpAuditLog
	}

	srv, err := icsmcp.New(icsmcp.Config{
		Options:       s.options,
		MaxInputBytes: s.cfg.Limits.MaxInputBytes,
		ConfigHash:    s.hash,
		AuditLogPath:  auditPath,
		Version:       version,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "icscheck MCP server running on stdio")
	return srv.Run(ctx)
}
