package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/config"
	"github.com/ppiankov/icscheck/internal/ratelimit"
	"github.com/ppiankov/icscheck/internal/server"
)

var (
	servePort     int
	serveAuditLog string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 50051, "gRPC listen port")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", "", "Path to audit log JSONL file (default from config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC validation server",
	Long: "Serves icscheck.v1.Validator/Validate and the standard health service.\n" +
		"Configuration and deny-list files are reloaded when they change.",
	Args: usageArgs(cobra.NoArgs),
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	auditPath := s.cfg.Audit.Path
	if serveAuditLog != "" {
		auditPath = serveAuditLog
	}

	srv, err := server.New(server.Config{
		Port:          servePort,
		Options:       s.options,
		MaxInputBytes: s.cfg.Limits.MaxInputBytes,
		RateLimit:     ratelimit.PerMinute(s.cfg.Limits.RequestsPerMinute),
		ConfigHash:    s.hash,
		AuditLogPath:  auditPath,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	cfgFile := configPath
	if cfgFile == "" {
		cfgFile = config.DefaultPath()
	}
	reloader, err := server.NewReloader(srv, []string{cfgFile, s.cfg.Variance.Denylist}, reloadOptions)
	if err != nil {
		logger.Warn("hot-reload disabled", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if reloader != nil {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down validation server...")
		cancel()
		srv.GracefulStop()
	}()

	fmt.Fprintf(os.Stderr, "icscheck validation server listening on :%d\n", servePort)
	if profileName != "" {
		fmt.Fprintf(os.Stderr, "Profile: %s\n", profileName)
	}
	return srv.Serve()
}
