package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/audit"
	"github.com/ppiankov/icscheck/internal/client"
	"github.com/ppiankov/icscheck/internal/history"
	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/report"
	"github.com/ppiankov/icscheck/internal/validate"
)

var (
	validateFormat         string
	validateRemote         string
	validateColor          bool
	validateFailOnWarnings bool
	validateHistory        bool
	validateAuditLog       string
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "", "Output format: text or json (default from config)")
	validateCmd.Flags().StringVar(&validateRemote, "remote", "", "Validate on a remote icscheck server (host:port)")
	validateCmd.Flags().BoolVar(&validateColor, "color", false, "Colorize text output")
	validateCmd.Flags().BoolVar(&validateFailOnWarnings, "fail-on-warnings", false, "Exit 1 when the report has warnings")
	validateCmd.Flags().BoolVar(&validateHistory, "history", false, "Record the run in the history database")
	validateCmd.Flags().StringVar(&validateAuditLog, "audit-log", "", "Append the run to a hash-chained audit log")
}

var validateCmd = &cobra.Command{
	Use:   "validate [path|-]",
	Short: "Validate an instruction",
	Long: "Reads an instruction from a file or stdin and reports every violation.\n" +
		"Exit status: 0 compliant, 1 non-compliant, 2 input unreadable or not text.",
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	if cmd.Flags().Changed("format") {
		s.cfg.Output.Format = validateFormat
	}
	if cmd.Flags().Changed("color") {
		s.cfg.Output.Color = validateColor
	}
	if cmd.Flags().Changed("fail-on-warnings") {
		s.cfg.Output.FailOnWarnings = validateFailOnWarnings
	}
	if validateHistory {
		s.cfg.History.Enabled = true
	}
	if validateAuditLog != "" {
		s.cfg.Audit.Path = validateAuditLog
	}
	if err := s.cfg.Check(); err != nil {
		return &exitError{code: exitBadInput, err: err}
	}

	text, source, err := readInput(cmd, args, s.cfg.Limits.MaxInputBytes)
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := check(ctx, text, s.options)
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	logger.Info("validated",
		zap.String("source", source),
		zap.Bool("compliant", r.Compliant),
		zap.Int("errors", r.Errors()),
		zap.Int("warnings", r.Warnings()))

	run := history.NewRun(source, audit.HashLine([]byte(text)), s.hash, r)
	if err := record(ctx, s, run, text); err != nil {
		return &exitError{code: exitBadInput, err: err}
	}

	if err := printReport(cmd, r, s.cfg.Output.Format, report.FormatOptions{Color: s.cfg.Output.Color, Source: source}); err != nil {
		return err
	}
	return verdict(r, s.cfg.Output.FailOnWarnings)
}

func check(ctx context.Context, text string, opts validate.Options) (*model.Report, error) {
	if validateRemote == "" {
		return validate.Validate(text, opts), nil
	}
	c, err := client.New(validateRemote)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Validate(ctx, text)
}

// record writes the run to the audit log and history store when enabled.
func record(ctx context.Context, s *settings, run history.Run, text string) error {
	if s.cfg.Audit.Path != "" {
		l, err := audit.Open(s.cfg.Audit.Path)
		if err != nil {
			return err
		}
		err = l.Record(audit.NewEntry(run.ID, run.Source, text, run.Report, s.hash))
		l.Close()
		if err != nil {
			return err
		}
	}
	if s.cfg.History.Enabled {
		store, err := history.Open(s.cfg.History.Path, history.WithLogger(logger))
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.Record(ctx, run); err != nil {
			return err
		}
	}
	return nil
}

func printReport(cmd *cobra.Command, r *model.Report, format string, opts report.FormatOptions) error {
	if format == "json" {
		data, err := report.FormatJSON(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), data)
		return nil
	}
	fmt.Fprint(out(cmd), report.FormatText(r, opts))
	return nil
}

func verdict(r *model.Report, failOnWarnings bool) error {
	if !r.Compliant || (failOnWarnings && r.Warnings() > 0) {
		return &exitError{code: exitNonCompliant}
	}
	return nil
}
