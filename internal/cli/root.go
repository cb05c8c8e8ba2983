// Package cli implements the icscheck command tree.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/logging"
)

// Exit statuses.
const (
	exitOK           = 0
	exitNonCompliant = 1
	exitBadInput     = 2
)

var (
	configPath  string
	profileName string
	logLevel    string
	logFormat   string

	logger = logging.Nop()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file, YAML or TOML (default ~/.icscheck/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Validation profile to apply (default, strict, lenient or a user profile)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env "+logging.EnvLogLevel+")")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log encoding: console or json (env "+logging.EnvLogFormat+")")

	// Subcommands inherit this unless they set their own.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: exitBadInput, err: err}
	})
}

// usageArgs marks positional argument errors as bad input.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &exitError{code: exitBadInput, err: err}
		}
		return nil
	}
}

var rootCmd = &cobra.Command{
	Use:   "icscheck",
	Short: "Validate Instruction Context Standard instructions",
	Long: "Checks that an instruction is split into the five ICS layers in canonical\n" +
		"order and that each layer follows its grammar. Structural failures stop the\n" +
		"check; content findings are collected and reported together.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Options{Level: logLevel, Format: logFormat})
		if err != nil {
			return &exitError{code: exitBadInput, err: err}
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// exitError carries a process exit status out of RunE. A nil err means
// the command already reported its outcome.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// Execute runs the root command and exits with its status.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute()))
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "icscheck: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "icscheck: %v\n", err)
	logger.Debug("command failed", zap.Error(err))
	return exitNonCompliant
}
