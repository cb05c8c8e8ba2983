package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/report"
	"github.com/ppiankov/icscheck/internal/watch"
)

var watchFormat string

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "Output format: text or json (default from config)")
}

var watchCmd = &cobra.Command{
	Use:   "watch <path>...",
	Short: "Re-validate instruction files whenever they change",
	Long:  "Validates each file once, then again after every write. Runs until interrupted.",
	Args:  usageArgs(cobra.MinimumNArgs(1)),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	format := s.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format = watchFormat
	}

	var mu sync.Mutex
	handler := func(path string, r *model.Report, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			return
		}
		if err := printReport(cmd, r, format, report.FormatOptions{Color: s.cfg.Output.Color, Source: path}); err != nil {
			logger.Error("print report", zap.Error(err))
		}
	}

	w, err := watch.New(args, watch.Config{
		Options:       s.options,
		MaxInputBytes: s.cfg.Limits.MaxInputBytes,
		Logger:        logger,
	}, handler)
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "icscheck watching %d file(s); Ctrl-C to stop\n", len(args))
	return w.Run(ctx)
}
