package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/icscheck/internal/history"
	"github.com/ppiankov/icscheck/internal/report"
)

var (
	historyLimit int
	historyJSON  bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of recent runs to list")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "Print JSON")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent validation runs",
	Long:  "Lists runs recorded with validate --history or history.enabled, newest first.",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the full report of one recorded run",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  runHistoryShow,
}

func openHistory() (*history.Store, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return history.Open(s.cfg.History.Path, history.WithLogger(logger))
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	defer store.Close()

	runs, err := store.List(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}
	if len(runs) == 0 {
		fmt.Fprintln(out(cmd), "No runs recorded.")
		return nil
	}

	w := out(cmd)
	fmt.Fprintf(w, "%-36s  %-19s  %-7s  %6s  %8s  %s\n", "ID", "TIME", "VERDICT", "ERRORS", "WARNINGS", "SOURCE")
	for _, r := range runs {
		verdict := "PASS"
		if !r.Compliant {
			verdict = "FAIL"
		}
		fmt.Fprintf(w, "%-36s  %-19s  %-7s  %6d  %8d  %s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), verdict, r.Errors, r.Warnings, r.Source)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	defer store.Close()

	run, err := store.Get(context.Background(), args[0])
	if errors.Is(err, history.ErrNotFound) {
		return &exitError{code: exitNonCompliant, err: fmt.Errorf("run %q not found", args[0])}
	}
	if err != nil {
		return err
	}
	if historyJSON {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}
	fmt.Fprintf(out(cmd), "Run %s at %s\n", run.ID, run.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprint(out(cmd), report.FormatText(run.Report, report.FormatOptions{Source: run.Source}))
	return nil
}
