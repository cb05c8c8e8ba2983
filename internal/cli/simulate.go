package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/icscheck/internal/sim"
)

var (
	simulateFormat     string
	simulateRegression bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVarP(&simulateFormat, "format", "f", "text", "Output format (text|json)")
	simulateCmd.Flags().BoolVar(&simulateRegression, "fail-on-regression", false, "Exit 1 when any instruction newly fails")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <old> <new> <path>...",
	Short: "Show how a config change affects a corpus of instructions",
	Long: "Validates every instruction under the given files and directories with two\n" +
		"configurations and lists the instructions whose verdict or rules change.\n" +
		"Configurations are config file paths or profile:NAME.",
	Args: usageArgs(cobra.MinimumNArgs(3)),
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	oldSide, err := simSide(args[0])
	if err != nil {
		return &exitError{code: exitBadInput, err: fmt.Errorf("load old config: %w", err)}
	}
	newSide, err := simSide(args[1])
	if err != nil {
		return &exitError{code: exitBadInput, err: fmt.Errorf("load new config: %w", err)}
	}

	result, err := sim.Simulate(args[2:], oldSide, newSide)
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}

	switch simulateFormat {
	case "json":
		s, err := sim.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), s)
	default:
		fmt.Fprint(out(cmd), sim.FormatText(result))
	}

	if simulateRegression && result.NewlyFailing > 0 {
		return &exitError{code: exitNonCompliant, err: fmt.Errorf("%d instructions newly fail", result.NewlyFailing)}
	}
	return nil
}

func simSide(arg string) (sim.Side, error) {
	cfg, err := loadDiffSide(arg)
	if err != nil {
		return sim.Side{}, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return sim.Side{}, err
	}
	return sim.Side{
		Name:           arg,
		Options:        opts,
		FailOnWarnings: cfg.Output.FailOnWarnings,
		MaxInputBytes:  cfg.Limits.MaxInputBytes,
	}, nil
}
