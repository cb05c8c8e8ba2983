package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/icscheck/internal/config"
	"github.com/ppiankov/icscheck/internal/configdiff"
	"github.com/ppiankov/icscheck/internal/profile"
)

const profilePrefix = "profile:"

var diffFormat string

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text", "Output format (text|json)")
}

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Compare two configurations and show changes",
	Long: "Loads two config files (YAML or TOML) and shows what changed, marking each\n" +
		"setting as stricter or looser. Use profile:NAME to compare a built-in profile\n" +
		"applied to the default configuration.",
	Args: usageArgs(cobra.ExactArgs(2)),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldCfg, err := loadDiffSide(args[0])
	if err != nil {
		return &exitError{code: exitBadInput, err: fmt.Errorf("load old config: %w", err)}
	}
	newCfg, err := loadDiffSide(args[1])
	if err != nil {
		return &exitError{code: exitBadInput, err: fmt.Errorf("load new config: %w", err)}
	}

	result := configdiff.Diff(oldCfg, newCfg)
	result.OldPath = args[0]
	result.NewPath = args[1]

	switch diffFormat {
	case "json":
		s, err := configdiff.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), s)
	default:
		fmt.Fprint(out(cmd), configdiff.FormatText(result))
	}
	return nil
}

// loadDiffSide resolves a diff argument. Unlike config loading for
// validation, a missing file is an error here.
func loadDiffSide(arg string) (*config.Config, error) {
	if name, ok := strings.CutPrefix(arg, profilePrefix); ok {
		p, err := profile.Load(name)
		if err != nil {
			return nil, err
		}
		return profile.ApplyToConfig(p, config.DefaultConfig()), nil
	}
	if _, err := os.Stat(arg); err != nil {
		return nil, err
	}
	return config.LoadConfig(arg)
}
