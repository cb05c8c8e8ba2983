package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/report"
	"github.com/ppiankov/icscheck/internal/validate"
)

func init() {
	rootCmd.AddCommand(directivesCmd)
}

var directivesCmd = &cobra.Command{
	Use:   "directives [path|-]",
	Short: "Print the parsed capability directives of an instruction",
	Long: "Parses the CAPABILITY_DECLARATION layer and prints one row per directive,\n" +
		"followed by any grammar violations. Exits 1 when the instruction is\n" +
		"structurally broken or a directive line does not parse.",
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runDirectives,
}

func runDirectives(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	text, source, err := readInput(cmd, args, s.cfg.Limits.MaxInputBytes)
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}

	res := validate.Run(text, s.options)
	if res.Layers == nil {
		fmt.Fprint(out(cmd), report.FormatText(res.Report, report.FormatOptions{Source: source}))
		return &exitError{code: exitNonCompliant}
	}

	var grammar []model.Violation
	for _, v := range res.Report.Violations {
		if v.Stage == model.StageDirective {
			grammar = append(grammar, v)
		}
	}
	fmt.Fprint(out(cmd), report.FormatDirectives(res.Directives, grammar))
	if len(grammar) > 0 {
		return &exitError{code: exitNonCompliant}
	}
	return nil
}
