package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/icscheck/internal/certify"
)

var (
	certifySuite  string
	certifyFormat string
)

func init() {
	rootCmd.AddCommand(certifyCmd)
	certifyCmd.Flags().StringVar(&certifySuite, "suite", "core", "Certification suite")
	certifyCmd.Flags().StringVarP(&certifyFormat, "format", "f", "text", "Output format (text|json)")
}

var certifyCmd = &cobra.Command{
	Use:   "certify",
	Short: "Check the validator configuration against a suite of known instructions",
	Long: "Runs a curated set of instructions with known outcomes through the\n" +
		"validator, using the current config and profile, and reports pass/fail\n" +
		"per category. Exit code 0 if all cases pass, 1 if any fail.\n\n" +
		"Available suites: " + fmt.Sprintf("%v", certify.ListSuites()),
	Args: usageArgs(cobra.NoArgs),
	RunE: runCertify,
}

func runCertify(cmd *cobra.Command, args []string) error {
	suite, err := certify.LoadSuite(certifySuite)
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}
	s, err := loadSettings()
	if err != nil {
		return &exitError{code: exitBadInput, err: err}
	}

	name := profileName
	if name == "" {
		name = "default"
	}
	result := certify.Run(suite, name, s.options)

	switch certifyFormat {
	case "json":
		data, err := certify.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), data)
	default:
		fmt.Fprint(out(cmd), certify.FormatText(result))
	}

	if result.Failed > 0 {
		return &exitError{code: exitNonCompliant}
	}
	return nil
}
