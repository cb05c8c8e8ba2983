package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/icscheck/internal/config"
	"github.com/ppiankov/icscheck/internal/profile"
)

var profileInitOutput string

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileCheckCmd)
	profileCmd.AddCommand(profileInitCmd)
	profileInitCmd.Flags().StringVarP(&profileInitOutput, "output", "o", "", "Output path (default: ~/.icscheck/profiles/<name>.yaml)")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage validation profiles",
	Long:  "List, check and create named bundles of validator settings.",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runProfileList,
}

var profileCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Validate a profile loads cleanly and show its effect",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  runProfileCheck,
}

var profileInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Generate a starter profile template",
	Long:  "Creates a commented YAML profile template that you can customize.",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  runProfileInit,
}

func runProfileList(cmd *cobra.Command, args []string) error {
	names := profile.List()
	fmt.Fprintln(out(cmd), "Available profiles:")
	for _, name := range names {
		p, err := profile.Load(name)
		if err != nil {
			fmt.Fprintf(out(cmd), "  %-15s (error loading: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(out(cmd), "  %-15s %s\n", name, p.Description)
	}
	return nil
}

func runProfileCheck(cmd *cobra.Command, args []string) error {
	name := args[0]
	p, err := profile.Load(name)
	if err != nil {
		return &exitError{code: exitNonCompliant, err: fmt.Errorf("failed to load profile %q: %w", name, err)}
	}
	if err := profile.Validate(p); err != nil {
		return &exitError{code: exitNonCompliant, err: fmt.Errorf("profile %q is invalid: %w", name, err)}
	}

	cfg := profile.ApplyToConfig(p, config.DefaultConfig())
	fmt.Fprintf(out(cmd), "Profile %q (%s) is valid.\n", name, p.Name)
	fmt.Fprintf(out(cmd), "  Sentinel fold case:    %v\n", cfg.Sentinel.FoldCase)
	fmt.Fprintf(out(cmd), "  Restatement minimum:   %d bytes\n", cfg.Restatement.MinLength)
	fmt.Fprintf(out(cmd), "  Extra vague phrases:   %d\n", len(p.Variance.Phrases))
	fmt.Fprintf(out(cmd), "  Fail on warnings:      %v\n", cfg.Output.FailOnWarnings)
	return nil
}

func runProfileInit(cmd *cobra.Command, args []string) error {
	name := args[0]

	outPath := profileInitOutput
	if outPath == "" {
		outPath = filepath.Join(config.Dir(), "profiles", name+".yaml")
	}

	// Refuse to overwrite existing files
	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("file already exists: %s (remove it first or use --output)", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(profile.InitProfile(name)), 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	fmt.Fprintf(out(cmd), "Created profile template: %s\n", outPath)
	fmt.Fprintf(out(cmd), "Use it with: icscheck validate --profile %s <file>\n", name)
	return nil
}
