package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/icscheck/internal/config"
	"github.com/ppiankov/icscheck/internal/denylist"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config files")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.icscheck with a default config and deny-list",
	Long: `Creates the config directory, config.yaml with built-in defaults,
denylist.yaml with the built-in vague phrases, and an empty profiles directory.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := config.Dir()
	if err := os.MkdirAll(filepath.Join(dir, "profiles"), 0o755); err != nil {
		return fmt.Errorf("create profiles directory: %w", err)
	}

	var created []string

	denylistPath := filepath.Join(dir, "denylist.yaml")
	dl, err := yaml.Marshal(denylist.DefaultPatterns)
	if err != nil {
		return fmt.Errorf("generate default denylist: %w", err)
	}
	if wrote, err := writeIfMissing(denylistPath, string(dl)); err != nil {
		return err
	} else if wrote {
		created = append(created, denylistPath)
	}

	cfg := config.DefaultConfig()
	cfg.Variance.Denylist = denylistPath
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("generate default config: %w", err)
	}
	cfgPath := config.DefaultPath()
	if wrote, err := writeIfMissing(cfgPath, string(data)); err != nil {
		return err
	} else if wrote {
		created = append(created, cfgPath)
	}

	fmt.Fprintln(out(cmd), "icscheck init complete.")
	if len(created) == 0 {
		fmt.Fprintln(out(cmd), "All files already exist (use --force to overwrite).")
		return nil
	}
	fmt.Fprintln(out(cmd), "Created:")
	for _, path := range created {
		fmt.Fprintf(out(cmd), "  %s\n", path)
	}
	return nil
}

func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
