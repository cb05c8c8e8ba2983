package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/config"
	"github.com/ppiankov/icscheck/internal/profile"
	"github.com/ppiankov/icscheck/internal/validate"
)

// settings is the merged configuration for one command run.
type settings struct {
	cfg     *config.Config
	hash    string
	options validate.Options
}

// loadSettings reads the config file, applies --profile and builds the
// validator options.
func loadSettings() (*settings, error) {
	cfg, hash, err := config.LoadConfigWithHash(configPath)
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		p, err := profile.Load(profileName)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		cfg = profile.ApplyToConfig(p, cfg)
		logger.Debug("profile applied", zap.String("profile", profileName))
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, hash: hash, options: opts}, nil
}

// reloadOptions is the server hot-reload hook.
func reloadOptions() (validate.Options, string, error) {
	s, err := loadSettings()
	if err != nil {
		return validate.Options{}, "", err
	}
	return s.options, s.hash, nil
}

// readInput reads the instruction named by args: a path, "-" or nothing
// for stdin. It returns the text and a source label.
func readInput(cmd *cobra.Command, args []string, maxBytes int64) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		text, err := validate.Read(cmd.InOrStdin(), maxBytes)
		return text, "stdin", err
	}
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return "", path, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	text, err := validate.Read(f, maxBytes)
	if err != nil {
		return "", path, fmt.Errorf("%s: %w", path, err)
	}
	return text, path, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
