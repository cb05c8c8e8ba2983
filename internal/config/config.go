// Package config loads icscheck settings from YAML or TOML.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/icscheck/internal/consistency"
	"github.com/ppiankov/icscheck/internal/denylist"
	"github.com/ppiankov/icscheck/internal/validate"
)

// Sentinel controls matching of the session CLEAR sentinel.
type Sentinel struct {
	FoldCase bool `yaml:"fold_case" toml:"fold_case"`
}

// Restatement tunes cross-layer restatement detection.
type Restatement struct {
	MinLength int `yaml:"min_length" toml:"min_length"`
}

// Variance extends the vague-phrase deny-list.
type Variance struct {
	Phrases  []string `yaml:"phrases" toml:"phrases"`
	Denylist string   `yaml:"denylist" toml:"denylist"`
}

// Limits bounds input accepted by the CLI and servers.
type Limits struct {
	MaxInputBytes     int64 `yaml:"max_input_bytes" toml:"max_input_bytes"`
	RequestsPerMinute int   `yaml:"requests_per_minute" toml:"requests_per_minute"` // per gRPC peer; 0 is unlimited
}

// Output controls report rendering and exit status.
type Output struct {
	Format         string `yaml:"format" toml:"format"`
	Color          bool   `yaml:"color" toml:"color"`
	FailOnWarnings bool   `yaml:"fail_on_warnings" toml:"fail_on_warnings"`
}

// History configures the SQLite run history.
type History struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Audit configures the hash-chained audit log. Empty Path disables it.
type Audit struct {
	Path string `yaml:"path" toml:"path"`
}

// Config holds all configurable parameters.
type Config struct {
	Sentinel    Sentinel    `yaml:"sentinel" toml:"sentinel"`
	Restatement Restatement `yaml:"restatement" toml:"restatement"`
	Variance    Variance    `yaml:"variance" toml:"variance"`
	Limits      Limits      `yaml:"limits" toml:"limits"`
	Output      Output      `yaml:"output" toml:"output"`
	History     History     `yaml:"history" toml:"history"`
	Audit       Audit       `yaml:"audit" toml:"audit"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Restatement: Restatement{MinLength: consistency.DefaultMinRestatementLen},
		Limits:      Limits{MaxInputBytes: validate.DefaultMaxInputBytes},
		Output:      Output{Format: "text"},
		History:     History{Path: filepath.Join(Dir(), "history.db")},
	}
}

// Dir returns ~/.icscheck, or .icscheck when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".icscheck"
	}
	return filepath.Join(home, ".icscheck")
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by
// extension. Empty path falls back to ~/.icscheck/config.yaml.
// Missing file returns defaults. Invalid content returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads configuration and returns the SHA-256 of the raw
// file bytes. When no file exists the hash is that of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), hashOf(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, the file overwrites only specified fields
	cfg := DefaultConfig()
	if err := decode(path, data, cfg); err != nil {
		return nil, "", err
	}
	if err := cfg.Check(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, hashOf(data), nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	return nil
}

func hashOf(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// Check rejects values the validator cannot use.
func (c *Config) Check() error {
	if c.Restatement.MinLength < 0 {
		return fmt.Errorf("restatement.min_length must not be negative, got %d", c.Restatement.MinLength)
	}
	if c.Limits.MaxInputBytes < 0 {
		return fmt.Errorf("limits.max_input_bytes must not be negative, got %d", c.Limits.MaxInputBytes)
	}
	if c.Limits.RequestsPerMinute < 0 {
		return fmt.Errorf("limits.requests_per_minute must not be negative, got %d", c.Limits.RequestsPerMinute)
	}
	switch c.Output.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	return nil
}

// Options converts the configuration to validator options. Configured
// phrases and the optional deny-list file extend the built-in list.
func (c *Config) Options() (validate.Options, error) {
	dl := denylist.NewDefault()
	if c.Variance.Denylist != "" {
		loaded, err := denylist.Load(c.Variance.Denylist)
		if err != nil {
			return validate.Options{}, fmt.Errorf("load variance deny-list: %w", err)
		}
		dl = loaded
	}
	for _, p := range c.Variance.Phrases {
		dl.AddPhrase(p)
	}
	return validate.Options{
		FoldSentinelCase:  c.Sentinel.FoldCase,
		MinRestatementLen: c.Restatement.MinLength,
		VariancePhrases:   dl,
	}, nil
}
