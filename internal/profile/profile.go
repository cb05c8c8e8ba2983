// Package profile provides named bundles of validator settings.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/icscheck/internal/config"
)

// SentinelOverride changes sentinel matching when set.
type SentinelOverride struct {
	FoldCase *bool `yaml:"fold_case"`
}

// RestatementOverride changes the restatement minimum when set.
type RestatementOverride struct {
	MinLength *int `yaml:"min_length"`
}

// VarianceOverride adds vague phrases.
type VarianceOverride struct {
	Phrases []string `yaml:"phrases"`
}

// Profile is a named, reusable bundle of config overrides. Unset fields
// leave the config untouched.
type Profile struct {
	Name           string              `yaml:"name"`
	Description    string              `yaml:"description"`
	Sentinel       SentinelOverride    `yaml:"sentinel"`
	Restatement    RestatementOverride `yaml:"restatement"`
	Variance       VarianceOverride    `yaml:"variance"`
	FailOnWarnings *bool               `yaml:"fail_on_warnings"`
}

// Load loads a profile by name. Checks built-in profiles first,
// then falls back to ~/.icscheck/profiles/<name>.yaml.
func Load(name string) (*Profile, error) {
	if data, ok := builtinProfiles[name]; ok {
		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse built-in profile %q: %w", name, err)
		}
		return &p, nil
	}

	if strings.ContainsAny(name, `/\`) || name == "" || name == "." || name == ".." {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	path := filepath.Join(config.Dir(), "profiles", name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile %q not found", name)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %q: %w", name, err)
	}
	if err := Validate(&p); err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}
	return &p, nil
}

// List returns sorted names of all available profiles (built-in + user).
func List() []string {
	seen := make(map[string]bool)
	for name := range builtinProfiles {
		seen[name] = true
	}

	entries, err := os.ReadDir(filepath.Join(config.Dir(), "profiles"))
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
				seen[name[:len(name)-len(ext)]] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that a profile is well-formed.
func Validate(p *Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if m := p.Restatement.MinLength; m != nil && *m < 1 {
		return fmt.Errorf("restatement.min_length must be positive, got %d", *m)
	}
	for i, phrase := range p.Variance.Phrases {
		if strings.TrimSpace(phrase) == "" {
			return fmt.Errorf("variance.phrases[%d]: empty phrase", i)
		}
	}
	return nil
}

// ApplyToConfig returns cfg with the profile's overrides applied.
// Phrases are appended. The input config is not mutated.
func ApplyToConfig(p *Profile, cfg *config.Config) *config.Config {
	merged := *cfg
	if p.Sentinel.FoldCase != nil {
		merged.Sentinel.FoldCase = *p.Sentinel.FoldCase
	}
	if p.Restatement.MinLength != nil {
		merged.Restatement.MinLength = *p.Restatement.MinLength
	}
	if len(p.Variance.Phrases) > 0 {
		merged.Variance.Phrases = make([]string, 0, len(cfg.Variance.Phrases)+len(p.Variance.Phrases))
		merged.Variance.Phrases = append(merged.Variance.Phrases, cfg.Variance.Phrases...)
		merged.Variance.Phrases = append(merged.Variance.Phrases, p.Variance.Phrases...)
	}
	if p.FailOnWarnings != nil {
		merged.Output.FailOnWarnings = *p.FailOnWarnings
	}
	return &merged
}

// InitProfile returns a commented YAML starter template for a new profile.
func InitProfile(name string) string {
	return fmt.Sprintf(`name: %s
description: Custom validation profile

# Match the session CLEAR sentinel case-insensitively.
# sentinel:
#   fold_case: true

# Shortest normalized run, in bytes, reported as restatement.
restatement:
  min_length: 40

# Extra vague phrases for the variance field.
variance:
  phrases:
    - "more or less"

# Treat warnings as failures (exit status 1).
# fail_on_warnings: true
`, name)
}
