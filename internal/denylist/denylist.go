// Package denylist holds the phrases that mark an output contract variance
// as unenumerated.
package denylist

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Patterns holds the raw phrase strings.
type Patterns struct {
	Phrases []string `yaml:"phrases" toml:"phrases"`
}

// Denylist matches values against normalized phrases.
type Denylist struct {
	phrases []string // lower-cased, whitespace-collapsed
	raw     Patterns
}

// New creates a Denylist from raw patterns. Empty and duplicate phrases
// are dropped.
func New(p Patterns) *Denylist {
	d := &Denylist{}
	for _, phrase := range p.Phrases {
		d.AddPhrase(phrase)
	}
	return d
}

// NewDefault creates a Denylist with the built-in phrases.
func NewDefault() *Denylist {
	return New(DefaultPatterns)
}

// Load reads phrases from a YAML file and merges them with the defaults.
// Empty path falls back to ~/.icscheck/denylist.yaml. A missing file
// returns the defaults.
func Load(path string) (*Denylist, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return NewDefault(), nil
		}
		path = filepath.Join(home, ".icscheck", "denylist.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, err
	}

	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	d := NewDefault()
	for _, phrase := range p.Phrases {
		d.AddPhrase(phrase)
	}
	return d, nil
}

// Match reports the first phrase contained in value, case-insensitively
// and ignoring whitespace differences.
func (d *Denylist) Match(value string) (string, bool) {
	if d == nil {
		return "", false
	}
	norm := normalize(value)
	for _, phrase := range d.phrases {
		if containsWord(norm, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// AddPhrase adds a phrase at runtime.
func (d *Denylist) AddPhrase(phrase string) {
	norm := normalize(phrase)
	if norm == "" {
		return
	}
	for _, existing := range d.phrases {
		if existing == norm {
			return
		}
	}
	d.phrases = append(d.phrases, norm)
	d.raw.Phrases = append(d.raw.Phrases, phrase)
}

// Phrases returns the normalized phrases in insertion order.
func (d *Denylist) Phrases() []string {
	out := make([]string, len(d.phrases))
	copy(out, d.phrases)
	return out
}

// ToPatterns returns the raw phrases for serialization.
func (d *Denylist) ToPatterns() Patterns {
	return Patterns{Phrases: append([]string(nil), d.raw.Phrases...)}
}

// containsWord matches phrase at word boundaries. Punctuation counts as a
// boundary, so "as needed." and "flexible;" match.
func containsWord(norm, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(norm[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isWordByte(norm[i-1])
		after := i+len(phrase) >= len(norm) || !isWordByte(norm[i+len(phrase)])
		if before && after {
			return true
		}
		start = i + 1
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c >= 0x80
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
