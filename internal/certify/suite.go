// Package certify runs embedded suites of instructions with known outcomes
// against a validator configuration.
package certify

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed suites/*.yaml
var suiteFS embed.FS

//go:embed fixtures/*.ics
var fixtureFS embed.FS

// Expected outcomes.
const (
	ExpectCompliant    = "compliant"
	ExpectNonCompliant = "non_compliant"
)

// Suite is a versioned collection of certification categories.
type Suite struct {
	Name       string     `yaml:"name"`
	Version    string     `yaml:"version"`
	Categories []Category `yaml:"categories"`
}

// Category groups related cases under a named heading.
type Category struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// Case is one instruction with its expected outcome. The instruction is
// either given inline or derived from a named fixture by removing whole
// layers, applying literal replacements and appending text, in that order.
type Case struct {
	Name        string   `yaml:"name"`
	Base        string   `yaml:"base,omitempty"`
	Instruction string   `yaml:"instruction,omitempty"`
	Remove      []string `yaml:"remove,omitempty"`
	Replace     []Edit   `yaml:"replace,omitempty"`
	Append      string   `yaml:"append,omitempty"`
	Expect      string   `yaml:"expect"`
	Rules       []string `yaml:"rules,omitempty"`
}

// Edit replaces the first occurrence of Old with New.
type Edit struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// Build assembles the case's instruction text.
func (c Case) Build() (string, error) {
	text := c.Instruction
	if c.Base != "" {
		data, err := fixtureFS.ReadFile(path.Join("fixtures", c.Base))
		if err != nil {
			return "", fmt.Errorf("unknown fixture %q", c.Base)
		}
		text = string(data)
	}
	if text == "" {
		return "", fmt.Errorf("case %q has neither base nor instruction", c.Name)
	}

	for _, name := range c.Remove {
		open := "###ICS:" + name + "###"
		end := "###END:" + name + "###"
		i := strings.Index(text, open)
		j := strings.Index(text, end)
		if i < 0 || j < i {
			return "", fmt.Errorf("case %q: layer %s not found in %s", c.Name, name, c.Base)
		}
		text = text[:i] + text[j+len(end):]
	}
	for _, e := range c.Replace {
		if !strings.Contains(text, e.Old) {
			return "", fmt.Errorf("case %q: text %q not found", c.Name, e.Old)
		}
		text = strings.Replace(text, e.Old, e.New, 1)
	}
	return text + c.Append, nil
}

// LoadSuite loads a built-in certification suite by name.
func LoadSuite(name string) (*Suite, error) {
	data, err := suiteFS.ReadFile(path.Join("suites", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown certification suite: %q", name)
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite %q: %w", name, err)
	}
	return &s, nil
}

// ListSuites returns sorted names of all built-in certification suites.
func ListSuites() []string {
	entries, _ := suiteFS.ReadDir("suites")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
