package sim

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verdicts as shown in a diff entry.
const (
	VerdictPass = "pass"
	VerdictFail = "fail"
)

// DiffEntry is one file whose outcome changed.
type DiffEntry struct {
	Path         string   `json:"path"`
	OldVerdict   string   `json:"old_verdict"`
	NewVerdict   string   `json:"new_verdict"`
	RulesAdded   []string `json:"rules_added,omitempty"`
	RulesRemoved []string `json:"rules_removed,omitempty"`
}

// SkippedFile is a file that could not be validated.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// SimResult holds the complete simulation output.
type SimResult struct {
	OldName      string        `json:"old"`
	NewName      string        `json:"new"`
	TotalFiles   int           `json:"total_files"`
	ChangedFiles int           `json:"changed_files"`
	NewlyFailing int           `json:"newly_failing"`
	NewlyPassing int           `json:"newly_passing"`
	Changes      []DiffEntry   `json:"changes"`
	Skipped      []SkippedFile `json:"skipped,omitempty"`
}

// FormatText renders the simulation result as human-readable text.
func FormatText(r *SimResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Simulating %s -> %s against %d instructions...\n", r.OldName, r.NewName, r.TotalFiles)

	if len(r.Changes) == 0 {
		b.WriteString("\nNo changes detected.\n")
	} else {
		b.WriteString("\n")
		for _, d := range r.Changes {
			fmt.Fprintf(&b, "  CHANGED  %-40s %s -> %s\n", truncate(d.Path, 40), d.OldVerdict, d.NewVerdict)
			for _, rule := range d.RulesAdded {
				fmt.Fprintf(&b, "           + %s\n", rule)
			}
			for _, rule := range d.RulesRemoved {
				fmt.Fprintf(&b, "           - %s\n", rule)
			}
		}
		fmt.Fprintf(&b, "\n%d of %d instructions changed.", r.ChangedFiles, r.TotalFiles)
		if r.NewlyFailing > 0 || r.NewlyPassing > 0 {
			fmt.Fprintf(&b, " %d newly failing, %d newly passing.", r.NewlyFailing, r.NewlyPassing)
		}
		b.WriteString("\n")
	}

	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "  SKIPPED  %s: %s\n", s.Path, s.Reason)
	}
	return b.String()
}

// FormatJSON renders the simulation result as JSON.
func FormatJSON(r *SimResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sim result: %w", err)
	}
	return string(data), nil
}

// truncate keeps the tail of long paths, where the file name is.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}
