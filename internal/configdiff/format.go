package configdiff

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders the diff result as human-readable text.
func FormatText(r *DiffResult) string {
	if !r.HasChanges {
		return fmt.Sprintf("Config diff: %s -> %s\n\nNo changes detected.\n", r.OldPath, r.NewPath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Config diff: %s -> %s\n", r.OldPath, r.NewPath)

	if len(r.Changes) > 0 {
		b.WriteString("\n")
		for _, c := range r.Changes {
			fmt.Fprintf(&b, "  %-28s %s -> %s", c.Field+":", orNone(c.Old), orNone(c.New))
			if c.Comment != "" {
				fmt.Fprintf(&b, "  (%s)", c.Comment)
			}
			b.WriteString("\n")
		}
	}

	if len(r.PhraseChanges) > 0 {
		b.WriteString("\n  Variance phrases:\n")
		for _, pc := range r.PhraseChanges {
			switch pc.Type {
			case "added":
				fmt.Fprintf(&b, "    + %s\n", pc.Phrase)
			case "removed":
				fmt.Fprintf(&b, "    - %s\n", pc.Phrase)
			}
		}
	}
	return b.String()
}

// FormatJSON renders the diff result as JSON.
func FormatJSON(r *DiffResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal diff result: %w", err)
	}
	return string(data), nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
