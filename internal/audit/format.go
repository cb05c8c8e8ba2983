package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const separator = "------------------------------------------------------------------"

// FormatTimeline renders a ReplayResult as a text timeline.
func FormatTimeline(result *ReplayResult) string {
	if len(result.Entries) == 0 {
		return "No audit entries found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Audit: %s to %s UTC\n",
		formatDateTime(result.Summary.FirstTimestamp), formatDateTime(result.Summary.LastTimestamp))
	b.WriteString(separator + "\n")

	for _, e := range result.Entries {
		verdict := "PASS"
		if !e.Compliant {
			verdict = "FAIL"
		}
		fmt.Fprintf(&b, "%-10s %-4s %2dE %2dW  %-36s %s\n",
			formatTimeOnly(e.Timestamp), verdict, e.Errors, e.Warnings, truncate(e.Source, 36), shortID(e.RunID))
	}

	b.WriteString(separator + "\n")
	s := result.Summary
	fmt.Fprintf(&b, "Summary: %d runs, %d compliant, %d non-compliant | %d errors, %d warnings\n",
		s.Total, s.Compliant, s.NonCompliant, s.Errors, s.Warnings)
	return b.String()
}

// FormatJSON renders a ReplayResult as indented JSON.
func FormatJSON(result *ReplayResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal replay result: %w", err)
	}
	return string(data), nil
}

func formatDateTime(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
