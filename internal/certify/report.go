package certify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders a certification result as human-readable text.
func FormatText(r *CertResult) string {
	var b strings.Builder

	header := fmt.Sprintf("Certification: %s v%s (profile %s)", r.Suite, r.Version, r.Profile)
	fmt.Fprintln(&b, header)
	fmt.Fprintln(&b, strings.Repeat("=", len(header)))

	for _, cat := range r.Categories {
		status := "PASS"
		if cat.Failed > 0 {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %-30s %d/%-4d %s\n", cat.Name, cat.Passed, cat.Total, status)

		for _, c := range cat.Cases {
			if c.Passed {
				continue
			}
			name := c.Name
			if len(name) > 40 {
				name = name[:37] + "..."
			}
			switch {
			case c.Error != "":
				fmt.Fprintf(&b, "    FAIL  case %d: %-40s %s\n", c.Index, name, c.Error)
			case len(c.Missing) > 0:
				fmt.Fprintf(&b, "    FAIL  case %d: %-40s missing %s (got %s)\n",
					c.Index, name, strings.Join(c.Missing, ", "), strings.Join(c.Rules, ", "))
			default:
				fmt.Fprintf(&b, "    FAIL  case %d: %-40s expected %s, got %s\n",
					c.Index, name, c.Expected, c.Actual)
			}
		}
	}

	fmt.Fprintln(&b, strings.Repeat("-", len(header)))

	status := "PASS"
	if r.Failed > 0 {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "Result: %s (%d/%d)\n", status, r.Passed, r.Total)

	return b.String()
}

// FormatJSON renders a certification result as JSON.
func FormatJSON(r *CertResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cert result: %w", err)
	}
	return string(data), nil
}
