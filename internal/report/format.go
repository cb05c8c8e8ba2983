// Package report renders validation reports for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/icscheck/internal/model"
)

// FormatOptions controls text rendering.
type FormatOptions struct {
	// Color styles the verdict and severities with ANSI colors.
	Color bool
	// Source names the input in the header, e.g. a file path.
	Source string
}

var (
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3FB950"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E3B341"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B949E"))
)

// FormatText renders a report as human-readable text:
//
//	NON-COMPLIANT  instruction.ics (1 error, 1 warning)
//	  [ERROR]   session/MalformedSessionState (SESSION_STATE) line 11: ...
func FormatText(r *model.Report, opts FormatOptions) string {
	style := func(s lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	if r.Compliant {
		b.WriteString(style(passStyle, "COMPLIANT"))
	} else {
		b.WriteString(style(failStyle, "NON-COMPLIANT"))
	}
	if opts.Source != "" {
		b.WriteString("  " + opts.Source)
	}
	fmt.Fprintf(&b, " (%s, %s)\n", plural(r.Errors(), "error"), plural(r.Warnings(), "warning"))

	for _, v := range r.Violations {
		sev := fmt.Sprintf("%-9s", "["+string(v.Severity)+"]")
		if v.Severity == model.SeverityError {
			sev = style(errorStyle, sev)
		} else {
			sev = style(warnStyle, sev)
		}
		fmt.Fprintf(&b, "  %s %s/%s", sev, v.Stage, v.RuleID)
		if v.Layer != "" {
			fmt.Fprintf(&b, " (%s)", v.Layer)
		}
		if v.Line > 0 {
			b.WriteString(style(dimStyle, fmt.Sprintf(" line %d", v.Line)))
		}
		fmt.Fprintf(&b, ": %s\n", v.Message)
	}
	return b.String()
}

// FormatJSON renders a report as indented JSON.
func FormatJSON(r *model.Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data), nil
}

// FormatDirectives renders parsed directives as a table followed by any
// grammar violations.
func FormatDirectives(directives []model.Directive, violations []model.Violation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-8s %-40s %-28s %s\n", "LINE", "KEYWORD", "ACTION", "QUALIFIER", "CONDITION")
	for _, d := range directives {
		qual := "-"
		if kind, target, ok := d.Qualifier.Get(); ok {
			qual = string(kind) + " " + target
		}
		cond := "-"
		if text, ok := d.Condition.Get(); ok {
			cond = text
		}
		fmt.Fprintf(&b, "%-5d %-8s %-40s %-28s %s\n", d.Line, d.Keyword, truncate(d.Action, 40), truncate(qual, 28), cond)
	}
	fmt.Fprintf(&b, "\n%s parsed.\n", plural(len(directives), "directive"))

	if len(violations) > 0 {
		b.WriteString("\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "  [%s] line %d %s: %s\n", v.Severity, v.Line, v.RuleID, v.Message)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
