// Package session checks the session layer's CLEAR sentinel rule.
package session

import (
	"strings"

	"github.com/ppiankov/icscheck/internal/model"
)

// Check classifies the session layer. Content that trims to exactly the
// sentinel is Cleared. A sentinel line next to any other non-blank line is
// MalformedSessionState. Anything else is an ordered list of entries with
// no further grammar.
//
// foldCase switches sentinel matching from exact to case-insensitive.
func Check(content string, foldCase bool) (model.SessionState, []model.Violation) {
	if isSentinel(strings.TrimSpace(content), foldCase) {
		return model.Cleared(), nil
	}

	var (
		entries      []string
		sentinelLine int
	)
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if sentinelLine == 0 && isSentinel(trimmed, foldCase) {
			sentinelLine = i + 1
		}
		entries = append(entries, trimmed)
	}

	if sentinelLine > 0 {
		return model.Entries(entries), []model.Violation{{
			Stage:    model.StageSession,
			Layer:    model.LayerSessionState.String(),
			RuleID:   model.RuleMalformedSessionState,
			Message:  "SESSION_STATE contains " + model.Sentinel + " alongside other content; " + model.Sentinel + " must appear alone",
			Severity: model.SeverityError,
			Line:     sentinelLine,
		}}
	}
	return model.Entries(entries), nil
}

func isSentinel(s string, foldCase bool) bool {
	if foldCase {
		return strings.EqualFold(s, model.Sentinel)
	}
	return s == model.Sentinel
}
