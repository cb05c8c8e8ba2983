// Package configdiff compares two validator configurations and labels each
// change as stricter or looser.
package configdiff

import (
	"strconv"

	"github.com/ppiankov/icscheck/internal/config"
)

// Change represents a scalar field change.
type Change struct {
	Field   string `json:"field"`
	Old     string `json:"old"`
	New     string `json:"new"`
	Comment string `json:"comment,omitempty"`
}

// PhraseChange is a vague phrase added to or removed from variance.phrases.
type PhraseChange struct {
	Type   string `json:"type"` // "added" or "removed"
	Phrase string `json:"phrase"`
}

// DiffResult holds the comparison of two configurations.
type DiffResult struct {
	OldPath       string         `json:"old_path"`
	NewPath       string         `json:"new_path"`
	Changes       []Change       `json:"changes"`
	PhraseChanges []PhraseChange `json:"phrase_changes"`
	HasChanges    bool           `json:"has_changes"`
}

// Diff compares two configurations and returns the differences.
func Diff(old, new *config.Config) *DiffResult {
	r := &DiffResult{Changes: []Change{}, PhraseChanges: []PhraseChange{}}

	// Folding the sentinel accepts more inputs.
	diffBool(r, "sentinel.fold_case", old.Sentinel.FoldCase, new.Sentinel.FoldCase, false)
	diffInt(r, "restatement.min_length", int64(old.Restatement.MinLength), int64(new.Restatement.MinLength), false)
	diffInt(r, "limits.max_input_bytes", old.Limits.MaxInputBytes, new.Limits.MaxInputBytes, false)
	diffRate(r, "limits.requests_per_minute", old.Limits.RequestsPerMinute, new.Limits.RequestsPerMinute)
	diffBool(r, "output.fail_on_warnings", old.Output.FailOnWarnings, new.Output.FailOnWarnings, true)
	diffString(r, "output.format", old.Output.Format, new.Output.Format)
	diffString(r, "variance.denylist", old.Variance.Denylist, new.Variance.Denylist)
	diffBool(r, "history.enabled", old.History.Enabled, new.History.Enabled, true)
	diffString(r, "audit.path", old.Audit.Path, new.Audit.Path)

	diffPhrases(r, old.Variance.Phrases, new.Variance.Phrases)

	r.HasChanges = len(r.Changes) > 0 || len(r.PhraseChanges) > 0
	return r
}

func diffInt(r *DiffResult, field string, old, new int64, higherIsStricter bool) {
	if old != new {
		r.Changes = append(r.Changes, Change{
			Field:   field,
			Old:     strconv.FormatInt(old, 10),
			New:     strconv.FormatInt(new, 10),
			Comment: intComment(old, new, higherIsStricter),
		})
	}
}

func intComment(old, new int64, higherIsStricter bool) string {
	if higherIsStricter == (new > old) {
		return "stricter"
	}
	return "looser"
}

// diffRate compares request limits where zero means unlimited.
func diffRate(r *DiffResult, field string, old, new int) {
	if old == new {
		return
	}
	comment := "looser"
	if new != 0 && (old == 0 || new < old) {
		comment = "stricter"
	}
	r.Changes = append(r.Changes, Change{
		Field:   field,
		Old:     strconv.Itoa(old),
		New:     strconv.Itoa(new),
		Comment: comment,
	})
}

func diffBool(r *DiffResult, field string, old, new, trueIsStricter bool) {
	if old == new {
		return
	}
	comment := "looser"
	if new == trueIsStricter {
		comment = "stricter"
	}
	r.Changes = append(r.Changes, Change{
		Field:   field,
		Old:     strconv.FormatBool(old),
		New:     strconv.FormatBool(new),
		Comment: comment,
	})
}

func diffString(r *DiffResult, field, old, new string) {
	if old != new {
		r.Changes = append(r.Changes, Change{Field: field, Old: old, New: new})
	}
}

func diffPhrases(r *DiffResult, oldPhrases, newPhrases []string) {
	oldSet := make(map[string]bool)
	for _, p := range oldPhrases {
		oldSet[p] = true
	}
	newSet := make(map[string]bool)
	for _, p := range newPhrases {
		newSet[p] = true
	}

	for _, p := range newPhrases {
		if !oldSet[p] {
			r.PhraseChanges = append(r.PhraseChanges, PhraseChange{Type: "added", Phrase: p})
			oldSet[p] = true
		}
	}
	for _, p := range oldPhrases {
		if !newSet[p] {
			r.PhraseChanges = append(r.PhraseChanges, PhraseChange{Type: "removed", Phrase: p})
			newSet[p] = true
		}
	}
}
