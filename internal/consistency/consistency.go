// Package consistency flags later layers that restate or redefine facts
// from earlier layers.
//
// There is no general test for contradiction between prose fragments, so
// the checks are deliberately narrow: verbatim restatement of a normalized
// run of text, drift of key/value facts declared in IMMUTABLE_CONTEXT, and
// capability directives placed in TASK_PAYLOAD. Anything that cannot be
// classified with confidence is not reported.
package consistency

import (
	"fmt"
	"strings"

	"github.com/ppiankov/icscheck/internal/model"
)

// DefaultMinRestatementLen is the default minimum normalized length, in
// bytes, of a shared run that counts as restatement.
const DefaultMinRestatementLen = 40

// maxQuoted caps the shared text quoted in a message.
const maxQuoted = 80

// Options tunes the checks.
type Options struct {
	MinRestatementLen int
}

// Check runs every cross-layer check over a well-formed layer set.
// Violations are ordered by check, then by layer pair in canonical order.
func Check(layers *model.Layers, opts Options) []model.Violation {
	minLen := opts.MinRestatementLen
	if minLen <= 0 {
		minLen = DefaultMinRestatementLen
	}

	var violations []model.Violation
	violations = append(violations, checkRestatement(layers, minLen)...)
	violations = append(violations, checkDrift(layers)...)
	violations = append(violations, checkMisplacedDirectives(layers)...)
	return violations
}

func checkRestatement(layers *model.Layers, minLen int) []model.Violation {
	var norm [model.LayerCount]string
	for _, n := range model.CanonicalOrder {
		norm[n] = normalize(layers.Get(n).Content)
	}

	var violations []model.Violation
	for i, earlier := range model.CanonicalOrder {
		if len(norm[earlier]) < minLen {
			continue
		}
		idx := newRunIndex(norm[earlier], minLen)
		for _, later := range model.CanonicalOrder[i+1:] {
			for _, shared := range idx.sharedRuns(norm[later]) {
				violations = append(violations, model.Violation{
					Stage:  model.StageConsistency,
					Layer:  later.String(),
					RuleID: model.RuleRestatedContext,
					Message: fmt.Sprintf("%s restates text already declared in %s: %q",
						later, earlier, quote(shared)),
					Severity: model.SeverityError,
				})
			}
		}
	}
	return violations
}

// fact is a key/value line from IMMUTABLE_CONTEXT.
type fact struct {
	value string
	line  int
}

func checkDrift(layers *model.Layers) []model.Violation {
	facts := make(map[string]fact)
	for i, line := range strings.Split(layers.Get(model.LayerImmutableContext).Content, "\n") {
		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		if _, dup := facts[key]; !dup {
			facts[key] = fact{value: value, line: i + 1}
		}
	}
	if len(facts) == 0 {
		return nil
	}

	var violations []model.Violation
	for _, later := range model.CanonicalOrder[1:] {
		for i, line := range strings.Split(layers.Get(later).Content, "\n") {
			key, value, ok := splitKeyValue(line)
			if !ok {
				continue
			}
			f, known := facts[key]
			if !known || f.value == value {
				continue
			}
			violations = append(violations, model.Violation{
				Stage:  model.StageConsistency,
				Layer:  later.String(),
				RuleID: model.RulePossibleContradiction,
				Message: fmt.Sprintf("%s sets %q to %q, but IMMUTABLE_CONTEXT line %d declares %q",
					later, key, quote(value), f.line, quote(f.value)),
				Severity: model.SeverityWarning,
				Line:     i + 1,
			})
		}
	}
	return violations
}

func checkMisplacedDirectives(layers *model.Layers) []model.Violation {
	var violations []model.Violation
	for i, line := range strings.Split(layers.Get(model.LayerTaskPayload).Content, "\n") {
		words := strings.Fields(line)
		if len(words) < 2 {
			continue
		}
		if _, ok := model.ParseKeyword(words[0]); !ok {
			continue
		}
		violations = append(violations, model.Violation{
			Stage:  model.StageConsistency,
			Layer:  model.LayerTaskPayload.String(),
			RuleID: model.RuleMisplacedDirective,
			Message: fmt.Sprintf("TASK_PAYLOAD contains a capability directive %q; directives belong in CAPABILITY_DECLARATION",
				strings.TrimSpace(line)),
			Severity: model.SeverityError,
			Line:     i + 1,
		})
	}
	return violations
}

// splitKeyValue recognizes "key: value" and "key = value" lines. The key
// must start with a letter and contain only letters, digits, spaces, '_',
// '-' and '.'; the value must be non-empty. Keys are case-folded and
// values normalized.
func splitKeyValue(line string) (key, value string, ok bool) {
	s := strings.TrimSpace(line)
	sep := strings.IndexAny(s, ":=")
	if sep <= 0 || sep > 64 {
		return "", "", false
	}
	rawKey := strings.TrimSpace(s[:sep])
	if rawKey == "" || !isKeyStart(rawKey[0]) {
		return "", "", false
	}
	for i := 1; i < len(rawKey); i++ {
		if !isKeyByte(rawKey[i]) {
			return "", "", false
		}
	}
	value = normalize(s[sep+1:])
	if value == "" {
		return "", "", false
	}
	return normalize(rawKey), value, true
}

func isKeyStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func isKeyByte(c byte) bool {
	return isKeyStart(c) || c >= '0' && c <= '9' || c == ' ' || c == '_' || c == '-' || c == '.'
}

// normalize case-folds and collapses whitespace runs to one space.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func quote(s string) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= maxQuoted {
		return s
	}
	cut := maxQuoted
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}
