// Package contract checks the four mandatory fields of the output contract
// layer.
package contract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/icscheck/internal/model"
)

// Field labels in canonical order.
const (
	FieldFormat    = "format"
	FieldSchema    = "schema"
	FieldVariance  = "variance"
	FieldOnFailure = "on_failure"
)

// Fields lists the mandatory labels in report order.
var Fields = []string{FieldFormat, FieldSchema, FieldVariance, FieldOnFailure}

// PhraseMatcher reports whether a value contains a vague phrase.
type PhraseMatcher interface {
	Match(value string) (phrase string, ok bool)
}

type fieldValue struct {
	lines []string
	line  int
}

// Check parses labeled fields out of the output contract layer. A field
// starts at a line beginning with its label followed by ':' or '=' and runs
// until the next label line or the end of the layer. Lines before the first
// label are ignored.
//
// Missing or empty fields yield one MissingField each, in field order. A
// variance value that contains a vague phrase and enumerates nothing yields
// an advisory UnenumeratedVariance. vague may be nil.
func Check(content string, vague PhraseMatcher) (model.OutputContract, []model.Violation) {
	values := make(map[string]*fieldValue, len(Fields))
	var (
		current    *fieldValue
		violations []model.Violation
	)

	for i, line := range strings.Split(content, "\n") {
		label, value, ok := splitLabel(line)
		if !ok {
			if current != nil {
				current.lines = append(current.lines, line)
			}
			continue
		}
		fv, exists := values[label]
		if exists {
			violations = append(violations, violation(model.RuleDuplicateField, model.SeverityError, i+1,
				fmt.Sprintf("OUTPUT_CONTRACT field %q is declared more than once (first at line %d)", label, fv.line)))
			current = nil
			continue
		}
		fv = &fieldValue{lines: []string{value}, line: i + 1}
		values[label] = fv
		current = fv
	}

	var oc model.OutputContract
	for _, name := range Fields {
		fv, ok := values[name]
		var text string
		if ok {
			text = strings.TrimSpace(strings.Join(fv.lines, "\n"))
		}
		if text == "" {
			msg := fmt.Sprintf("OUTPUT_CONTRACT is missing required field %q", name)
			line := 0
			if ok {
				msg = fmt.Sprintf("OUTPUT_CONTRACT field %q has an empty value", name)
				line = fv.line
			}
			violations = append(violations, violation(model.RuleMissingField, model.SeverityError, line, msg))
			continue
		}
		switch name {
		case FieldFormat:
			oc.Format = text
		case FieldSchema:
			oc.Schema = text
		case FieldVariance:
			oc.Variance = text
		case FieldOnFailure:
			oc.OnFailure = text
		}
	}

	if oc.Variance != "" && vague != nil && !enumerates(oc.Variance) {
		if phrase, ok := vague.Match(oc.Variance); ok {
			violations = append(violations, violation(model.RuleUnenumeratedVariance, model.SeverityWarning,
				values[FieldVariance].line,
				fmt.Sprintf("variance %q does not enumerate concrete allowances (matched %q)", oc.Variance, phrase)))
		}
	}

	return oc, violations
}

// splitLabel recognizes "label: value" or "label = value" for the four
// mandatory labels. Leading whitespace is allowed; the label is matched
// case-insensitively.
func splitLabel(line string) (label, value string, ok bool) {
	s := strings.TrimLeft(line, " \t")
	for _, name := range Fields {
		if len(s) < len(name) || !strings.EqualFold(s[:len(name)], name) {
			continue
		}
		rest := strings.TrimLeft(s[len(name):], " \t")
		if rest == "" || (rest[0] != ':' && rest[0] != '=') {
			continue
		}
		return name, rest[1:], true
	}
	return "", "", false
}

// enumerates reports whether the value lists concrete allowances.
func enumerates(value string) bool {
	return strings.ContainsAny(value, ";,\"\n")
}

func violation(rule model.RuleID, sev model.Severity, line int, msg string) model.Violation {
	return model.Violation{
		Stage:    model.StageContract,
		Layer:    model.LayerOutputContract.String(),
		RuleID:   rule,
		Message:  msg,
		Severity: sev,
		Line:     line,
	}
}
