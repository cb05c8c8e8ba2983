// Package directive parses the capability layer into ALLOW, DENY and
// REQUIRE directives.
//
// Grammar, one directive per line:
//
//	KEYWORD action... [QUALIFIER target...] [IF condition...]
//
// KEYWORD is ALLOW, DENY or REQUIRE. QUALIFIER is WITHIN, ON, WITH or
// UNLESS. Words match [A-Za-z0-9_./-]+. Blank lines and lines starting
// with '#' are skipped.
//
// A qualifier keyword can also be ordinary text inside an action phrase.
// The parser does not try to tell the two apart: the first textual
// occurrence of a qualifier keyword always ends the action, and the first
// IF always starts the condition. This is a single left-to-right scan with
// no lookahead or backtracking.
package directive

import (
	"fmt"
	"strings"

	"github.com/ppiankov/icscheck/internal/model"
)

// SyntaxError describes why one line failed to parse.
type SyntaxError struct {
	Rule    model.RuleID
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Rule, e.Message)
}

const conditionKeyword = "IF"

// Parse parses every line of the capability layer. Bad lines produce one
// ERROR violation each and parsing continues, so all bad lines are reported
// in one pass. Directives keep declaration order. Violation lines are
// 1-based within content.
func Parse(content string) ([]model.Directive, []model.Violation) {
	var (
		directives []model.Directive
		violations []model.Violation
	)
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		d, err := ParseLine(trimmed, i+1)
		if err != nil {
			violations = append(violations, model.Violation{
				Stage:    model.StageDirective,
				Layer:    model.LayerCapabilityDeclaration.String(),
				RuleID:   err.Rule,
				Message:  err.Message,
				Severity: model.SeverityError,
				Line:     err.Line,
			})
			continue
		}
		directives = append(directives, d)
	}
	return directives, violations
}

// ParseLine parses a single non-blank directive line.
func ParseLine(line string, lineNo int) (model.Directive, *SyntaxError) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return model.Directive{}, &SyntaxError{model.RuleUnknownDirectiveKeyword, lineNo, "empty directive line"}
	}
	for _, w := range words {
		if bad, ok := invalidByte(w); ok {
			return model.Directive{}, &SyntaxError{model.RuleMalformedDirective, lineNo,
				fmt.Sprintf("invalid character %q in word %q: %q", bad, w, line)}
		}
	}

	keyword, ok := model.ParseKeyword(words[0])
	if !ok {
		return model.Directive{}, &SyntaxError{model.RuleUnknownDirectiveKeyword, lineNo,
			fmt.Sprintf("line must start with ALLOW, DENY or REQUIRE, found %q: %q", words[0], line)}
	}
	rest := words[1:]

	qualAt, ifAt := -1, -1
	var qualKind model.QualifierKind
	for i, w := range rest {
		if qualAt < 0 {
			if k, ok := model.ParseQualifierKind(w); ok {
				qualAt, qualKind = i, k
			}
		}
		if ifAt < 0 && w == conditionKeyword {
			ifAt = i
		}
		if qualAt >= 0 && ifAt >= 0 {
			break
		}
	}

	actionEnd := len(rest)
	if qualAt >= 0 && qualAt < actionEnd {
		actionEnd = qualAt
	}
	if ifAt >= 0 && ifAt < actionEnd {
		actionEnd = ifAt
	}
	if actionEnd == 0 {
		return model.Directive{}, &SyntaxError{model.RuleEmptyAction, lineNo,
			fmt.Sprintf("%s has no action: %q", keyword, line)}
	}

	d := model.Directive{
		Keyword:   keyword,
		Action:    strings.Join(rest[:actionEnd], " "),
		Qualifier: model.NoQualifier(),
		Condition: model.NoCondition(),
		Line:      lineNo,
	}

	if qualAt >= 0 {
		end := len(rest)
		if ifAt > qualAt {
			end = ifAt
		}
		target := rest[qualAt+1 : end]
		if len(target) == 0 {
			return model.Directive{}, &SyntaxError{model.RuleMalformedQualifier, lineNo,
				fmt.Sprintf("qualifier %s has no target: %q", qualKind, line)}
		}
		d.Qualifier = model.SomeQualifier(qualKind, strings.Join(target, " "))
	}

	if ifAt >= 0 {
		cond := rest[ifAt+1:]
		if len(cond) == 0 {
			return model.Directive{}, &SyntaxError{model.RuleMalformedCondition, lineNo,
				fmt.Sprintf("IF has no condition: %q", line)}
		}
		d.Condition = model.SomeCondition(strings.Join(cond, " "))
	}

	return d, nil
}

// invalidByte returns the first character outside [A-Za-z0-9_./-].
func invalidByte(word string) (rune, bool) {
	for _, r := range word {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '_', r == '.', r == '/', r == '-':
		default:
			return r, true
		}
	}
	return 0, false
}
