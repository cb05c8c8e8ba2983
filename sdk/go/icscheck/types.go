package icscheck

import "github.com/ppiankov/icscheck/internal/model"

// Severity is ERROR or WARNING. Only errors affect compliance.
type Severity string

const (
	SeverityError   Severity = Severity(model.SeverityError)
	SeverityWarning Severity = Severity(model.SeverityWarning)
)

// Violation is one finding. Line is 1-based within the instruction and
// zero when no single line applies.
type Violation struct {
	Stage    string   `json:"stage"`
	Layer    string   `json:"layer,omitempty"`
	RuleID   string   `json:"rule_id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line,omitempty"`
}

// Report is the outcome of validating one instruction.
type Report struct {
	Compliant  bool        `json:"compliant"`
	Violations []Violation `json:"violations"`
}

// Errors returns the number of ERROR violations.
func (r *Report) Errors() int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Directive is one parsed capability line. Qualifier and Target are empty
// when the line has no qualifier; Condition is empty without IF.
type Directive struct {
	Keyword   string `json:"keyword"`
	Action    string `json:"action"`
	Qualifier string `json:"qualifier,omitempty"`
	Target    string `json:"target,omitempty"`
	Condition string `json:"condition,omitempty"`
	Line      int    `json:"line"`
}

func toReport(r *model.Report) *Report {
	out := &Report{Compliant: r.Compliant, Violations: make([]Violation, 0, len(r.Violations))}
	for _, v := range r.Violations {
		out.Violations = append(out.Violations, Violation{
			Stage:    string(v.Stage),
			Layer:    v.Layer,
			RuleID:   string(v.RuleID),
			Message:  v.Message,
			Severity: Severity(v.Severity),
			Line:     v.Line,
		})
	}
	return out
}

func toDirective(d model.Directive) Directive {
	out := Directive{Keyword: string(d.Keyword), Action: d.Action, Line: d.Line}
	if kind, target, ok := d.Qualifier.Get(); ok {
		out.Qualifier, out.Target = string(kind), target
	}
	if cond, ok := d.Condition.Get(); ok {
		out.Condition = cond
	}
	return out
}
