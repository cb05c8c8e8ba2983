package model

// Severity distinguishes hard rule violations from advisory findings.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Stage names the validation pass that produced a violation.
// Stages run in the order declared here.
type Stage string

const (
	StageSegment     Stage = "segment"
	StageOrder       Stage = "order"
	StageDirective   Stage = "directive"
	StageSession     Stage = "session"
	StageContract    Stage = "contract"
	StageConsistency Stage = "consistency"
)

// Structural reports whether a failure in this stage halts validation.
func (s Stage) Structural() bool {
	return s == StageSegment || s == StageOrder
}

// RuleID identifies the rule a violation breaks.
type RuleID string

const (
	RuleMalformedBoundary       RuleID = "MalformedBoundary"
	RuleOrderViolation          RuleID = "OrderViolation"
	RuleMalformedDirective      RuleID = "MalformedDirective"
	RuleUnknownDirectiveKeyword RuleID = "UnknownDirectiveKeyword"
	RuleEmptyAction             RuleID = "EmptyAction"
	RuleMalformedQualifier      RuleID = "MalformedQualifier"
	RuleMalformedCondition      RuleID = "MalformedCondition"
	RuleMalformedSessionState   RuleID = "MalformedSessionState"
	RuleMissingField            RuleID = "MissingField"
	RuleDuplicateField          RuleID = "DuplicateField"
	RuleUnenumeratedVariance    RuleID = "UnenumeratedVariance"
	RuleRestatedContext         RuleID = "RestatedContext"
	RulePossibleContradiction   RuleID = "PossibleContradiction"
	RuleMisplacedDirective      RuleID = "MisplacedDirective"
)

// Violation is one finding. Layer is empty when no layer applies.
// Line is 1-based within the instruction. Offset is the byte offset of a
// boundary marker; only the segment stage sets it, and a marker at the
// start of input has offset 0, so nil means "not applicable".
type Violation struct {
	Stage    Stage    `json:"stage"`
	Layer    string   `json:"layer,omitempty"`
	RuleID   RuleID   `json:"rule_id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line,omitempty"`
	Offset   *int     `json:"offset,omitempty"`
}

// Report is the outcome of one validation pass.
type Report struct {
	Compliant  bool        `json:"compliant"`
	Violations []Violation `json:"violations"`
}

// NewReport builds a report from violations in stage order.
// Compliant is true iff no violation has ERROR severity.
func NewReport(violations []Violation) *Report {
	if violations == nil {
		violations = []Violation{}
	}
	r := &Report{Compliant: true, Violations: violations}
	for _, v := range violations {
		if v.Severity == SeverityError {
			r.Compliant = false
			break
		}
	}
	return r
}

// Errors returns the number of ERROR violations.
func (r *Report) Errors() int {
	return r.count(SeverityError)
}

// Warnings returns the number of WARNING violations.
func (r *Report) Warnings() int {
	return r.count(SeverityWarning)
}

// Rules returns the rule IDs in report order, duplicates included.
func (r *Report) Rules() []RuleID {
	out := make([]RuleID, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.RuleID)
	}
	return out
}

// HasRule reports whether any violation carries the given rule.
func (r *Report) HasRule(rule RuleID) bool {
	for _, v := range r.Violations {
		if v.RuleID == rule {
			return true
		}
	}
	return false
}

func (r *Report) count(s Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}
