package model

import "encoding/json"

// Keyword is the leading verb of a capability directive.
type Keyword string

const (
	KeywordAllow   Keyword = "ALLOW"
	KeywordDeny    Keyword = "DENY"
	KeywordRequire Keyword = "REQUIRE"
)

// ParseKeyword returns the Keyword for an exact, upper-case word.
func ParseKeyword(word string) (Keyword, bool) {
	switch Keyword(word) {
	case KeywordAllow, KeywordDeny, KeywordRequire:
		return Keyword(word), true
	}
	return "", false
}

// QualifierKind scopes the action of a directive.
type QualifierKind string

const (
	QualifierWithin QualifierKind = "WITHIN"
	QualifierOn     QualifierKind = "ON"
	QualifierWith   QualifierKind = "WITH"
	QualifierUnless QualifierKind = "UNLESS"
)

// ParseQualifierKind returns the QualifierKind for an exact, upper-case word.
func ParseQualifierKind(word string) (QualifierKind, bool) {
	switch QualifierKind(word) {
	case QualifierWithin, QualifierOn, QualifierWith, QualifierUnless:
		return QualifierKind(word), true
	}
	return "", false
}

// Qualifier is an optional (kind, target) pair. The zero value is absent.
// Consumers read it through Get so the absent case cannot be skipped.
type Qualifier struct {
	present bool
	kind    QualifierKind
	target  string
}

// SomeQualifier returns a present qualifier.
func SomeQualifier(kind QualifierKind, target string) Qualifier {
	return Qualifier{present: true, kind: kind, target: target}
}

// NoQualifier returns the absent qualifier.
func NoQualifier() Qualifier {
	return Qualifier{}
}

// Get returns the qualifier payload and whether it is present.
func (q Qualifier) Get() (QualifierKind, string, bool) {
	return q.kind, q.target, q.present
}

// Equal reports whether two qualifiers hold the same variant and payload.
func (q Qualifier) Equal(o Qualifier) bool {
	return q == o
}

func (q Qualifier) MarshalJSON() ([]byte, error) {
	if !q.present {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Kind   QualifierKind `json:"kind"`
		Target string        `json:"target"`
	}{q.kind, q.target})
}

// Condition is an optional IF clause. The zero value is absent.
type Condition struct {
	present bool
	text    string
}

// SomeCondition returns a present condition.
func SomeCondition(text string) Condition {
	return Condition{present: true, text: text}
}

// NoCondition returns the absent condition.
func NoCondition() Condition {
	return Condition{}
}

// Get returns the condition text and whether it is present.
func (c Condition) Get() (string, bool) {
	return c.text, c.present
}

// Equal reports whether two conditions hold the same variant and payload.
func (c Condition) Equal(o Condition) bool {
	return c == o
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if !c.present {
		return []byte("null"), nil
	}
	return json.Marshal(c.text)
}

// Directive is one parsed permission statement from the capability layer.
type Directive struct {
	Keyword   Keyword   `json:"keyword"`
	Action    string    `json:"action"`
	Qualifier Qualifier `json:"qualifier"`
	Condition Condition `json:"condition"`
	Line      int       `json:"line"` // 1-based; validate.Run rebases it to the instruction
}
