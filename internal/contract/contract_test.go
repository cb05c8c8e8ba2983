package contract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/icscheck/internal/denylist"
	"github.com/ppiankov/icscheck/internal/model"
)

const fullContract = `format:     unified diff
schema:     standard unified diff against current HEAD; one diff block per modified file
variance:   diff header comments are permitted; no other variance allowed
on_failure: return plain text block with prefix "BLOCKED:" followed by a single-sentence
            description of the blocking constraint`

func TestCheckComplete(t *testing.T) {
	oc, violations := Check(fullContract, denylist.NewDefault())
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
	want := model.OutputContract{
		Format:    "unified diff",
		Schema:    "standard unified diff against current HEAD; one diff block per modified file",
		Variance:  "diff header comments are permitted; no other variance allowed",
		OnFailure: "return plain text block with prefix \"BLOCKED:\" followed by a single-sentence\n            description of the blocking constraint",
	}
	if diff := cmp.Diff(want, oc); diff != "" {
		t.Errorf("contract mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckMultiLineSchema(t *testing.T) {
	content := `format:     JSON
schema: {
  "endpoint": "string",
  "format": "string",
  "warnings": ["string"]
}
variance:   "warnings" field MAY be omitted if empty
on_failure: Return { "status": "error" }`

	oc, violations := Check(content, denylist.NewDefault())
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
	if !strings.HasPrefix(oc.Schema, "{") || !strings.HasSuffix(oc.Schema, "}") {
		t.Errorf("schema should span until the next label, got %q", oc.Schema)
	}
	if !strings.Contains(oc.Schema, `"format": "string"`) {
		t.Errorf("quoted keys inside schema must not start a new field, got %q", oc.Schema)
	}
	if oc.Format != "JSON" {
		t.Errorf("unexpected format %q", oc.Format)
	}
}

func TestCheckMissingOnFailure(t *testing.T) {
	content := "format: JSON\nschema: {}\nvariance: none"
	_, violations := Check(content, nil)
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation, got %+v", violations)
	}
	v := violations[0]
	if v.RuleID != model.RuleMissingField || v.Severity != model.SeverityError {
		t.Errorf("unexpected violation %+v", v)
	}
	if !strings.Contains(v.Message, `"on_failure"`) {
		t.Errorf("message should name the field: %q", v.Message)
	}
}

func TestCheckAllMissingInFieldOrder(t *testing.T) {
	_, violations := Check("just prose", nil)
	if len(violations) != len(Fields) {
		t.Fatalf("expected %d violations, got %+v", len(Fields), violations)
	}
	for i, v := range violations {
		if !strings.Contains(v.Message, `"`+Fields[i]+`"`) {
			t.Errorf("violation %d should name %s: %q", i, Fields[i], v.Message)
		}
	}
}

func TestCheckEmptyValue(t *testing.T) {
	content := "format: JSON\nschema:   \nvariance: none\non_failure: error"
	_, violations := Check(content, nil)
	if len(violations) != 1 || violations[0].RuleID != model.RuleMissingField {
		t.Fatalf("expected one MissingField, got %+v", violations)
	}
	if violations[0].Line != 2 || !strings.Contains(violations[0].Message, "empty") {
		t.Errorf("unexpected violation %+v", violations[0])
	}
}

func TestCheckDuplicateField(t *testing.T) {
	content := "format: JSON\nformat: YAML\nschema: {}\nvariance: none\non_failure: error"
	oc, violations := Check(content, nil)
	if len(violations) != 1 || violations[0].RuleID != model.RuleDuplicateField {
		t.Fatalf("expected one DuplicateField, got %+v", violations)
	}
	if oc.Format != "JSON" {
		t.Errorf("first declaration wins, got %q", oc.Format)
	}
}

func TestCheckEqualsSeparatorAndCase(t *testing.T) {
	content := "  FORMAT = JSON\nSchema= {}\nvariance =none\nOn_Failure: error"
	oc, violations := Check(content, nil)
	if len(violations) != 0 {
		t.Fatalf("unexpected violations %+v", violations)
	}
	if oc.Format != "JSON" || oc.Schema != "{}" || oc.Variance != "none" || oc.OnFailure != "error" {
		t.Errorf("unexpected contract %+v", oc)
	}
}

func TestCheckLabelPrefixIsNotALabel(t *testing.T) {
	content := "format: JSON\nformatting: compact\nschema: {}\nvariance: none\non_failure: error"
	oc, violations := Check(content, nil)
	if len(violations) != 0 {
		t.Fatalf("unexpected violations %+v", violations)
	}
	if oc.Format != "JSON\nformatting: compact" {
		t.Errorf("formatting: must continue the format value, got %q", oc.Format)
	}
}

func TestCheckUnenumeratedVariance(t *testing.T) {
	tests := []struct {
		variance string
		warn     bool
	}{
		{"some flexibility", true},
		{"minor variations as needed", true},
		{"none", false},
		{"some flexibility; trailing whitespace only", false},
		{`"warnings" MAY be omitted, some flexibility`, false},
	}
	for _, tt := range tests {
		content := "format: JSON\nschema: {}\nvariance: " + tt.variance + "\non_failure: error"
		_, violations := Check(content, denylist.NewDefault())
		var warned bool
		for _, v := range violations {
			if v.RuleID == model.RuleUnenumeratedVariance {
				warned = true
				if v.Severity != model.SeverityWarning {
					t.Errorf("UnenumeratedVariance must be a warning")
				}
				if v.Line != 3 {
					t.Errorf("expected variance line 3, got %d", v.Line)
				}
			} else {
				t.Errorf("unexpected violation %+v", v)
			}
		}
		if warned != tt.warn {
			t.Errorf("variance %q: warned=%v, want %v", tt.variance, warned, tt.warn)
		}
	}
}
