package directive

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/icscheck/internal/model"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.Directive
	}{
		{
			name: "bare action",
			line: "DENY file deletion",
			want: model.Directive{
				Keyword:   model.KeywordDeny,
				Action:    "file deletion",
				Qualifier: model.NoQualifier(),
				Condition: model.NoCondition(),
				Line:      1,
			},
		},
		{
			name: "qualifier",
			line: "REQUIRE backward compatibility WITH api/v1/",
			want: model.Directive{
				Keyword:   model.KeywordRequire,
				Action:    "backward compatibility",
				Qualifier: model.SomeQualifier(model.QualifierWith, "api/v1/"),
				Condition: model.NoCondition(),
				Line:      1,
			},
		},
		{
			name: "qualifier and condition",
			line: "ALLOW   file creation WITHIN src/orders/ IF new file has corresponding test",
			want: model.Directive{
				Keyword:   model.KeywordAllow,
				Action:    "file creation",
				Qualifier: model.SomeQualifier(model.QualifierWithin, "src/orders/"),
				Condition: model.SomeCondition("new file has corresponding test"),
				Line:      1,
			},
		},
		{
			name: "condition only",
			line: "ALLOW network access IF approved",
			want: model.Directive{
				Keyword:   model.KeywordAllow,
				Action:    "network access",
				Qualifier: model.NoQualifier(),
				Condition: model.SomeCondition("approved"),
				Line:      1,
			},
		},
		{
			name: "condition before qualifier",
			line: "DENY deploys IF friday UNLESS hotfix",
			want: model.Directive{
				Keyword:   model.KeywordDeny,
				Action:    "deploys",
				Qualifier: model.SomeQualifier(model.QualifierUnless, "hotfix"),
				Condition: model.SomeCondition("friday UNLESS hotfix"),
				Line:      1,
			},
		},
		{
			name: "condition runs to end of line",
			line: "ALLOW x IF y WITHIN z",
			want: model.Directive{
				Keyword:   model.KeywordAllow,
				Action:    "x",
				Qualifier: model.SomeQualifier(model.QualifierWithin, "z"),
				Condition: model.SomeCondition("y WITHIN z"),
				Line:      1,
			},
		},
		{
			name: "first qualifier occurrence wins",
			line: "REQUIRE sign ON off ON all commits",
			want: model.Directive{
				Keyword:   model.KeywordRequire,
				Action:    "sign",
				Qualifier: model.SomeQualifier(model.QualifierOn, "off ON all commits"),
				Condition: model.NoCondition(),
				Line:      1,
			},
		},
		{
			name: "lower-case qualifier is ordinary text",
			line: "DENY modification of any file within tests/",
			want: model.Directive{
				Keyword:   model.KeywordDeny,
				Action:    "modification of any file within tests/",
				Qualifier: model.NoQualifier(),
				Condition: model.NoCondition(),
				Line:      1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		line string
		rule model.RuleID
	}{
		{"ALLOW file modification WITHIN", model.RuleMalformedQualifier},
		{"ALLOW file modification WITHIN IF tests pass", model.RuleMalformedQualifier},
		{"ALLOW network access IF", model.RuleMalformedCondition},
		{"DENY deploys IF UNLESS", model.RuleMalformedQualifier},
		{"DENY", model.RuleEmptyAction},
		{"DENY WITHIN src/", model.RuleEmptyAction},
		{"REQUIRE IF approved", model.RuleEmptyAction},
		{"PERMIT reading", model.RuleUnknownDirectiveKeyword},
		{"allow reading", model.RuleUnknownDirectiveKeyword},
		{"Don't touch the database.", model.RuleMalformedDirective},
		{"ALLOW access to {id}", model.RuleMalformedDirective},
		{"DENY output, please", model.RuleMalformedDirective},
	}

	for _, tt := range tests {
		_, err := ParseLine(tt.line, 7)
		if err == nil {
			t.Errorf("ParseLine(%q): expected %s, got nil", tt.line, tt.rule)
			continue
		}
		if err.Rule != tt.rule {
			t.Errorf("ParseLine(%q): expected %s, got %s (%s)", tt.line, tt.rule, err.Rule, err.Message)
		}
		if err.Line != 7 {
			t.Errorf("ParseLine(%q): expected line 7, got %d", tt.line, err.Line)
		}
		if !strings.Contains(err.Error(), string(tt.rule)) {
			t.Errorf("error string %q should name the rule", err.Error())
		}
	}
}

func TestParseContinuesAfterBadLines(t *testing.T) {
	content := strings.Join([]string{
		"ALLOW   file modification WITHIN src/orders/",
		"",
		"# comments are skipped",
		"Don't touch the database.",
		"DENY    modification of src/orders/api/",
		"PERMIT everything",
		"REQUIRE type annotations ON all new functions",
		"ALLOW file modification WITHIN",
	}, "\n")

	directives, violations := Parse(content)

	if len(directives) != 3 {
		t.Fatalf("expected 3 directives, got %d: %+v", len(directives), directives)
	}
	wantActions := []string{"file modification", "modification of src/orders/api/", "type annotations"}
	for i, d := range directives {
		if d.Action != wantActions[i] {
			t.Errorf("directive %d: expected action %q, got %q", i, wantActions[i], d.Action)
		}
	}
	if directives[1].Line != 5 {
		t.Errorf("expected line 5 for second directive, got %d", directives[1].Line)
	}

	wantRules := []model.RuleID{
		model.RuleMalformedDirective,
		model.RuleUnknownDirectiveKeyword,
		model.RuleMalformedQualifier,
	}
	if len(violations) != len(wantRules) {
		t.Fatalf("expected %d violations, got %+v", len(wantRules), violations)
	}
	for i, v := range violations {
		if v.RuleID != wantRules[i] {
			t.Errorf("violation %d: expected %s, got %s", i, wantRules[i], v.RuleID)
		}
		if v.Severity != model.SeverityError || v.Stage != model.StageDirective {
			t.Errorf("violation %d: unexpected shape %+v", i, v)
		}
		if v.Layer != "CAPABILITY_DECLARATION" {
			t.Errorf("violation %d: unexpected layer %q", i, v.Layer)
		}
	}
	if violations[0].Line != 4 || violations[2].Line != 8 {
		t.Errorf("unexpected violation lines: %d, %d", violations[0].Line, violations[2].Line)
	}
}

func TestParseEmptyContent(t *testing.T) {
	directives, violations := Parse("")
	if len(directives) != 0 || len(violations) != 0 {
		t.Errorf("expected nothing from empty content, got %v %v", directives, violations)
	}
}
