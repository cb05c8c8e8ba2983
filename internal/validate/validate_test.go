package validate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/ppiankov/icscheck/internal/denylist"
	"github.com/ppiankov/icscheck/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var bodies = [model.LayerCount]string{
	model.LayerImmutableContext:      "System: test system",
	model.LayerCapabilityDeclaration: "ALLOW read access",
	model.LayerSessionState:          "CLEAR",
	model.LayerTaskPayload:           "Run the analysis.",
	model.LayerOutputContract:        "format:     JSON\nschema:     { \"result\": \"string\" }\nvariance:   none\non_failure: return error string",
}

func block(name, body string) string {
	return "###ICS:" + name + "###\n" + body + "\n###END:" + name + "###\n"
}

// instruction assembles the layers in the given order, overriding bodies
// from the map.
func instruction(order []model.LayerName, override map[model.LayerName]string) string {
	var b strings.Builder
	for _, n := range order {
		body := bodies[n]
		if o, ok := override[n]; ok {
			body = o
		}
		b.WriteString(block(n.String(), body))
		b.WriteString("\n")
	}
	return b.String()
}

func canonical(override map[model.LayerName]string) string {
	return instruction(model.CanonicalOrder[:], override)
}

func loadExample(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	text, err := Decode(data)
	if err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return text
}

func TestWorkedExamplesCompliant(t *testing.T) {
	for _, name := range []string{"code-refactor.ics", "structured-analysis.ics", "session-reset.ics"} {
		t.Run(name, func(t *testing.T) {
			r := Validate(loadExample(t, name), DefaultOptions())
			if !r.Compliant || r.Errors() != 0 {
				t.Fatalf("expected compliant, got %+v", r.Violations)
			}
			if r.Warnings() != 0 {
				t.Errorf("expected no warnings, got %+v", r.Violations)
			}
		})
	}
}

func TestWorkedExampleArtefacts(t *testing.T) {
	res := Run(loadExample(t, "code-refactor.ics"), DefaultOptions())
	if res.Layers == nil {
		t.Fatal("expected layers")
	}
	if len(res.Directives) != 7 {
		t.Fatalf("expected 7 directives, got %d", len(res.Directives))
	}
	first := res.Directives[0]
	if first.Keyword != model.KeywordAllow || first.Action != "file modification" || first.Line != 12 {
		t.Errorf("unexpected first directive %+v", first)
	}
	if kind, target, ok := first.Qualifier.Get(); !ok || kind != model.QualifierWithin || target != "src/orders/" {
		t.Errorf("unexpected qualifier %v %q %v", kind, target, ok)
	}
	if got := res.Session.Entries(); len(got) != 2 {
		t.Errorf("expected 2 session entries, got %d", len(got))
	}
	if res.Contract.Format != "unified diff" {
		t.Errorf("unexpected format %q", res.Contract.Format)
	}
	if !strings.HasSuffix(res.Contract.OnFailure, "description of the blocking constraint") {
		t.Errorf("on_failure should span two lines, got %q", res.Contract.OnFailure)
	}

	res = Run(loadExample(t, "session-reset.ics"), DefaultOptions())
	if !res.Session.IsCleared() {
		t.Error("expected cleared session")
	}
}

func TestCleanInstructionCompliant(t *testing.T) {
	r := Validate(canonical(nil), DefaultOptions())
	if !r.Compliant || len(r.Violations) != 0 {
		t.Fatalf("expected clean report, got %+v", r.Violations)
	}
}

func permutations(names []model.LayerName) [][]model.LayerName {
	if len(names) <= 1 {
		return [][]model.LayerName{append([]model.LayerName(nil), names...)}
	}
	var out [][]model.LayerName
	for i := range names {
		rest := make([]model.LayerName, 0, len(names)-1)
		rest = append(rest, names[:i]...)
		rest = append(rest, names[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]model.LayerName{names[i]}, p...))
		}
	}
	return out
}

func TestPermutationsReportMisplacedLayers(t *testing.T) {
	perms := permutations(model.CanonicalOrder[:])
	if len(perms) != 120 {
		t.Fatalf("expected 120 permutations, got %d", len(perms))
	}
	for _, p := range perms {
		misplaced := 0
		for i, n := range p {
			if n != model.CanonicalOrder[i] {
				misplaced++
			}
		}
		r := Validate(instruction(p, nil), DefaultOptions())
		if misplaced == 0 {
			if !r.Compliant {
				t.Errorf("canonical order should be compliant: %+v", r.Violations)
			}
			continue
		}
		if r.Compliant {
			t.Errorf("%v: expected non-compliant", p)
		}
		if len(r.Violations) != misplaced {
			t.Errorf("%v: expected %d violations, got %d", p, misplaced, len(r.Violations))
		}
		for _, v := range r.Violations {
			if v.RuleID != model.RuleOrderViolation {
				t.Errorf("%v: unexpected rule %s", p, v.RuleID)
			}
		}
	}
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		canonical(nil),
		loadExample(t, "structured-analysis.ics"),
		canonical(map[model.LayerName]string{
			model.LayerCapabilityDeclaration: "ALLOW x WITHIN\nDon't do it",
			model.LayerSessionState:          "CLEAR\nfoo",
			model.LayerOutputContract:        "format: text\nvariance: some flexibility",
		}),
		"###ICS:IMMUTABLE_CONTEXT###\nunclosed",
	}
	for _, in := range inputs {
		a, err := json.Marshal(Validate(in, DefaultOptions()))
		if err != nil {
			t.Fatal(err)
		}
		b, err := json.Marshal(Validate(in, DefaultOptions()))
		if err != nil {
			t.Fatal(err)
		}
		if string(a) != string(b) {
			t.Errorf("reports differ:\n%s\n%s", a, b)
		}
	}
}

func TestSessionSentinel(t *testing.T) {
	r := Validate(canonical(map[model.LayerName]string{model.LayerSessionState: "CLEAR\nfoo"}), DefaultOptions())
	if r.Compliant || !r.HasRule(model.RuleMalformedSessionState) {
		t.Fatalf("expected MalformedSessionState, got %+v", r.Violations)
	}

	lower := canonical(map[model.LayerName]string{model.LayerSessionState: "clear\nfoo"})
	if r := Validate(lower, DefaultOptions()); !r.Compliant {
		t.Errorf("lowercase sentinel is an ordinary entry by default: %+v", r.Violations)
	}
	opts := DefaultOptions()
	opts.FoldSentinelCase = true
	if r := Validate(lower, opts); !r.HasRule(model.RuleMalformedSessionState) {
		t.Errorf("folded sentinel should be recognized: %+v", r.Violations)
	}
}

func TestMissingOnFailure(t *testing.T) {
	r := Validate(canonical(map[model.LayerName]string{
		model.LayerOutputContract: "format: JSON\nschema: {}\nvariance: none",
	}), DefaultOptions())
	if r.Compliant {
		t.Fatal("expected non-compliant")
	}
	want := []model.Violation{{
		Stage:    model.StageContract,
		Layer:    "OUTPUT_CONTRACT",
		RuleID:   model.RuleMissingField,
		Message:  `OUTPUT_CONTRACT is missing required field "on_failure"`,
		Severity: model.SeverityError,
	}}
	if diff := cmp.Diff(want, r.Violations); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestRestatedFactNamesBothLayers(t *testing.T) {
	fact := "Invariant: all monetary values stored as integer cents in every table"
	r := Validate(canonical(map[model.LayerName]string{
		model.LayerImmutableContext: "System: billing\n" + fact,
		model.LayerTaskPayload:      "Refactor the totals.\n" + fact,
	}), DefaultOptions())
	if r.Compliant || !r.HasRule(model.RuleRestatedContext) {
		t.Fatalf("expected RestatedContext, got %+v", r.Violations)
	}
	for _, v := range r.Violations {
		if v.RuleID != model.RuleRestatedContext {
			continue
		}
		if v.Layer != "TASK_PAYLOAD" || !strings.Contains(v.Message, "IMMUTABLE_CONTEXT") {
			t.Errorf("restatement should name both layers: %+v", v)
		}
	}
}

func TestStructuralFailureShortCircuits(t *testing.T) {
	text := canonical(map[model.LayerName]string{
		model.LayerSessionState: "CLEAR\nfoo",
	}) + block("CUSTOM_LAYER", "some content")
	res := Run(text, DefaultOptions())
	if res.Layers != nil || res.Directives != nil {
		t.Error("content artefacts must be empty after a structural failure")
	}
	rules := res.Report.Rules()
	if diff := cmp.Diff([]model.RuleID{model.RuleMalformedBoundary}, rules); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestStageOrderAndLines(t *testing.T) {
	text := canonical(map[model.LayerName]string{
		model.LayerImmutableContext:      "Owner: alice",
		model.LayerCapabilityDeclaration: "ALLOW read access\nDon't touch the database.",
		model.LayerSessionState:          "CLEAR\nfoo",
		model.LayerTaskPayload:           "Owner: bob\nDENY modification of tests/",
		model.LayerOutputContract:        "format: JSON\nschema: {}\nvariance: some flexibility\non_failure: error",
	})
	r := Validate(text, DefaultOptions())

	type loc struct {
		Stage model.Stage
		Rule  model.RuleID
		Line  int
	}
	var got []loc
	for _, v := range r.Violations {
		got = append(got, loc{v.Stage, v.RuleID, v.Line})
	}
	// Layers open on lines 1, 5, 10, 15, 20.
	want := []loc{
		{model.StageDirective, model.RuleMalformedDirective, 7},
		{model.StageSession, model.RuleMalformedSessionState, 11},
		{model.StageContract, model.RuleUnenumeratedVariance, 23},
		{model.StageConsistency, model.RulePossibleContradiction, 16},
		{model.StageConsistency, model.RuleMisplacedDirective, 17},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestOriginalSelfTests(t *testing.T) {
	example := loadExample(t, "code-refactor.ics")
	tests := []struct {
		name      string
		input     string
		compliant bool
		rule      model.RuleID
	}{
		{
			name: "missing layer",
			input: strings.Replace(example,
				"###ICS:SESSION_STATE###\n"+
					"[2024-01-15T09:30Z] Confirmed: discount logic currently lives in apply_discount() in src/orders/pricing.py\n"+
					"[2024-01-15T09:45Z] Decision: percentage and flat discounts to be handled by separate functions\n"+
					"###END:SESSION_STATE###", "", 1),
			rule: model.RuleOrderViolation,
		},
		{
			name: "invalid directive",
			input: strings.Replace(example,
				"REQUIRE docstring ON all new public functions",
				"REQUIRE docstring ON all new public functions\nDon't touch the database.", 1),
			rule: model.RuleMalformedDirective,
		},
		{
			name:  "directive in task payload",
			input: strings.Replace(example, "Split apply_discount()", "DENY modification of tests/\nSplit apply_discount()", 1),
			rule:  model.RuleMisplacedDirective,
		},
		{
			name:  "unknown layer",
			input: example + "\n###ICS:CUSTOM_LAYER###\nsome content\n###END:CUSTOM_LAYER###",
			rule:  model.RuleMalformedBoundary,
		},
		{
			name:  "unclosed layer",
			input: strings.Replace(example, "###END:TASK_PAYLOAD###", "", 1),
			rule:  model.RuleMalformedBoundary,
		},
		{
			name:  "unknown keyword",
			input: strings.Replace(example, "DENY    introduction", "FORBID  introduction", 1),
			rule:  model.RuleUnknownDirectiveKeyword,
		},
		{
			name:  "empty qualifier",
			input: strings.Replace(example, "ALLOW   file modification WITHIN src/orders/", "ALLOW   file modification WITHIN", 1),
			rule:  model.RuleMalformedQualifier,
		},
		{
			name:      "vague variance warns only",
			input:     strings.Replace(example, "variance:   diff header comments are permitted; no other variance allowed", "variance:   minor variations are fine", 1),
			compliant: true,
			rule:      model.RuleUnenumeratedVariance,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.input, DefaultOptions())
			if r.Compliant != tt.compliant {
				t.Errorf("expected compliant=%v, got %+v", tt.compliant, r.Violations)
			}
			if !r.HasRule(tt.rule) {
				t.Errorf("expected rule %s, got %v", tt.rule, r.Rules())
			}
		})
	}
}

func TestCustomVariancePhrases(t *testing.T) {
	text := canonical(map[model.LayerName]string{
		model.LayerOutputContract: "format: JSON\nschema: {}\nvariance: wiggle room\non_failure: error",
	})
	if r := Validate(text, DefaultOptions()); r.HasRule(model.RuleUnenumeratedVariance) {
		t.Fatal("default list should not know this phrase")
	}
	opts := DefaultOptions()
	opts.VariancePhrases = denylist.New(denylist.Patterns{Phrases: []string{"wiggle room"}})
	r := Validate(text, opts)
	if !r.HasRule(model.RuleUnenumeratedVariance) || !r.Compliant {
		t.Errorf("expected compliant report with a variance warning, got %+v", r.Violations)
	}
}

func TestZeroOptions(t *testing.T) {
	text := loadExample(t, "code-refactor.ics")
	a, _ := json.Marshal(Validate(text, Options{}))
	b, _ := json.Marshal(Validate(text, DefaultOptions()))
	if string(a) != string(b) {
		t.Errorf("zero options should behave like defaults:\n%s\n%s", a, b)
	}
}

func TestReportJSONShape(t *testing.T) {
	out, err := json.Marshal(Validate(canonical(nil), DefaultOptions()))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"compliant":true,"violations":[]}` {
		t.Errorf("unexpected JSON %s", out)
	}
}
