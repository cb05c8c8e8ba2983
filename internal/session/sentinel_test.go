package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/icscheck/internal/model"
)

func TestCheckCleared(t *testing.T) {
	for _, content := range []string{"CLEAR", "  CLEAR\n", "\n\nCLEAR\n\n"} {
		state, violations := Check(content, false)
		if !state.IsCleared() {
			t.Errorf("Check(%q): expected cleared", content)
		}
		if len(violations) != 0 {
			t.Errorf("Check(%q): unexpected violations %+v", content, violations)
		}
	}
}

func TestCheckSentinelWithOtherContent(t *testing.T) {
	state, violations := Check("CLEAR\nfoo", false)
	if state.IsCleared() {
		t.Error("contaminated sentinel must not clear the session")
	}
	if len(violations) != 1 {
		t.Fatalf("expected one violation, got %+v", violations)
	}
	v := violations[0]
	if v.RuleID != model.RuleMalformedSessionState || v.Severity != model.SeverityError {
		t.Errorf("unexpected violation %+v", v)
	}
	if v.Line != 1 {
		t.Errorf("expected sentinel on line 1, got %d", v.Line)
	}
}

func TestCheckSentinelAfterEntries(t *testing.T) {
	_, violations := Check("[2024-01-20T15:00Z] New window: past 30 days\n\nCLEAR", false)
	if len(violations) != 1 || violations[0].Line != 3 {
		t.Fatalf("expected violation at line 3, got %+v", violations)
	}
}

func TestCheckEntries(t *testing.T) {
	content := "[2024-01-15T09:30Z] Confirmed: discount logic lives in pricing.py\n\n  [2024-01-15T09:45Z] Decision: split discounts  \n"
	state, violations := Check(content, false)
	if len(violations) != 0 {
		t.Fatalf("unexpected violations %+v", violations)
	}
	want := []string{
		"[2024-01-15T09:30Z] Confirmed: discount logic lives in pricing.py",
		"[2024-01-15T09:45Z] Decision: split discounts",
	}
	if diff := cmp.Diff(want, state.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckSentinelSubstringIsAnEntry(t *testing.T) {
	state, violations := Check("CLEAR the cache before running", false)
	if state.IsCleared() || len(violations) != 0 {
		t.Errorf("sentinel inside prose is an ordinary entry, got cleared=%v %+v", state.IsCleared(), violations)
	}
}

func TestCheckCaseSensitivity(t *testing.T) {
	state, violations := Check("clear", false)
	if state.IsCleared() || len(violations) != 0 {
		t.Errorf("strict matching must treat lower-case clear as an entry")
	}

	state, violations = Check("clear", true)
	if !state.IsCleared() || len(violations) != 0 {
		t.Errorf("folded matching must accept lower-case clear")
	}

	_, violations = Check("Clear\nmore", true)
	if len(violations) != 1 {
		t.Errorf("folded matching must also detect contamination, got %+v", violations)
	}
}

func TestCheckEmpty(t *testing.T) {
	state, violations := Check("", false)
	if state.IsCleared() || len(state.Entries()) != 0 || len(violations) != 0 {
		t.Errorf("empty session must be an empty entry list")
	}
}
