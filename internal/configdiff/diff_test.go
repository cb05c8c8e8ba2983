package configdiff

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/icscheck/internal/config"
)

func findChange(r *DiffResult, field string) (Change, bool) {
	for _, c := range r.Changes {
		if c.Field == field {
			return c, true
		}
	}
	return Change{}, false
}

func TestIdenticalConfigsNoChanges(t *testing.T) {
	r := Diff(config.DefaultConfig(), config.DefaultConfig())
	if r.HasChanges {
		t.Errorf("expected no changes, got %+v", r)
	}
	if !strings.Contains(FormatText(r), "No changes detected.") {
		t.Errorf("unexpected text:\n%s", FormatText(r))
	}
}

func TestLowerMinLengthIsStricter(t *testing.T) {
	a, b := config.DefaultConfig(), config.DefaultConfig()
	b.Restatement.MinLength = 24

	r := Diff(a, b)
	c, ok := findChange(r, "restatement.min_length")
	if !ok {
		t.Fatal("min_length change not found")
	}
	if c.Old != "40" || c.New != "24" || c.Comment != "stricter" {
		t.Errorf("unexpected change %+v", c)
	}

	r = Diff(b, a)
	if c, _ := findChange(r, "restatement.min_length"); c.Comment != "looser" {
		t.Errorf("reverse should be looser, got %+v", c)
	}
}

func TestBoolChanges(t *testing.T) {
	a, b := config.DefaultConfig(), config.DefaultConfig()
	b.Sentinel.FoldCase = true
	b.Output.FailOnWarnings = true

	r := Diff(a, b)
	if c, _ := findChange(r, "sentinel.fold_case"); c.Comment != "looser" {
		t.Errorf("folding the sentinel should be looser, got %+v", c)
	}
	if c, _ := findChange(r, "output.fail_on_warnings"); c.Comment != "stricter" {
		t.Errorf("failing on warnings should be stricter, got %+v", c)
	}
}

func TestPhraseChanges(t *testing.T) {
	a, b := config.DefaultConfig(), config.DefaultConfig()
	a.Variance.Phrases = []string{"roughly", "kind of"}
	b.Variance.Phrases = []string{"roughly", "best effort", "best effort"}

	r := Diff(a, b)
	want := []PhraseChange{{Type: "added", Phrase: "best effort"}, {Type: "removed", Phrase: "kind of"}}
	if len(r.PhraseChanges) != len(want) {
		t.Fatalf("got %+v, want %+v", r.PhraseChanges, want)
	}
	for i := range want {
		if r.PhraseChanges[i] != want[i] {
			t.Errorf("[%d] got %+v, want %+v", i, r.PhraseChanges[i], want[i])
		}
	}

	text := FormatText(r)
	for _, s := range []string{"+ best effort", "- kind of"} {
		if !strings.Contains(text, s) {
			t.Errorf("text missing %q:\n%s", s, text)
		}
	}
}

func TestStringChangeHasNoComment(t *testing.T) {
	a, b := config.DefaultConfig(), config.DefaultConfig()
	b.Audit.Path = "/var/log/icscheck.jsonl"

	r := Diff(a, b)
	c, ok := findChange(r, "audit.path")
	if !ok || c.Comment != "" || c.Old != "" {
		t.Fatalf("unexpected change %+v", c)
	}
	if !strings.Contains(FormatText(r), "(none) -> /var/log/icscheck.jsonl") {
		t.Errorf("unexpected text:\n%s", FormatText(r))
	}
}

func TestFormatJSON(t *testing.T) {
	a, b := config.DefaultConfig(), config.DefaultConfig()
	b.Limits.MaxInputBytes = 4096
	r := Diff(a, b)
	r.OldPath, r.NewPath = "a.yaml", "b.yaml"

	out, err := FormatJSON(r)
	if err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}
	var parsed DiffResult
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !parsed.HasChanges || parsed.OldPath != "a.yaml" || len(parsed.Changes) != 1 {
		t.Errorf("unexpected result %+v", parsed)
	}
	if parsed.Changes[0].Comment != "stricter" {
		t.Errorf("smaller input limit should be stricter, got %+v", parsed.Changes[0])
	}
}

func TestRateLimitZeroIsUnlimited(t *testing.T) {
	a, b := config.DefaultConfig(), config.DefaultConfig()
	b.Limits.RequestsPerMinute = 600

	if c, _ := findChange(Diff(a, b), "limits.requests_per_minute"); c.Comment != "stricter" {
		t.Errorf("adding a limit should be stricter, got %+v", c)
	}
	if c, _ := findChange(Diff(b, a), "limits.requests_per_minute"); c.Comment != "looser" {
		t.Errorf("removing a limit should be looser, got %+v", c)
	}
}
