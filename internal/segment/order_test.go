package segment

import (
	"strings"
	"testing"

	"github.com/ppiankov/icscheck/internal/model"
)

func seqOf(names ...model.LayerName) []model.Layer {
	out := make([]model.Layer, 0, len(names))
	for i, n := range names {
		out = append(out, model.Layer{Name: n, Content: n.String(), Line: i*3 + 1})
	}
	return out
}

func TestCheckOrderCanonical(t *testing.T) {
	layers, violations := CheckOrder(seqOf(model.CanonicalOrder[:]...))
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
	for _, n := range model.CanonicalOrder {
		if layers.Get(n).Name != n || layers.Get(n).Content != n.String() {
			t.Errorf("layer %s not indexed by name", n)
		}
	}
}

func TestCheckOrderMissingLayer(t *testing.T) {
	_, violations := CheckOrder(seqOf(
		model.LayerImmutableContext,
		model.LayerCapabilityDeclaration,
		model.LayerTaskPayload,
		model.LayerOutputContract,
	))
	if len(violations) != 1 {
		t.Fatalf("expected only the missing layer to be reported, got %+v", violations)
	}
	v := violations[0]
	if v.Layer != "SESSION_STATE" || v.RuleID != model.RuleOrderViolation {
		t.Errorf("unexpected violation: %+v", v)
	}
	if !strings.Contains(v.Message, "missing") || !strings.Contains(v.Message, "position 3") {
		t.Errorf("unexpected message: %q", v.Message)
	}
}

func TestCheckOrderEmpty(t *testing.T) {
	_, violations := CheckOrder(nil)
	if len(violations) != model.LayerCount {
		t.Fatalf("expected %d missing-layer violations, got %d", model.LayerCount, len(violations))
	}
}

// misplaced counts positions where a permutation differs from canonical order.
func misplaced(perm []model.LayerName) int {
	n := 0
	for i, name := range perm {
		if name != model.CanonicalOrder[i] {
			n++
		}
	}
	return n
}

func permutations(in []model.LayerName) [][]model.LayerName {
	if len(in) <= 1 {
		return [][]model.LayerName{append([]model.LayerName(nil), in...)}
	}
	var out [][]model.LayerName
	for i := range in {
		rest := make([]model.LayerName, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]model.LayerName{in[i]}, p...))
		}
	}
	return out
}

func TestCheckOrderEveryPermutation(t *testing.T) {
	perms := permutations(model.CanonicalOrder[:])
	if len(perms) != 120 {
		t.Fatalf("expected 120 permutations, got %d", len(perms))
	}
	for _, perm := range perms {
		layers, violations := CheckOrder(seqOf(perm...))
		want := misplaced(perm)
		if len(violations) != want {
			t.Errorf("permutation %v: expected %d violations, got %d", perm, want, len(violations))
		}
		if want == 0 && layers == nil {
			t.Errorf("canonical permutation must produce layers")
		}
		if want > 0 && layers != nil {
			t.Errorf("permutation %v: expected no layers on failure", perm)
		}
		for _, v := range violations {
			if v.RuleID != model.RuleOrderViolation || v.Stage != model.StageOrder {
				t.Errorf("unexpected violation: %+v", v)
			}
		}
	}
}

func TestCheckOrderMessageNamesPositions(t *testing.T) {
	_, violations := CheckOrder(seqOf(
		model.LayerImmutableContext,
		model.LayerTaskPayload,
		model.LayerCapabilityDeclaration,
		model.LayerSessionState,
		model.LayerOutputContract,
	))
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %+v", violations)
	}
	if violations[2].Layer != "TASK_PAYLOAD" || !strings.Contains(violations[2].Message, "position 2, expected position 4") {
		t.Errorf("unexpected TASK_PAYLOAD violation: %+v", violations[2])
	}
}
