package segment

import (
	"fmt"

	"github.com/ppiankov/icscheck/internal/model"
)

// CheckOrder confirms that every canonical layer is present and that the
// present layers follow canonical order. It emits one OrderViolation per
// missing layer and one per misplaced layer. Positions are 1-based and
// relative to the layers actually present, so a single missing layer does
// not also flag every layer after it.
//
// Duplicates cannot reach this check: Segment rejects them.
func CheckOrder(seq []model.Layer) (*model.Layers, []model.Violation) {
	var (
		violations []model.Violation
		observed   [model.LayerCount]int
		present    [model.LayerCount]bool
	)
	for i, l := range seq {
		observed[l.Name] = i
		present[l.Name] = true
	}

	expected := 0
	for i, name := range model.CanonicalOrder {
		if !present[name] {
			violations = append(violations, orderViolation(name, 0,
				"required layer %s is missing (expected at position %d)", name, i+1))
			continue
		}
		if observed[name] != expected {
			violations = append(violations, orderViolation(name, seq[observed[name]].Line,
				"layer %s is at position %d, expected position %d", name, observed[name]+1, expected+1))
		}
		expected++
	}

	if len(violations) > 0 {
		return nil, violations
	}

	var layers model.Layers
	for _, l := range seq {
		layers[l.Name] = l
	}
	return &layers, nil
}

func orderViolation(name model.LayerName, line int, format string, args ...any) model.Violation {
	return model.Violation{
		Stage:    model.StageOrder,
		Layer:    name.String(),
		RuleID:   model.RuleOrderViolation,
		Message:  fmt.Sprintf(format, args...),
		Severity: model.SeverityError,
		Line:     line,
	}
}
