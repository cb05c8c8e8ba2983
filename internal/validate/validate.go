// Package validate runs the full conformance pipeline over one instruction
// and merges every stage's findings into a single report.
package validate

import (
	"github.com/ppiankov/icscheck/internal/consistency"
	"github.com/ppiankov/icscheck/internal/contract"
	"github.com/ppiankov/icscheck/internal/denylist"
	"github.com/ppiankov/icscheck/internal/directive"
	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/segment"
	"github.com/ppiankov/icscheck/internal/session"
)

// Options tunes the content checks. The zero value is valid and behaves
// like DefaultOptions.
type Options struct {
	// FoldSentinelCase matches the CLEAR sentinel case-insensitively.
	FoldSentinelCase bool
	// MinRestatementLen is the shortest normalized run, in bytes, that
	// counts as restatement. Zero selects the default of 40.
	MinRestatementLen int
	// VariancePhrases flags vague variance values. Nil selects the
	// built-in deny-list.
	VariancePhrases contract.PhraseMatcher
}

// DefaultOptions returns case-sensitive sentinel matching, a 40-byte
// restatement minimum and the built-in deny-list.
func DefaultOptions() Options {
	return Options{
		MinRestatementLen: consistency.DefaultMinRestatementLen,
		VariancePhrases:   denylist.NewDefault(),
	}
}

// Result is a report plus the artefacts parsed on the way. Layers and the
// content artefacts are nil/zero when a structural stage failed.
// Violation and directive lines are 1-based within the instruction.
type Result struct {
	Report     *model.Report
	Layers     *model.Layers
	Directives []model.Directive
	Session    model.SessionState
	Contract   model.OutputContract
}

// Validate checks text and returns its report.
func Validate(text string, opts Options) *model.Report {
	return Run(text, opts).Report
}

// Run executes the stages in order: segment, order, directive, session,
// contract, consistency. A segment or order failure stops the run and only
// structural violations are reported; the content stages are never run.
func Run(text string, opts Options) *Result {
	seq, violations := segment.Segment(text)
	if len(violations) > 0 {
		return &Result{Report: model.NewReport(violations)}
	}
	layers, violations := segment.CheckOrder(seq)
	if len(violations) > 0 {
		return &Result{Report: model.NewReport(violations)}
	}

	vague := opts.VariancePhrases
	if vague == nil {
		vague = denylist.NewDefault()
	}

	res := &Result{Layers: layers}
	var all []model.Violation

	capLayer := layers.Get(model.LayerCapabilityDeclaration)
	directives, vs := directive.Parse(capLayer.Content)
	for i := range directives {
		directives[i].Line += capLayer.Line
	}
	res.Directives = directives
	all = append(all, rebase(vs, layers)...)

	res.Session, vs = session.Check(layers.Get(model.LayerSessionState).Content, opts.FoldSentinelCase)
	all = append(all, rebase(vs, layers)...)

	res.Contract, vs = contract.Check(layers.Get(model.LayerOutputContract).Content, vague)
	all = append(all, rebase(vs, layers)...)

	vs = consistency.Check(layers, consistency.Options{MinRestatementLen: opts.MinRestatementLen})
	all = append(all, rebase(vs, layers)...)

	res.Report = model.NewReport(all)
	return res
}

// rebase converts layer-relative violation lines to instruction lines.
// Content starts on the line after the opening marker.
func rebase(vs []model.Violation, layers *model.Layers) []model.Violation {
	for i := range vs {
		if vs[i].Line == 0 || vs[i].Layer == "" {
			continue
		}
		name, ok := model.ParseLayerName(vs[i].Layer)
		if !ok {
			continue
		}
		vs[i].Line += layers.Get(name).Line
	}
	return vs
}
