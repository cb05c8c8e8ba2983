package icscheck

import (
	"fmt"

	"github.com/ppiankov/icscheck/internal/config"
	"github.com/ppiankov/icscheck/internal/directive"
	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/profile"
	"github.com/ppiankov/icscheck/internal/validate"
)

// Validator holds resolved options. It has no mutable state and is safe
// for concurrent use.
type Validator struct {
	opts validate.Options
}

// New creates a Validator with the given options.
func New(opts ...Option) *Validator {
	var cfg validatorConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Validator{opts: cfg.options()}
}

// NewFromProfile creates a Validator from a named profile (built-in or
// ~/.icscheck/profiles/<name>.yaml). Options apply on top of the profile.
func NewFromProfile(name string, opts ...Option) (*Validator, error) {
	p, err := profile.Load(name)
	if err != nil {
		return nil, fmt.Errorf("icscheck: failed to load profile %q: %w", name, err)
	}
	cfg := profile.ApplyToConfig(p, config.DefaultConfig())

	vc := validatorConfig{
		foldSentinel:   cfg.Sentinel.FoldCase,
		minRestatement: cfg.Restatement.MinLength,
		phrases:        cfg.Variance.Phrases,
	}
	for _, o := range opts {
		o(&vc)
	}
	return &Validator{opts: vc.options()}, nil
}

// Validate checks one instruction.
func (v *Validator) Validate(text string) *Report {
	return toReport(validate.Validate(text, v.opts))
}

// Validate checks one instruction with the given options.
func Validate(text string, opts ...Option) *Report {
	return New(opts...).Validate(text)
}

// ParseDirectives parses the body of a CAPABILITY_DECLARATION layer. Lines
// that fail to parse are reported as violations with layer-relative lines.
func ParseDirectives(body string) ([]Directive, []Violation) {
	ds, vs := directive.Parse(body)
	directives := make([]Directive, 0, len(ds))
	for _, d := range ds {
		directives = append(directives, toDirective(d))
	}
	return directives, toReport(&model.Report{Violations: vs}).Violations
}
