package certify

import (
	"fmt"
	"slices"

	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/validate"
)

// CaseResult records one case's outcome.
type CaseResult struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual"`
	Rules    []string `json:"rules"`
	Missing  []string `json:"missing,omitempty"`
	Error    string   `json:"error,omitempty"`
	Passed   bool     `json:"passed"`
}

// CategoryResult holds pass/fail results for one category.
type CategoryResult struct {
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}

// CertResult holds the full certification outcome.
type CertResult struct {
	Suite      string           `json:"suite"`
	Version    string           `json:"version"`
	Profile    string           `json:"profile"`
	Total      int              `json:"total"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	Categories []CategoryResult `json:"categories"`
}

// Run executes a suite with the given validator options. profileName is
// recorded in the result only.
func Run(suite *Suite, profileName string, opts validate.Options) *CertResult {
	result := &CertResult{
		Suite:   suite.Name,
		Version: suite.Version,
		Profile: profileName,
	}

	for _, cat := range suite.Categories {
		cr := runCategory(cat, opts)
		result.Total += cr.Total
		result.Passed += cr.Passed
		result.Failed += cr.Failed
		result.Categories = append(result.Categories, cr)
	}
	return result
}

func runCategory(cat Category, opts validate.Options) CategoryResult {
	cr := CategoryResult{
		Name:  cat.Name,
		Total: len(cat.Cases),
	}
	for i, c := range cat.Cases {
		res := runCase(c, opts)
		res.Index = i + 1
		if res.Passed {
			cr.Passed++
		} else {
			cr.Failed++
		}
		cr.Cases = append(cr.Cases, res)
	}
	return cr
}

func runCase(c Case, opts validate.Options) CaseResult {
	res := CaseResult{
		Name:     c.Name,
		Expected: c.Expect,
		Rules:    []string{},
	}

	text, err := c.Build()
	if err != nil {
		res.Actual = "error"
		res.Error = err.Error()
		return res
	}

	r := validate.Validate(text, opts)
	res.Actual = outcome(r)
	for _, id := range r.Rules() {
		if !slices.Contains(res.Rules, string(id)) {
			res.Rules = append(res.Rules, string(id))
		}
	}
	for _, want := range c.Rules {
		if !r.HasRule(model.RuleID(want)) {
			res.Missing = append(res.Missing, want)
		}
	}

	switch c.Expect {
	case ExpectCompliant, ExpectNonCompliant:
		res.Passed = res.Actual == c.Expect && len(res.Missing) == 0
	default:
		res.Error = fmt.Sprintf("unknown expectation %q", c.Expect)
	}
	return res
}

func outcome(r *model.Report) string {
	if r.Compliant {
		return ExpectCompliant
	}
	return ExpectNonCompliant
}
