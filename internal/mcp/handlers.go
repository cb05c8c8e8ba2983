package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/directive"
	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/validate"
)

// ValidateInput defines parameters for the ics_validate tool.
type ValidateInput struct {
	Instruction string `json:"instruction" jsonschema:"full instruction text containing the five ICS layers"`
	Source      string `json:"source,omitempty" jsonschema:"optional name of the instruction for the audit log"`
}

// ValidateOutput is the conformance report.
type ValidateOutput struct {
	Compliant  bool              `json:"compliant"`
	Errors     int               `json:"errors"`
	Warnings   int               `json:"warnings"`
	Violations []model.Violation `json:"violations"`
}

// DirectivesInput defines parameters for the ics_directives tool.
type DirectivesInput struct {
	Body string `json:"body" jsonschema:"CAPABILITY_DECLARATION layer body, one directive per line"`
}

// DirectiveItem is one parsed directive. Absent qualifier or condition
// fields are omitted.
type DirectiveItem struct {
	Keyword         string `json:"keyword"`
	Action          string `json:"action"`
	QualifierKind   string `json:"qualifier_kind,omitempty"`
	QualifierTarget string `json:"qualifier_target,omitempty"`
	Condition       string `json:"condition,omitempty"`
	Line            int    `json:"line"`
}

// DirectivesOutput lists parsed directives and grammar violations.
type DirectivesOutput struct {
	Directives []DirectiveItem   `json:"directives"`
	Violations []model.Violation `json:"violations"`
}

func (s *Server) handleValidate(ctx context.Context, req *mcpsdk.CallToolRequest, input ValidateInput) (*mcpsdk.CallToolResult, ValidateOutput, error) {
	if int64(len(input.Instruction)) > s.maxBytes {
		return nil, ValidateOutput{}, fmt.Errorf("%w: %d bytes (limit %d)", validate.ErrInputTooLarge, len(input.Instruction), s.maxBytes)
	}
	if _, err := validate.Decode([]byte(input.Instruction)); err != nil {
		return nil, ValidateOutput{}, err
	}

	r := validate.Validate(input.Instruction, s.opts)
	source := input.Source
	if source == "" {
		source = "mcp"
	}
	s.recordAudit(source, input.Instruction, r)
	s.logger.Debug("validated",
		zap.String("source", source),
		zap.Bool("compliant", r.Compliant),
		zap.Int("violations", len(r.Violations)))

	return nil, ValidateOutput{
		Compliant:  r.Compliant,
		Errors:     r.Errors(),
		Warnings:   r.Warnings(),
		Violations: r.Violations,
	}, nil
}

func (s *Server) handleDirectives(ctx context.Context, req *mcpsdk.CallToolRequest, input DirectivesInput) (*mcpsdk.CallToolResult, DirectivesOutput, error) {
	if int64(len(input.Body)) > s.maxBytes {
		return nil, DirectivesOutput{}, fmt.Errorf("%w: %d bytes (limit %d)", validate.ErrInputTooLarge, len(input.Body), s.maxBytes)
	}

	directives, violations := directive.Parse(input.Body)
	out := DirectivesOutput{
		Directives: make([]DirectiveItem, 0, len(directives)),
		Violations: violations,
	}
	if out.Violations == nil {
		out.Violations = []model.Violation{}
	}
	for _, d := range directives {
		out.Directives = append(out.Directives, toItem(d))
	}
	return nil, out, nil
}

func toItem(d model.Directive) DirectiveItem {
	item := DirectiveItem{
		Keyword: string(d.Keyword),
		Action:  d.Action,
		Line:    d.Line,
	}
	if kind, target, ok := d.Qualifier.Get(); ok {
		item.QualifierKind = string(kind)
		item.QualifierTarget = target
	}
	if cond, ok := d.Condition.Get(); ok {
		item.Condition = cond
	}
	return item
}
