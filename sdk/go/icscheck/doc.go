// Package icscheck validates Instruction Context Standard instructions
// in-process. An instruction is five delimited layers in a fixed order;
// Validate reports every structural and content violation it finds.
//
// Usage:
//
//	r := icscheck.Validate(text, icscheck.WithMinRestatement(24))
//	if !r.Compliant {
//	    for _, v := range r.Violations {
//	        log.Printf("%s line %d: %s", v.RuleID, v.Line, v.Message)
//	    }
//	}
//
// The SDK links directly against internal packages. External users import
// github.com/ppiankov/icscheck/sdk/go/icscheck.
package icscheck
