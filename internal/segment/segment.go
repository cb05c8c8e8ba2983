// Package segment splits instruction text into layers and checks that the
// five canonical layers are present once each, in canonical order.
package segment

import (
	"fmt"
	"strings"

	"github.com/ppiankov/icscheck/internal/model"
)

const (
	openPrefix   = "###ICS:"
	closePrefix  = "###END:"
	markerSuffix = "###"
)

type markerKind int

const (
	markerNone markerKind = iota
	markerOpen
	markerClose
)

// openLayer tracks the layer whose closing marker has not been seen yet.
type openLayer struct {
	name         model.LayerName
	offset       int
	line         int
	contentStart int
}

// Segment scans text for boundary markers and returns the layers in the
// order they appear. On the first boundary error it stops and returns a
// single MalformedBoundary violation; no recovery is attempted.
//
// Text outside any layer is ignored. Layer content is the verbatim text
// between the marker lines.
func Segment(text string) ([]model.Layer, []model.Violation) {
	var (
		layers []model.Layer
		open   *openLayer
		seen   [model.LayerCount]bool
	)

	lineNo := 0
	for pos := 0; pos < len(text); {
		lineNo++
		end := strings.IndexByte(text[pos:], '\n')
		next := len(text)
		if end < 0 {
			end = len(text)
		} else {
			end += pos
			next = end + 1
		}
		lineStart := pos
		line := text[lineStart:end]
		pos = next

		kind, label := parseMarker(strings.TrimSpace(line))
		switch kind {
		case markerOpen:
			if open != nil {
				return nil, boundaryError(label, lineStart, lineNo,
					"layer %s opened before %s (opened at line %d) was closed", label, open.name, open.line)
			}
			name, ok := model.ParseLayerName(label)
			if !ok {
				return nil, boundaryError(label, lineStart, lineNo,
					"unknown layer name %s; valid names are %s", label, canonicalList())
			}
			if seen[name] {
				return nil, boundaryError(label, lineStart, lineNo,
					"layer %s opened more than once", label)
			}
			seen[name] = true
			open = &openLayer{name: name, offset: lineStart, line: lineNo, contentStart: next}

		case markerClose:
			if open == nil {
				return nil, boundaryError(label, lineStart, lineNo,
					"closing marker for %s without a matching opening marker", label)
			}
			if label != open.name.String() {
				return nil, boundaryError(label, lineStart, lineNo,
					"closing marker for %s does not match open layer %s", label, open.name)
			}
			contentEnd := lineStart - 1
			if contentEnd < open.contentStart {
				contentEnd = open.contentStart
			}
			content := strings.TrimSuffix(text[open.contentStart:contentEnd], "\r")
			layers = append(layers, model.Layer{
				Name:    open.name,
				Content: content,
				Span:    model.Span{Start: open.contentStart, End: open.contentStart + len(content)},
				Line:    open.line,
			})
			open = nil
		}
	}

	if open != nil {
		return nil, boundaryError(open.name.String(), open.offset, open.line,
			"layer %s opened at line %d was never closed", open.name, open.line)
	}

	return layers, nil
}

// parseMarker classifies a trimmed line. Marker names may only contain
// ASCII letters, digits, '_' and '-'; anything else is ordinary text.
func parseMarker(line string) (markerKind, string) {
	if !strings.HasSuffix(line, markerSuffix) {
		return markerNone, ""
	}
	var kind markerKind
	var rest string
	switch {
	case strings.HasPrefix(line, openPrefix):
		kind, rest = markerOpen, line[len(openPrefix):]
	case strings.HasPrefix(line, closePrefix):
		kind, rest = markerClose, line[len(closePrefix):]
	default:
		return markerNone, ""
	}
	if len(rest) <= len(markerSuffix) {
		return markerNone, ""
	}
	label := rest[:len(rest)-len(markerSuffix)]
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			return markerNone, ""
		}
	}
	return kind, label
}

func boundaryError(label string, offset, line int, format string, args ...any) []model.Violation {
	return []model.Violation{{
		Stage:    model.StageSegment,
		Layer:    label,
		RuleID:   model.RuleMalformedBoundary,
		Message:  fmt.Sprintf(format, args...) + fmt.Sprintf(" (byte offset %d)", offset),
		Severity: model.SeverityError,
		Line:     line,
		Offset:   &offset,
	}}
}

func canonicalList() string {
	names := make([]string, 0, model.LayerCount)
	for _, n := range model.CanonicalOrder {
		names = append(names, n.String())
	}
	return strings.Join(names, ", ")
}
