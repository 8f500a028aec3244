// Package patch applies ordered structured edit operations to in-memory
// text. It is pure: no I/O, no partial application — the first failing
// operation aborts the whole batch.
package patch

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Kind identifies a failure class so callers can surface it as a structured
// tool-result payload instead of an opaque message.
type Kind string

const (
	KindInvalidRange         Kind = "InvalidRange"
	KindInvalidLine          Kind = "InvalidLine"
	KindInvalidPattern       Kind = "InvalidPattern"
	KindUnsupportedOperation Kind = "UnsupportedOperation"
)

// Error is a typed patch failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Operation is one structured edit. Numeric fields are pointers to floats so
// that non-integer inputs from model-emitted JSON are detected and rejected
// rather than silently truncated.
type Operation struct {
	Kind       string   `json:"kind"`
	StartLine  *float64 `json:"start_line,omitempty"`
	EndLine    *float64 `json:"end_line,omitempty"`
	Line       *float64 `json:"line,omitempty"`
	Position   string   `json:"position,omitempty"`
	Pattern    string   `json:"pattern,omitempty"`
	Flags      string   `json:"flags,omitempty"`
	NewContent string   `json:"new_content"`
}

// Apply runs the operations strictly in order, each against the result of
// the previous one, and returns the final text.
func Apply(original string, ops []Operation) (string, error) {
	text := original
	for i, op := range ops {
		next, err := applyOne(text, op)
		if err != nil {
			var pe *Error
			if pErr, ok := err.(*Error); ok {
				pe = pErr
			} else {
				pe = errf(KindUnsupportedOperation, "%v", err)
			}
			pe.Message = fmt.Sprintf("operation %d (%s): %s", i+1, op.Kind, pe.Message)
			return "", pe
		}
		text = next
	}
	return text, nil
}

func applyOne(text string, op Operation) (string, error) {
	switch op.Kind {
	case "replace_range":
		return replaceRange(text, op)
	case "insert_at":
		return insertAt(text, op)
	case "replace_regex":
		return replaceRegex(text, op)
	case "append":
		return text + op.NewContent, nil
	case "prepend":
		return op.NewContent + text, nil
	default:
		return "", errf(KindUnsupportedOperation, "unrecognized operation kind %q", op.Kind)
	}
}

func replaceRange(text string, op Operation) (string, error) {
	start, err := intLine(op.StartLine, "start_line", KindInvalidRange)
	if err != nil {
		return "", err
	}
	end, err := intLine(op.EndLine, "end_line", KindInvalidRange)
	if err != nil {
		return "", err
	}
	if start < 1 {
		return "", errf(KindInvalidRange, "start_line must be >= 1, got %d", start)
	}
	if end < start {
		return "", errf(KindInvalidRange, "end_line %d is before start_line %d", end, start)
	}

	lines := splitLines(text)
	if start > len(lines) {
		start = len(lines) + 1
	}
	if end > len(lines) {
		end = len(lines)
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:start-1]...)
	out = append(out, splitLines(op.NewContent)...)
	if end < len(lines) {
		out = append(out, lines[end:]...)
	}
	return strings.Join(out, "\n"), nil
}

func insertAt(text string, op Operation) (string, error) {
	line, err := intLine(op.Line, "line", KindInvalidLine)
	if err != nil {
		return "", err
	}
	if line < 1 {
		return "", errf(KindInvalidLine, "line must be >= 1, got %d", line)
	}
	position := strings.ToLower(strings.TrimSpace(op.Position))
	if position == "" {
		position = "before"
	}
	if position != "before" && position != "after" {
		return "", errf(KindInvalidLine, "position must be before or after, got %q", op.Position)
	}

	lines := splitLines(text)
	at := line - 1 // boundary index before line N
	if position == "after" {
		at = line
	}
	if at > len(lines) {
		at = len(lines)
	}

	block := splitLines(op.NewContent)
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n"), nil
}

func replaceRegex(text string, op Operation) (string, error) {
	flags, ok := normalizeFlags(op.Flags)
	if !ok {
		return "", errf(KindInvalidPattern, "unsupported regex flags %q", op.Flags)
	}
	pattern := op.Pattern
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", errf(KindInvalidPattern, "compile %q: %v", op.Pattern, err)
	}
	// Single global pass over the entire current text.
	return re.ReplaceAllString(text, op.NewContent), nil
}

// normalizeFlags keeps the Go-supported inline flags and drops "g", which is
// implicit in ReplaceAllString. Unknown flags fail the operation.
func normalizeFlags(flags string) (string, bool) {
	var b strings.Builder
	for _, r := range flags {
		switch r {
		case 'i', 'm', 's', 'U':
			b.WriteRune(r)
		case 'g':
			// global is the default
		default:
			return "", false
		}
	}
	return b.String(), true
}

func intLine(v *float64, field string, kind Kind) (int, error) {
	if v == nil {
		return 0, errf(kind, "%s is required", field)
	}
	if *v != math.Trunc(*v) {
		return 0, errf(kind, "%s must be an integer, got %v", field, *v)
	}
	return int(*v), nil
}

// splitLines splits on \n; an empty document has zero lines so splices at
// the boundaries behave uniformly.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
