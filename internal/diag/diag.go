// Package diag implements structured diagnostics for tape errors: shape
// mismatches, out-of-range positions, branch violations and stale
// references, formatted the way the rest of this toolkit's ancestry reports
// compiler errors — a leveled, coded message plus optional notes and help
// text, rendered in color.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a Diagnostic.
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warning"
	LevelNote  Level = "note"
)

// Code identifies the diagnostic's kind.
type Code string

const (
	CodeShapeMismatch    Code = "E1001"
	CodeOutOfRange       Code = "E1002"
	CodeUnresolvedSig    Code = "E1003"
	CodeCalcFailure      Code = "E1004"
	CodeStaleReference   Code = "E1005"
	CodeBranchViolation  Code = "E1006"
	CodeLoopConditionBad Code = "E1007"
)

// Diagnostic is a single structured error or note about a tape.
type Diagnostic struct {
	Level    Level
	Code     Code
	Message  string
	Position int // tape operation id this diagnostic concerns, 0 if none
	Notes    []string
	Help     string
}

func (d Diagnostic) Error() string { return d.Message }

// New constructs a Diagnostic at error level with the given code.
func New(code Code, format string, args ...any) *Diagnostic {
	return &Diagnostic{Level: LevelError, Code: code, Message: fmt.Sprintf(format, args...)}
}

// At returns a copy of d anchored to tape position id.
func (d *Diagnostic) At(id int) *Diagnostic {
	c := *d
	c.Position = id
	return &c
}

// WithNote appends a context note.
func (d *Diagnostic) WithNote(format string, args ...any) *Diagnostic {
	c := *d
	c.Notes = append(append([]string(nil), c.Notes...), fmt.Sprintf(format, args...))
	return &c
}

// WithHelp attaches help text suggesting a fix.
func (d *Diagnostic) WithHelp(format string, args ...any) *Diagnostic {
	c := *d
	c.Help = fmt.Sprintf(format, args...)
	return &c
}

// Format renders the diagnostic the way a terminal-facing tool would: a
// colorized leveled header followed by any notes and help text, one per
// line.
func (d *Diagnostic) Format() string {
	var b strings.Builder

	levelColor := colorFor(d.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		fmt.Fprintf(&b, "%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, bold(d.Message))
	} else {
		fmt.Fprintf(&b, "%s: %s\n", levelColor(string(d.Level)), bold(d.Message))
	}
	if d.Position != 0 {
		fmt.Fprintf(&b, "  %s %%%d\n", dim("-->"), d.Position)
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "  %s note: %s\n", dim("="), n)
	}
	if d.Help != "" {
		fmt.Fprintf(&b, "  %s help: %s\n", dim("="), d.Help)
	}
	return b.String()
}

func colorFor(l Level) func(a ...any) string {
	switch l {
	case LevelError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case LevelWarn:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgCyan).SprintFunc()
	}
}

// ShapeMismatch builds the inputs! arity diagnostic.
func ShapeMismatch(expected, got int) *Diagnostic {
	return New(CodeShapeMismatch, "inputs!: expected %d arguments, got %d", expected, got).
		WithHelp("pass exactly %d value(s), or mark the tape variadic via Meta[\"isva\"]", expected)
}

// OutOfRange builds the tape-indexing "missing key" diagnostic.
func OutOfRange(id, max int) *Diagnostic {
	return New(CodeOutOfRange, "position %%%d out of range [1, %d]", id, max).At(id)
}

// BranchViolation builds the optional should_assert_branches! diagnostic:
// re-execution took a different branch than the trace observed.
func BranchViolation(id int, traced, observed any) *Diagnostic {
	return New(CodeBranchViolation, "branch condition at %%%d changed: traced %v, now %v", id, traced, observed).
		At(id).
		WithNote("the input followed a different branch than the one recorded during tracing").
		WithHelp("re-trace the function for this input, or disable should_assert_branches!")
}

// StaleReference flags a variable addressing an id deleted without a
// rebind_to, detectable in a debug-mode verifier.
func StaleReference(id int) *Diagnostic {
	return New(CodeStaleReference, "position %%%d was deleted without a rebind target but is still referenced", id).At(id)
}
