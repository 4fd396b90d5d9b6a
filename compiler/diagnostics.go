package compiler

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Diagnostics: structured compile-time errors
// ---------------------------------------------------------------------------

// DiagKind classifies a diagnostic. Lex and parse errors halt their pass;
// type errors are collected so one pass can report several problems.
type DiagKind int

const (
	LexError DiagKind = iota
	ParseError

	// Type checker kinds
	NameError     // use of an undeclared or out-of-scope identifier
	TypeMismatch  // operand or initializer type does not match what is required
	Redeclaration // second declaration of a name in the same scope

	CapacityError // program exceeds a bytecode format limit
)

var diagKindNames = map[DiagKind]string{
	LexError:      "LexError",
	ParseError:    "ParseError",
	NameError:     "NameError",
	TypeMismatch:  "TypeMismatch",
	Redeclaration: "Redeclaration",
	CapacityError: "CapacityError",
}

func (k DiagKind) String() string {
	if name, ok := diagKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DiagKind(%d)", int(k))
}

// Diagnostic is a single compile-time error with enough structure for
// tooling: kind, message, and source position.
type Diagnostic struct {
	Kind    DiagKind
	Message string
	Pos     Position
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", d.Kind, d.Pos.Line, d.Pos.Column, d.Message)
}

// FormatDiagnostics renders diagnostics with the offending source line and a
// caret marker, one block per diagnostic.
func FormatDiagnostics(source string, diags []Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	var sb strings.Builder

	for _, d := range diags {
		sb.WriteString(d.Error())
		sb.WriteByte('\n')

		lineIdx := d.Pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			continue
		}
		srcLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")
		sb.WriteString("  " + srcLine + "\n")

		marker := d.Pos.Column - 1
		if marker < 0 {
			marker = 0
		}
		sb.WriteString("  " + strings.Repeat(" ", marker) + "^\n")
	}

	return sb.String()
}
