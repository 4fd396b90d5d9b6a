package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable bytecode listing for the program.
func (p *Program) Disassemble() string {
	return p.DisassembleWithDebug(nil)
}

// DisassembleWithDebug returns a listing annotated with source lines
// from the given debug table. A nil DebugInfo is allowed.
func (p *Program) DisassembleWithDebug(debug *DebugInfo) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("; Hydor Bytecode v%d\n", p.Version))
	if p.LocalSlots > 0 {
		sb.WriteString(fmt.Sprintf("; Locals: %d slots\n", p.LocalSlots))
	}
	sb.WriteString("\n")

	// Constants
	if len(p.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, c := range p.Constants {
			display := c.String()
			if len(display) > 40 {
				display = display[:37] + "..."
			}
			display = strings.ReplaceAll(display, "\n", "\\n")
			display = strings.ReplaceAll(display, "\t", "\\t")
			sb.WriteString(fmt.Sprintf(";   [%3d] %-6s %s\n", i, c.Tag, display))
		}
		sb.WriteString("\n")
	}

	// Code section
	sb.WriteString("; Code:\n")
	for i, in := range p.Instructions {
		line := p.disassembleInstruction(in)
		if debug != nil {
			if srcLine, srcCol, ok := debug.Lookup(i); ok {
				sb.WriteString(fmt.Sprintf("%04d  %-30s ; line %d:%d\n", i, line, srcLine, srcCol))
				continue
			}
		}
		sb.WriteString(fmt.Sprintf("%04d  %s\n", i, line))
	}

	return sb.String()
}

// disassembleInstruction formats a single instruction with its operand
// rendered in the most useful form for its opcode category.
func (p *Program) disassembleInstruction(in Instruction) string {
	info := GetOpcodeInfo(in.Op)

	switch {
	case in.Op.UsesConstant():
		annot := "<out of range>"
		if int(in.A) < len(p.Constants) {
			annot = p.Constants[in.A].String()
		}
		return fmt.Sprintf("%-16s %d (%s)", info.Name, in.A, annot)

	case in.Op.UsesLocalSlot():
		return fmt.Sprintf("%-16s slot %d", info.Name, in.A)

	case in.Op.IsJump():
		return fmt.Sprintf("%-16s -> %04d", info.Name, in.A)

	default:
		return info.Name
	}
}

// DisassembleToLines returns the listing split into lines, without the
// trailing empty line. Useful for tests and line-oriented tooling.
func (p *Program) DisassembleToLines() []string {
	out := strings.Split(p.Disassemble(), "\n")
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
