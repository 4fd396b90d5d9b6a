package bytecode

import "fmt"

// FormatVersion is the current .hydc format version.
// Increment when making incompatible changes to the format. Loaders
// strictly reject anything newer than they understand.
const FormatVersion uint16 = 1

// Magic bytes for .hydc files: "HYDC" (Hydor ByteCode).
var Magic = []byte{'H', 'Y', 'D', 'C'}

// MaxLocalSlots bounds the local slot array; slot operands are encoded in
// a u32 field but the count is stored as u16.
const MaxLocalSlots = 1<<16 - 1

// ConstantTag identifies the type of a constant pool entry on the wire.
type ConstantTag byte

const (
	TagInt    ConstantTag = 0x01 // 8-byte little-endian two's complement
	TagFloat  ConstantTag = 0x02 // 8-byte little-endian IEEE 754
	TagString ConstantTag = 0x03 // u32 length prefix + UTF-8 bytes
)

func (t ConstantTag) String() string {
	switch t {
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagString:
		return "string"
	default:
		return fmt.Sprintf("ConstantTag(0x%02X)", byte(t))
	}
}

// Constant is one constant pool entry. The pool is deduplicated by
// value+type and immutable after emission.
type Constant struct {
	Tag   ConstantTag
	Int   int64
	Float float64
	Str   string
}

func (c Constant) String() string {
	switch c.Tag {
	case TagInt:
		return fmt.Sprintf("%d", c.Int)
	case TagFloat:
		return fmt.Sprintf("%g", c.Float)
	case TagString:
		return fmt.Sprintf("%q", c.Str)
	default:
		return "<invalid>"
	}
}

// IntConstant builds an int pool entry.
func IntConstant(v int64) Constant { return Constant{Tag: TagInt, Int: v} }

// FloatConstant builds a float pool entry.
func FloatConstant(v float64) Constant { return Constant{Tag: TagFloat, Float: v} }

// StringConstant builds a string pool entry.
func StringConstant(v string) Constant { return Constant{Tag: TagString, Str: v} }

// Instruction is one fixed-size bytecode record. Instructions are
// positionally addressed; jump operands are absolute instruction indices
// within the same program. Unused operand fields are zero.
type Instruction struct {
	Op Opcode
	A  uint32 // operand0: constant index, local slot, or jump target
	B  uint32 // operand1: reserved, zero in this format version
}

// Program is an executable bytecode unit: constant pool, instruction
// sequence, and the local slot count the VM must allocate. It is built
// once by the emitter, serialized, and consumed read-only by the VM.
type Program struct {
	Version      uint16
	Constants    []Constant
	LocalSlots   uint16
	Instructions []Instruction
}

// NewProgram creates an empty program with the current format version.
func NewProgram() *Program {
	return &Program{
		Version:      FormatVersion,
		Constants:    make([]Constant, 0, 8),
		Instructions: make([]Instruction, 0, 64),
	}
}

// AddConstant adds a constant to the pool and returns its index.
// Entries are deduplicated by value and type.
func (p *Program) AddConstant(c Constant) uint32 {
	for i, existing := range p.Constants {
		if existing == c {
			return uint32(i)
		}
	}
	idx := uint32(len(p.Constants))
	p.Constants = append(p.Constants, c)
	return idx
}

// Emit appends an instruction and returns its index.
func (p *Program) Emit(op Opcode, a uint32) int {
	idx := len(p.Instructions)
	p.Instructions = append(p.Instructions, Instruction{Op: op, A: a})
	return idx
}

// PatchJump rewrites the operand of a previously emitted jump to target
// the instruction at the given index.
func (p *Program) PatchJump(at int, target int) {
	p.Instructions[at].A = uint32(target)
}

// CurrentIndex returns the index the next emitted instruction will get.
func (p *Program) CurrentIndex() int {
	return len(p.Instructions)
}
