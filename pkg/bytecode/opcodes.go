package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category; unused values inside a
// range are reserved for roadmap features so the container format never
// has to change shape.
type Opcode byte

const (
	// ========================================================================
	// Core (0x00-0x0F)
	// ========================================================================

	OpNop   Opcode = 0x00 // No operation
	OpHalt  Opcode = 0x01 // Stop execution
	OpPop   Opcode = 0x02 // Pop top of stack
	OpConst Opcode = 0x03 // Push constant from pool: OpConst <index>
	OpTrue  Opcode = 0x04 // Push boolean true
	OpFalse Opcode = 0x05 // Push boolean false

	// ========================================================================
	// Local variables (0x10-0x1F)
	// ========================================================================

	OpLoadLocal  Opcode = 0x10 // Push local slot value: OpLoadLocal <slot>
	OpStoreLocal Opcode = 0x11 // Pop and store to local slot: OpStoreLocal <slot>

	// ========================================================================
	// Integer arithmetic (0x20-0x2F)
	// ========================================================================

	OpAddInt Opcode = 0x20 // Pop two ints, push sum
	OpSubInt Opcode = 0x21 // Pop two ints, push difference (a - b, b on top)
	OpMulInt Opcode = 0x22 // Pop two ints, push product
	OpDivInt Opcode = 0x23 // Pop two ints, push quotient; zero divisor faults
	OpNegInt Opcode = 0x24 // Negate top int

	// ========================================================================
	// Float arithmetic (0x30-0x3F)
	// ========================================================================

	OpAddFloat Opcode = 0x30
	OpSubFloat Opcode = 0x31
	OpMulFloat Opcode = 0x32
	OpDivFloat Opcode = 0x33 // Zero divisor faults
	OpNegFloat Opcode = 0x34

	// ========================================================================
	// Strings (0x40-0x4F)
	// ========================================================================

	OpConcatStr Opcode = 0x40 // Pop two strings, push concatenation

	// ========================================================================
	// Integer comparison (0x50-0x5F)
	// ========================================================================

	OpEqInt Opcode = 0x50
	OpNeInt Opcode = 0x51
	OpLtInt Opcode = 0x52
	OpLeInt Opcode = 0x53
	OpGtInt Opcode = 0x54
	OpGeInt Opcode = 0x55

	// ========================================================================
	// Float comparison (0x60-0x6F)
	// ========================================================================

	OpEqFloat Opcode = 0x60
	OpNeFloat Opcode = 0x61
	OpLtFloat Opcode = 0x62
	OpLeFloat Opcode = 0x63
	OpGtFloat Opcode = 0x64
	OpGeFloat Opcode = 0x65

	// ========================================================================
	// Bool/string equality and logic (0x70-0x7F)
	// ========================================================================

	OpEqBool Opcode = 0x70
	OpNeBool Opcode = 0x71
	OpEqStr  Opcode = 0x74
	OpNeStr  Opcode = 0x75
	OpNot    Opcode = 0x78 // Flip top bool

	// ========================================================================
	// Control flow (0x80-0x8F)
	// ========================================================================

	OpJump        Opcode = 0x80 // Jump to absolute instruction index: OpJump <target>
	OpJumpIfFalse Opcode = 0x81 // Pop bool, jump if false: OpJumpIfFalse <target>
)

// OpcodeInfo provides metadata about each opcode for disassembly and
// load-time validation.
type OpcodeInfo struct {
	Name      string // Human-readable name
	StackPop  int    // How many values popped from stack
	StackPush int    // How many values pushed to stack
	Operands  int    // Number of meaningful operand fields (0 or 1)
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpNop:   {"NOP", 0, 0, 0},
	OpHalt:  {"HALT", 0, 0, 0},
	OpPop:   {"POP", 1, 0, 0},
	OpConst: {"CONST", 0, 1, 1},
	OpTrue:  {"TRUE", 0, 1, 0},
	OpFalse: {"FALSE", 0, 1, 0},

	OpLoadLocal:  {"LOAD_LOCAL", 0, 1, 1},
	OpStoreLocal: {"STORE_LOCAL", 1, 0, 1},

	OpAddInt: {"ADD_INT", 2, 1, 0},
	OpSubInt: {"SUB_INT", 2, 1, 0},
	OpMulInt: {"MUL_INT", 2, 1, 0},
	OpDivInt: {"DIV_INT", 2, 1, 0},
	OpNegInt: {"NEG_INT", 1, 1, 0},

	OpAddFloat: {"ADD_FLOAT", 2, 1, 0},
	OpSubFloat: {"SUB_FLOAT", 2, 1, 0},
	OpMulFloat: {"MUL_FLOAT", 2, 1, 0},
	OpDivFloat: {"DIV_FLOAT", 2, 1, 0},
	OpNegFloat: {"NEG_FLOAT", 1, 1, 0},

	OpConcatStr: {"CONCAT_STR", 2, 1, 0},

	OpEqInt: {"EQ_INT", 2, 1, 0},
	OpNeInt: {"NE_INT", 2, 1, 0},
	OpLtInt: {"LT_INT", 2, 1, 0},
	OpLeInt: {"LE_INT", 2, 1, 0},
	OpGtInt: {"GT_INT", 2, 1, 0},
	OpGeInt: {"GE_INT", 2, 1, 0},

	OpEqFloat: {"EQ_FLOAT", 2, 1, 0},
	OpNeFloat: {"NE_FLOAT", 2, 1, 0},
	OpLtFloat: {"LT_FLOAT", 2, 1, 0},
	OpLeFloat: {"LE_FLOAT", 2, 1, 0},
	OpGtFloat: {"GT_FLOAT", 2, 1, 0},
	OpGeFloat: {"GE_FLOAT", 2, 1, 0},

	OpEqBool: {"EQ_BOOL", 2, 1, 0},
	OpNeBool: {"NE_BOOL", 2, 1, 0},
	OpEqStr:  {"EQ_STR", 2, 1, 0},
	OpNeStr:  {"NE_STR", 2, 1, 0},
	OpNot:    {"NOT", 1, 1, 0},

	OpJump:        {"JUMP", 0, 0, 1},
	OpJumpIfFalse: {"JUMP_IF_FALSE", 1, 0, 1},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// IsValid returns true if the opcode is defined in this format version.
func (op Opcode) IsValid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// IsJump returns true if this opcode transfers control.
func (op Opcode) IsJump() bool {
	return op == OpJump || op == OpJumpIfFalse
}

// UsesLocalSlot returns true if operand0 is a local slot index.
func (op Opcode) UsesLocalSlot() bool {
	return op == OpLoadLocal || op == OpStoreLocal
}

// UsesConstant returns true if operand0 is a constant pool index.
func (op Opcode) UsesConstant() bool {
	return op == OpConst
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that every opcode has metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}
