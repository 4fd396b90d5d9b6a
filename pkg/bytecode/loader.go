package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Loader: .hydc deserialization and structural validation
// ---------------------------------------------------------------------------

// LoadErrorKind classifies why a .hydc byte sequence was rejected.
type LoadErrorKind int

const (
	BadMagic LoadErrorKind = iota
	UnsupportedVersion
	TruncatedData
	MalformedConstant
	InvalidOpcode
	OutOfRangeReference
)

var loadErrorKindNames = map[LoadErrorKind]string{
	BadMagic:            "BadMagic",
	UnsupportedVersion:  "UnsupportedVersion",
	TruncatedData:       "TruncatedData",
	MalformedConstant:   "MalformedConstant",
	InvalidOpcode:       "InvalidOpcode",
	OutOfRangeReference: "OutOfRangeReference",
}

func (k LoadErrorKind) String() string {
	if name, ok := loadErrorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LoadErrorKind(%d)", int(k))
}

// LoadError reports a structural inconsistency in a .hydc byte sequence.
// Loading always aborts on the first problem; there is no partial load.
type LoadError struct {
	Kind   LoadErrorKind
	Offset int // byte offset where the problem was found, -1 if not byte-addressed
	Msg    string
}

func (e *LoadError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at byte %d: %s", e.Kind, e.Offset, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func loadErrorf(kind LoadErrorKind, offset int, format string, args ...interface{}) *LoadError {
	return &LoadError{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Load deserializes a .hydc byte sequence into a Program, validating the
// magic header, version, and every index the instruction stream carries.
// Jump targets, constant indices, and local slots are bounds-checked here
// so the VM's dispatch loop can trust them without per-instruction checks.
func Load(data []byte) (*Program, error) {
	if len(data) < len(Magic)+2 {
		return nil, loadErrorf(TruncatedData, len(data), "need at least %d bytes for header, got %d", len(Magic)+2, len(data))
	}

	if string(data[:4]) != string(Magic) {
		return nil, loadErrorf(BadMagic, 0, "expected %q, got %q", Magic, data[:4])
	}

	p := &Program{Version: binary.LittleEndian.Uint16(data[4:6])}
	pos := 6

	if p.Version > FormatVersion {
		return nil, loadErrorf(UnsupportedVersion, 4, "format version %d is newer than supported version %d", p.Version, FormatVersion)
	}

	// Constant pool
	if pos+4 > len(data) {
		return nil, loadErrorf(TruncatedData, pos, "reading constant pool length")
	}
	constCount := binary.LittleEndian.Uint32(data[pos:])
	pos += 4

	// A constant occupies at least a tag byte plus four payload bytes
	// (the empty string), so an honest count can never exceed the
	// remaining data. Checking before allocating keeps a hostile count
	// from forcing a giant allocation.
	const minConstSize = 5
	if uint64(constCount) > uint64(len(data)-pos)/minConstSize {
		return nil, loadErrorf(TruncatedData, pos-4, "constant pool claims %d entries, %d bytes remain", constCount, len(data)-pos)
	}

	p.Constants = make([]Constant, 0, constCount)
	for i := uint32(0); i < constCount; i++ {
		if pos >= len(data) {
			return nil, loadErrorf(TruncatedData, pos, "reading constant %d tag", i)
		}
		tag := ConstantTag(data[pos])
		pos++

		switch tag {
		case TagInt:
			if pos+8 > len(data) {
				return nil, loadErrorf(TruncatedData, pos, "reading constant %d int payload", i)
			}
			p.Constants = append(p.Constants, IntConstant(int64(binary.LittleEndian.Uint64(data[pos:]))))
			pos += 8

		case TagFloat:
			if pos+8 > len(data) {
				return nil, loadErrorf(TruncatedData, pos, "reading constant %d float payload", i)
			}
			p.Constants = append(p.Constants, FloatConstant(math.Float64frombits(binary.LittleEndian.Uint64(data[pos:]))))
			pos += 8

		case TagString:
			if pos+4 > len(data) {
				return nil, loadErrorf(TruncatedData, pos, "reading constant %d string length", i)
			}
			strLen := binary.LittleEndian.Uint32(data[pos:])
			pos += 4
			if uint32(len(data)-pos) < strLen {
				return nil, loadErrorf(TruncatedData, pos, "reading constant %d string payload (%d bytes)", i, strLen)
			}
			p.Constants = append(p.Constants, StringConstant(string(data[pos:pos+int(strLen)])))
			pos += int(strLen)

		default:
			return nil, loadErrorf(MalformedConstant, pos-1, "constant %d has unknown type tag 0x%02X", i, byte(tag))
		}
	}

	// Local slot count
	if pos+2 > len(data) {
		return nil, loadErrorf(TruncatedData, pos, "reading local slot count")
	}
	p.LocalSlots = binary.LittleEndian.Uint16(data[pos:])
	pos += 2

	// Instruction stream
	if pos+4 > len(data) {
		return nil, loadErrorf(TruncatedData, pos, "reading instruction count")
	}
	instrCount := binary.LittleEndian.Uint32(data[pos:])
	pos += 4

	const recordSize = 9 // opcode:u8 + operand0:u32 + operand1:u32
	if uint64(instrCount) > uint64(len(data)-pos)/recordSize {
		return nil, loadErrorf(TruncatedData, pos, "instruction stream needs %d records, %d bytes remain", instrCount, len(data)-pos)
	}

	p.Instructions = make([]Instruction, 0, instrCount)
	for i := uint32(0); i < instrCount; i++ {
		op := Opcode(data[pos])
		if !op.IsValid() {
			return nil, loadErrorf(InvalidOpcode, pos, "instruction %d has unknown opcode 0x%02X", i, data[pos])
		}
		a := binary.LittleEndian.Uint32(data[pos+1:])
		b := binary.LittleEndian.Uint32(data[pos+5:])
		pos += recordSize
		p.Instructions = append(p.Instructions, Instruction{Op: op, A: a, B: b})
	}

	if err := validateReferences(p); err != nil {
		return nil, err
	}

	return p, nil
}

// validateReferences bounds-checks every constant index, local slot, and
// jump target against the decoded program. Finding a bad index here is a
// LoadError, never a runtime crash.
func validateReferences(p *Program) error {
	for i, in := range p.Instructions {
		switch {
		case in.Op.UsesConstant():
			if in.A >= uint32(len(p.Constants)) {
				return loadErrorf(OutOfRangeReference, -1, "instruction %d references constant %d, pool has %d entries", i, in.A, len(p.Constants))
			}

		case in.Op.UsesLocalSlot():
			if in.A >= uint32(p.LocalSlots) {
				return loadErrorf(OutOfRangeReference, -1, "instruction %d references local slot %d, program declares %d slots", i, in.A, p.LocalSlots)
			}

		case in.Op.IsJump():
			if in.A >= uint32(len(p.Instructions)) {
				return loadErrorf(OutOfRangeReference, -1, "instruction %d jumps to %d, program has %d instructions", i, in.A, len(p.Instructions))
			}
		}
	}
	return nil
}
