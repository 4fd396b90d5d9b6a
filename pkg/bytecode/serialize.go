package bytecode

import (
	"encoding/binary"
	"math"
)

// Serialize encodes the program to the .hydc wire format.
//
// All multi-byte integers are little-endian regardless of host platform.
// Layout:
//
//	[magic:4] [version:u16]
//	[const_pool_len:u32] [constants...]
//	[local_slot_count:u16]
//	[instr_len:u32] [instructions...]
//
// Each constant: [type_tag:u8][payload] where int and float payloads are
// 8 bytes and strings are u32-length-prefixed UTF-8.
// Each instruction: [opcode:u8][operand0:u32][operand1:u32].
func (p *Program) Serialize() []byte {
	estimated := 16 + len(p.Constants)*16 + len(p.Instructions)*9
	buf := make([]byte, 0, estimated)

	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint16(buf, p.Version)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Constants)))
	for _, c := range p.Constants {
		buf = append(buf, byte(c.Tag))
		switch c.Tag {
		case TagInt:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(c.Int))
		case TagFloat:
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c.Float))
		case TagString:
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Str)))
			buf = append(buf, c.Str...)
		}
	}

	buf = binary.LittleEndian.AppendUint16(buf, p.LocalSlots)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Instructions)))
	for _, in := range p.Instructions {
		buf = append(buf, byte(in.Op))
		buf = binary.LittleEndian.AppendUint32(buf, in.A)
		buf = binary.LittleEndian.AppendUint32(buf, in.B)
	}

	return buf
}
