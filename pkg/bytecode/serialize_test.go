package bytecode

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

// sampleProgram builds a small program exercising every constant tag,
// locals, and a jump.
func sampleProgram() *Program {
	p := NewProgram()
	p.LocalSlots = 2

	ci := p.AddConstant(IntConstant(42))
	cf := p.AddConstant(FloatConstant(3.5))
	cs := p.AddConstant(StringConstant("héllo"))

	p.Emit(OpConst, ci)
	p.Emit(OpStoreLocal, 0)
	p.Emit(OpConst, cf)
	p.Emit(OpStoreLocal, 1)
	p.Emit(OpConst, cs)
	p.Emit(OpPop, 0)
	jump := p.Emit(OpJump, 0)
	p.Emit(OpNop, 0)
	p.PatchJump(jump, p.CurrentIndex())
	p.Emit(OpHalt, 0)
	return p
}

func TestSerializeHeader(t *testing.T) {
	data := sampleProgram().Serialize()

	if string(data[:4]) != "HYDC" {
		t.Errorf("magic = %q, want HYDC", data[:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != FormatVersion {
		t.Errorf("version = %d, want %d", v, FormatVersion)
	}
	if n := binary.LittleEndian.Uint32(data[6:10]); n != 3 {
		t.Errorf("constant count = %d, want 3", n)
	}
}

func TestRoundTrip(t *testing.T) {
	orig := sampleProgram()
	loaded, err := Load(orig.Serialize())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(orig, loaded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, orig)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	p := sampleProgram()
	a := p.Serialize()
	b := p.Serialize()
	if !reflect.DeepEqual(a, b) {
		t.Error("serializing the same program twice produced different bytes")
	}
}

func TestConstantDeduplication(t *testing.T) {
	p := NewProgram()
	a := p.AddConstant(IntConstant(7))
	b := p.AddConstant(IntConstant(7))
	c := p.AddConstant(StringConstant("x"))
	d := p.AddConstant(StringConstant("x"))

	if a != b {
		t.Errorf("duplicate int got indices %d and %d", a, b)
	}
	if c != d {
		t.Errorf("duplicate string got indices %d and %d", c, d)
	}
	if len(p.Constants) != 2 {
		t.Errorf("pool size = %d, want 2", len(p.Constants))
	}
}

func wantLoadError(t *testing.T, data []byte, kind LoadErrorKind) {
	t.Helper()
	_, err := Load(data)
	if err == nil {
		t.Fatal("Load succeeded, want error")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("error is %T, want *LoadError", err)
	}
	if le.Kind != kind {
		t.Errorf("kind = %s, want %s (%v)", le.Kind, kind, le)
	}
}

func TestLoadBadMagic(t *testing.T) {
	data := sampleProgram().Serialize()
	data[0] = 'X'
	wantLoadError(t, data, BadMagic)
}

func TestLoadUnsupportedVersion(t *testing.T) {
	data := sampleProgram().Serialize()
	binary.LittleEndian.PutUint16(data[4:6], FormatVersion+1)
	wantLoadError(t, data, UnsupportedVersion)
}

func TestLoadTruncated(t *testing.T) {
	data := sampleProgram().Serialize()

	// Every possible truncation point must yield TruncatedData, never a
	// panic or a partial program.
	for n := 0; n < len(data); n++ {
		wantLoadError(t, data[:n], TruncatedData)
	}
}

func TestLoadHugeConstantPoolCount(t *testing.T) {
	// A header claiming 4 billion constants with no payload must be
	// rejected up front, before any allocation sized from the count.
	data := append([]byte{}, Magic...)
	data = binary.LittleEndian.AppendUint16(data, FormatVersion)
	data = binary.LittleEndian.AppendUint32(data, 0xFFFFFFFF)
	wantLoadError(t, data, TruncatedData)
}

func TestLoadHugeInstructionCount(t *testing.T) {
	data := NewProgram().Serialize()
	// The instruction count field of an empty program sits at offset 12.
	binary.LittleEndian.PutUint32(data[12:], 0xFFFFFFFF)
	wantLoadError(t, data, TruncatedData)
}

func TestLoadMalformedConstant(t *testing.T) {
	data := sampleProgram().Serialize()
	data[10] = 0x7F // first constant's tag byte
	wantLoadError(t, data, MalformedConstant)
}

func TestLoadInvalidOpcode(t *testing.T) {
	p := NewProgram()
	p.Emit(OpHalt, 0)
	data := p.Serialize()
	data[len(data)-9] = 0xEE // the single instruction's opcode byte
	wantLoadError(t, data, InvalidOpcode)
}

func TestLoadOutOfRangeConstant(t *testing.T) {
	p := NewProgram()
	p.Emit(OpConst, 99)
	p.Emit(OpHalt, 0)
	wantLoadError(t, p.Serialize(), OutOfRangeReference)
}

func TestLoadOutOfRangeSlot(t *testing.T) {
	p := NewProgram()
	p.LocalSlots = 1
	p.Emit(OpLoadLocal, 5)
	p.Emit(OpHalt, 0)
	wantLoadError(t, p.Serialize(), OutOfRangeReference)
}

func TestLoadOutOfRangeJump(t *testing.T) {
	p := NewProgram()
	p.Emit(OpJump, 100)
	p.Emit(OpHalt, 0)
	wantLoadError(t, p.Serialize(), OutOfRangeReference)
}

func TestLoadEmptyProgram(t *testing.T) {
	p := NewProgram()
	loaded, err := Load(p.Serialize())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Instructions) != 0 || len(loaded.Constants) != 0 {
		t.Errorf("expected empty program, got %+v", loaded)
	}
}

func TestLoadErrorMessage(t *testing.T) {
	_, err := Load([]byte("nope"))
	if err == nil {
		t.Fatal("want error")
	}
	if err.Error() == "" {
		t.Error("empty error message")
	}
}
