package bytecode

import (
	"reflect"
	"testing"

	"github.com/hydor-lang/hydor/compiler"
)

// compile runs the front end and the emitter on source that must be
// accepted.
func compile(t *testing.T, source string) (*Program, *DebugInfo) {
	t.Helper()
	prog, diags := compiler.Parse(source)
	if len(diags) > 0 {
		t.Fatalf("Parse(%q): %v", source, diags)
	}
	slots, diags := compiler.Check(prog)
	if len(diags) > 0 {
		t.Fatalf("Check(%q): %v", source, diags)
	}
	p, debug, err := Emit(prog, slots)
	if err != nil {
		t.Fatalf("Emit(%q): %v", source, err)
	}
	return p, debug
}

func ops(p *Program) []Opcode {
	out := make([]Opcode, len(p.Instructions))
	for i, in := range p.Instructions {
		out[i] = in.Op
	}
	return out
}

func TestEmitIntExpression(t *testing.T) {
	p, _ := compile(t, `1 + 2;`)

	want := []Opcode{OpConst, OpConst, OpAddInt, OpPop, OpHalt}
	if got := ops(p); !reflect.DeepEqual(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
}

func TestEmitTypeSpecialization(t *testing.T) {
	tests := []struct {
		source string
		want   Opcode
	}{
		{`1 + 2;`, OpAddInt},
		{`1.0 + 2.0;`, OpAddFloat},
		{`"a" + "b";`, OpConcatStr},
		{`1 - 2;`, OpSubInt},
		{`1.0 / 2.0;`, OpDivFloat},
		{`1 < 2;`, OpLtInt},
		{`1.0 >= 2.0;`, OpGeFloat},
		{`1 == 2;`, OpEqInt},
		{`true != false;`, OpNeBool},
		{`"a" == "b";`, OpEqStr},
		{`-1;`, OpNegInt},
		{`-1.5;`, OpNegFloat},
		{`!true;`, OpNot},
	}

	for _, tt := range tests {
		p, _ := compile(t, tt.source)
		found := false
		for _, in := range p.Instructions {
			if in.Op == tt.want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%q: %s not emitted, got %v", tt.source, tt.want, ops(p))
		}
	}
}

func TestEmitBoolsNeverPooled(t *testing.T) {
	p, _ := compile(t, `true; false; true == false;`)
	if len(p.Constants) != 0 {
		t.Errorf("constant pool = %v, want empty", p.Constants)
	}
	want := []Opcode{OpTrue, OpPop, OpFalse, OpPop, OpTrue, OpFalse, OpEqBool, OpPop, OpHalt}
	if got := ops(p); !reflect.DeepEqual(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
}

func TestEmitLetAndIdentifier(t *testing.T) {
	p, _ := compile(t, `let x: int = 5; x;`)

	want := []Opcode{OpConst, OpStoreLocal, OpLoadLocal, OpPop, OpHalt}
	if got := ops(p); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if p.LocalSlots != 1 {
		t.Errorf("LocalSlots = %d, want 1", p.LocalSlots)
	}
	if p.Instructions[1].A != 0 || p.Instructions[2].A != 0 {
		t.Errorf("slot operands = %d, %d, want 0, 0", p.Instructions[1].A, p.Instructions[2].A)
	}
}

func TestEmitAssignmentLeavesNothing(t *testing.T) {
	// Assignment has type unit, so the statement emits no OpPop.
	p, _ := compile(t, `let x: int = 1; x = 2;`)

	want := []Opcode{OpConst, OpStoreLocal, OpConst, OpStoreLocal, OpHalt}
	if got := ops(p); !reflect.DeepEqual(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
}

func TestEmitIfElse(t *testing.T) {
	p, _ := compile(t, `let x: int = 0; if (true) { x = 1; } else { x = 2; }`)

	want := []Opcode{
		OpConst, OpStoreLocal, // let
		OpTrue, OpJumpIfFalse, // condition
		OpConst, OpStoreLocal, OpJump, // then
		OpConst, OpStoreLocal, // else
		OpHalt,
	}
	if got := ops(p); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}

	// JumpIfFalse targets the else branch; Jump skips past it.
	if p.Instructions[3].A != 7 {
		t.Errorf("JumpIfFalse target = %d, want 7", p.Instructions[3].A)
	}
	if p.Instructions[6].A != 9 {
		t.Errorf("Jump target = %d, want 9", p.Instructions[6].A)
	}
}

func TestEmitIfWithoutElse(t *testing.T) {
	p, _ := compile(t, `if (false) { 1; }`)

	want := []Opcode{OpFalse, OpJumpIfFalse, OpConst, OpPop, OpHalt}
	if got := ops(p); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if p.Instructions[1].A != 4 {
		t.Errorf("JumpIfFalse target = %d, want 4", p.Instructions[1].A)
	}
}

func TestEmitShadowingGetsFreshSlot(t *testing.T) {
	p, _ := compile(t, `let x: int = 1; { let x: string = "s"; }`)
	if p.LocalSlots != 2 {
		t.Errorf("LocalSlots = %d, want 2", p.LocalSlots)
	}
	// Second store targets the shadow's own slot.
	stores := []uint32{}
	for _, in := range p.Instructions {
		if in.Op == OpStoreLocal {
			stores = append(stores, in.A)
		}
	}
	if !reflect.DeepEqual(stores, []uint32{0, 1}) {
		t.Errorf("store slots = %v, want [0 1]", stores)
	}
}

func TestEmitConstantDedup(t *testing.T) {
	p, _ := compile(t, `1 + 1; "s" == "s";`)
	if len(p.Constants) != 2 {
		t.Errorf("pool = %v, want 2 entries", p.Constants)
	}
}

func TestEmitDebugPositions(t *testing.T) {
	_, debug := compile(t, "1;\n2 / 0;")

	// The division instruction sits after both constant pushes.
	line, col, ok := debug.Lookup(4)
	if !ok {
		t.Fatal("no debug entry for pc 4")
	}
	if line != 2 {
		t.Errorf("line = %d, want 2", line)
	}
	if col != 3 {
		t.Errorf("col = %d, want 3", col)
	}
}

func TestEmitSlotCapacity(t *testing.T) {
	// The slot count travels in a u16, so anything past MaxLocalSlots
	// must be rejected rather than silently truncated.
	empty := &compiler.Program{}

	if _, _, err := Emit(empty, MaxLocalSlots+1); err == nil {
		t.Errorf("Emit with %d slots succeeded, want error", MaxLocalSlots+1)
	}

	p, _, err := Emit(empty, MaxLocalSlots)
	if err != nil {
		t.Fatalf("Emit with %d slots: %v", MaxLocalSlots, err)
	}
	if p.LocalSlots != MaxLocalSlots {
		t.Errorf("LocalSlots = %d, want %d", p.LocalSlots, MaxLocalSlots)
	}
}

func TestEmitOutputIsLoadable(t *testing.T) {
	p, _ := compile(t, `
let a: int = 10;
let b: int = 3;
if (a > b) {
	a = a - b;
}
a * 2;
`)
	loaded, err := Load(p.Serialize())
	if err != nil {
		t.Fatalf("Load of emitted program: %v", err)
	}
	vm := NewVM()
	if err := vm.Execute(loaded); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := vm.LastPopped(); got.Kind != KindInt || got.Int != 14 {
		t.Errorf("result = %v, want 14", got)
	}
}
