package bytecode

import (
	"fmt"
	"sync/atomic"
)

// MaxStackDepth is the default limit on operand stack growth. Exceeding
// the limit raises a StackOverflow fault instead of growing unboundedly.
// SetMaxStack overrides it per VM.
const MaxStackDepth = 10_000

// ValueKind tags a runtime value. The emitter chooses type-specialized
// opcodes, so the VM never branches on a value's kind during dispatch;
// the tag exists for results, debugging, and the REPL.
type ValueKind byte

const (
	KindInt ValueKind = iota
	KindFloat
	KindBool
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("ValueKind(%d)", byte(k))
	}
}

// Value is a runtime value on the operand stack or in a local slot.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindString:
		return v.Str
	default:
		return "<invalid>"
	}
}

// IntValue builds an int value.
func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }

// FloatValue builds a float value.
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// BoolValue builds a bool value.
func BoolValue(v bool) Value { return Value{Kind: KindBool, Bool: v} }

// StringValue builds a string value.
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }

// FaultKind classifies runtime faults.
type FaultKind int

const (
	DivisionByZero FaultKind = iota
	StackUnderflow
	StackOverflow
	Interrupted
)

var faultKindNames = map[FaultKind]string{
	DivisionByZero: "DivisionByZero",
	StackUnderflow: "StackUnderflow",
	StackOverflow:  "StackOverflow",
	Interrupted:    "Interrupted",
}

func (k FaultKind) String() string {
	if name, ok := faultKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// Fault is a runtime error that halts execution. PC is the instruction
// index of the faulting instruction. Line and Column are filled in when
// debug info is available, zero otherwise.
type Fault struct {
	Kind   FaultKind
	PC     int
	Line   int
	Column int
	Msg    string
}

func (f *Fault) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s at pc %d (%d:%d): %s", f.Kind, f.PC, f.Line, f.Column, f.Msg)
	}
	return fmt.Sprintf("%s at pc %d: %s", f.Kind, f.PC, f.Msg)
}

// VM executes a loaded Program. A VM is single-use per Execute call but
// the struct may be reused; Execute resets all run state. Not safe for
// concurrent Execute calls; Interrupt may be called from any goroutine.
type VM struct {
	stack  []Value
	sp     int
	locals []Value
	pc     int

	lastPopped  Value
	interrupted atomic.Bool

	maxStack int
	debug    *DebugInfo
}

// NewVM creates a VM with a preallocated operand stack.
func NewVM() *VM {
	return &VM{stack: make([]Value, 256), maxStack: MaxStackDepth}
}

// SetMaxStack overrides the operand stack limit for subsequent runs.
// Values below one keep the current limit.
func (vm *VM) SetMaxStack(n int) {
	if n > 0 {
		vm.maxStack = n
	}
}

// Interrupt requests cooperative cancellation. The dispatch loop checks
// the flag once per instruction and raises an Interrupted fault.
func (vm *VM) Interrupt() {
	vm.interrupted.Store(true)
}

// LastPopped returns the most recently popped value. Expression statements
// pop their result, so after a run this is the value of the last
// expression statement executed. Useful for interactive evaluation.
func (vm *VM) LastPopped() Value {
	return vm.lastPopped
}

func (vm *VM) fault(kind FaultKind, format string, args ...interface{}) *Fault {
	f := &Fault{Kind: kind, PC: vm.pc, Msg: fmt.Sprintf(format, args...)}
	if vm.debug != nil {
		if line, col, ok := vm.debug.Lookup(vm.pc); ok {
			f.Line = line
			f.Column = col
		}
	}
	return f
}

func (vm *VM) push(v Value) *Fault {
	if vm.sp >= vm.maxStack {
		return vm.fault(StackOverflow, "operand stack exceeded %d values", vm.maxStack)
	}
	if vm.sp == len(vm.stack) {
		vm.stack = append(vm.stack, v)
	} else {
		vm.stack[vm.sp] = v
	}
	vm.sp++
	return nil
}

func (vm *VM) pop() (Value, *Fault) {
	if vm.sp == 0 {
		return Value{}, vm.fault(StackUnderflow, "pop from empty stack")
	}
	vm.sp--
	vm.lastPopped = vm.stack[vm.sp]
	return vm.stack[vm.sp], nil
}

// pop2 pops the right then the left operand of a binary instruction.
func (vm *VM) pop2() (Value, Value, *Fault) {
	right, err := vm.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	left, err := vm.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	return left, right, nil
}

// Execute runs the program to completion or to the first fault.
func (vm *VM) Execute(p *Program) error {
	return vm.ExecuteWithDebug(p, nil)
}

// ExecuteWithDebug runs the program, attributing any fault to a source
// position through the given debug info. A nil DebugInfo is allowed.
func (vm *VM) ExecuteWithDebug(p *Program, debug *DebugInfo) error {
	vm.sp = 0
	vm.pc = 0
	vm.lastPopped = Value{}
	vm.locals = make([]Value, p.LocalSlots)
	vm.debug = debug
	vm.interrupted.Store(false)

	// The loader has already validated every opcode, constant index,
	// local slot, and jump target, so the hot loop indexes without
	// rechecking them.
	for vm.pc < len(p.Instructions) {
		if vm.interrupted.Load() {
			return vm.fault(Interrupted, "execution interrupted")
		}

		in := p.Instructions[vm.pc]

		switch in.Op {
		case OpNop:
			// nothing

		case OpHalt:
			return nil

		case OpPop:
			if _, err := vm.pop(); err != nil {
				return err
			}

		case OpConst:
			c := p.Constants[in.A]
			var v Value
			switch c.Tag {
			case TagInt:
				v = IntValue(c.Int)
			case TagFloat:
				v = FloatValue(c.Float)
			case TagString:
				v = StringValue(c.Str)
			}
			if err := vm.push(v); err != nil {
				return err
			}

		case OpTrue:
			if err := vm.push(BoolValue(true)); err != nil {
				return err
			}

		case OpFalse:
			if err := vm.push(BoolValue(false)); err != nil {
				return err
			}

		case OpLoadLocal:
			if err := vm.push(vm.locals[in.A]); err != nil {
				return err
			}

		case OpStoreLocal:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.locals[in.A] = v

		case OpAddInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(IntValue(l.Int + r.Int)); err != nil {
				return err
			}

		case OpSubInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(IntValue(l.Int - r.Int)); err != nil {
				return err
			}

		case OpMulInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(IntValue(l.Int * r.Int)); err != nil {
				return err
			}

		case OpDivInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if r.Int == 0 {
				return vm.fault(DivisionByZero, "integer division by zero")
			}
			if err := vm.push(IntValue(l.Int / r.Int)); err != nil {
				return err
			}

		case OpNegInt:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.push(IntValue(-v.Int)); err != nil {
				return err
			}

		case OpAddFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(FloatValue(l.Float + r.Float)); err != nil {
				return err
			}

		case OpSubFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(FloatValue(l.Float - r.Float)); err != nil {
				return err
			}

		case OpMulFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(FloatValue(l.Float * r.Float)); err != nil {
				return err
			}

		case OpDivFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if r.Float == 0 {
				return vm.fault(DivisionByZero, "float division by zero")
			}
			if err := vm.push(FloatValue(l.Float / r.Float)); err != nil {
				return err
			}

		case OpNegFloat:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.push(FloatValue(-v.Float)); err != nil {
				return err
			}

		case OpConcatStr:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(StringValue(l.Str + r.Str)); err != nil {
				return err
			}

		case OpEqInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Int == r.Int)); err != nil {
				return err
			}

		case OpNeInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Int != r.Int)); err != nil {
				return err
			}

		case OpLtInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Int < r.Int)); err != nil {
				return err
			}

		case OpLeInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Int <= r.Int)); err != nil {
				return err
			}

		case OpGtInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Int > r.Int)); err != nil {
				return err
			}

		case OpGeInt:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Int >= r.Int)); err != nil {
				return err
			}

		case OpEqFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Float == r.Float)); err != nil {
				return err
			}

		case OpNeFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Float != r.Float)); err != nil {
				return err
			}

		case OpLtFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Float < r.Float)); err != nil {
				return err
			}

		case OpLeFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Float <= r.Float)); err != nil {
				return err
			}

		case OpGtFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Float > r.Float)); err != nil {
				return err
			}

		case OpGeFloat:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Float >= r.Float)); err != nil {
				return err
			}

		case OpEqBool:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Bool == r.Bool)); err != nil {
				return err
			}

		case OpNeBool:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Bool != r.Bool)); err != nil {
				return err
			}

		case OpEqStr:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Str == r.Str)); err != nil {
				return err
			}

		case OpNeStr:
			l, r, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(l.Str != r.Str)); err != nil {
				return err
			}

		case OpNot:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.push(BoolValue(!v.Bool)); err != nil {
				return err
			}

		case OpJump:
			vm.pc = int(in.A)
			continue

		case OpJumpIfFalse:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if !v.Bool {
				vm.pc = int(in.A)
				continue
			}
		}

		vm.pc++
	}

	return nil
}
