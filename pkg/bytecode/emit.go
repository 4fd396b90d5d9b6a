package bytecode

import (
	"fmt"

	"github.com/hydor-lang/hydor/compiler"
)

// Emitter lowers a type-checked AST to bytecode. Emission is a plain
// post-order walk: every expression type is already resolved and every
// identifier already carries its storage slot, so the emitter only picks
// the type-specialized opcode and never looks anything up by name.
type Emitter struct {
	prog  *Program
	debug *DebugInfo
}

// Emit lowers a checked program. slotCount is the storage slot total
// reported by the type checker; programs needing more slots than the
// format's u16 field can hold are rejected. Beyond that, emission cannot
// fail on checked input; an internal inconsistency (an Unknown type
// reaching emission) panics, since it means the checker accepted a
// broken program.
func Emit(prog *compiler.Program, slotCount int) (*Program, *DebugInfo, error) {
	if slotCount > MaxLocalSlots {
		return nil, nil, fmt.Errorf("program declares %d variables, the bytecode format allows %d", slotCount, MaxLocalSlots)
	}

	e := &Emitter{prog: NewProgram(), debug: NewDebugInfo()}
	e.prog.LocalSlots = uint16(slotCount)

	for _, stmt := range prog.Statements {
		e.emitStmt(stmt)
	}
	e.prog.Emit(OpHalt, 0)

	return e.prog, e.debug, nil
}

// emit appends an instruction attributed to a source position.
func (e *Emitter) emit(op Opcode, a uint32, pos compiler.Position) int {
	idx := e.prog.Emit(op, a)
	e.debug.Record(idx, pos.Line, pos.Column)
	return idx
}

func (e *Emitter) emitStmt(stmt compiler.Stmt) {
	switch st := stmt.(type) {
	case *compiler.LetStmt:
		e.emitExpr(st.Value)
		e.emit(OpStoreLocal, uint32(st.Slot), st.NamePos)

	case *compiler.ExprStmt:
		e.emitExpr(st.Expr)
		// Unit-typed expressions leave nothing on the stack.
		if st.Expr.Type() != compiler.TypeUnit {
			e.emit(OpPop, 0, st.Span().Start)
		}

	case *compiler.BlockStmt:
		for _, inner := range st.Statements {
			e.emitStmt(inner)
		}

	case *compiler.IfStmt:
		e.emitExpr(st.Cond)
		jumpOverThen := e.emit(OpJumpIfFalse, 0, st.Cond.Span().Start)
		e.emitStmt(st.Then)

		if st.Else != nil {
			jumpOverElse := e.emit(OpJump, 0, st.Span().Start)
			e.prog.PatchJump(jumpOverThen, e.prog.CurrentIndex())
			e.emitStmt(st.Else)
			e.prog.PatchJump(jumpOverElse, e.prog.CurrentIndex())
		} else {
			e.prog.PatchJump(jumpOverThen, e.prog.CurrentIndex())
		}

	default:
		panic(fmt.Sprintf("emitter: unhandled statement %T", stmt))
	}
}

func (e *Emitter) emitExpr(expr compiler.Expr) {
	switch ex := expr.(type) {
	case *compiler.IntLiteral:
		idx := e.prog.AddConstant(IntConstant(ex.Value))
		e.emit(OpConst, idx, ex.SpanVal.Start)

	case *compiler.FloatLiteral:
		idx := e.prog.AddConstant(FloatConstant(ex.Value))
		e.emit(OpConst, idx, ex.SpanVal.Start)

	case *compiler.StringLiteral:
		idx := e.prog.AddConstant(StringConstant(ex.Value))
		e.emit(OpConst, idx, ex.SpanVal.Start)

	case *compiler.BoolLiteral:
		// Bools are never pooled; they have dedicated push opcodes.
		if ex.Value {
			e.emit(OpTrue, 0, ex.SpanVal.Start)
		} else {
			e.emit(OpFalse, 0, ex.SpanVal.Start)
		}

	case *compiler.Identifier:
		e.emit(OpLoadLocal, uint32(ex.Slot), ex.SpanVal.Start)

	case *compiler.AssignExpr:
		e.emitExpr(ex.Value)
		e.emit(OpStoreLocal, uint32(ex.Slot), ex.NamePos)

	case *compiler.UnaryExpr:
		e.emitExpr(ex.Operand)
		e.emit(e.unaryOpcode(ex), 0, ex.Op.Pos)

	case *compiler.BinaryExpr:
		e.emitExpr(ex.Left)
		e.emitExpr(ex.Right)
		e.emit(e.binaryOpcode(ex), 0, ex.Op.Pos)

	default:
		panic(fmt.Sprintf("emitter: unhandled expression %T", expr))
	}
}

func (e *Emitter) unaryOpcode(ex *compiler.UnaryExpr) Opcode {
	switch ex.Op.Type {
	case compiler.TokenMinus:
		if ex.Operand.Type() == compiler.TypeFloat {
			return OpNegFloat
		}
		return OpNegInt
	case compiler.TokenBang:
		return OpNot
	}
	panic(fmt.Sprintf("emitter: unhandled unary operator %s", ex.Op.Literal))
}

// binaryOpcode selects the type-specialized instruction for a binary
// expression. Operand types already match; the left type decides.
func (e *Emitter) binaryOpcode(ex *compiler.BinaryExpr) Opcode {
	operandType := ex.Left.Type()

	type key struct {
		op  compiler.TokenType
		typ compiler.Type
	}
	table := map[key]Opcode{
		{compiler.TokenPlus, compiler.TypeInt}:        OpAddInt,
		{compiler.TokenMinus, compiler.TypeInt}:       OpSubInt,
		{compiler.TokenStar, compiler.TypeInt}:        OpMulInt,
		{compiler.TokenSlash, compiler.TypeInt}:       OpDivInt,
		{compiler.TokenPlus, compiler.TypeFloat}:      OpAddFloat,
		{compiler.TokenMinus, compiler.TypeFloat}:     OpSubFloat,
		{compiler.TokenStar, compiler.TypeFloat}:      OpMulFloat,
		{compiler.TokenSlash, compiler.TypeFloat}:     OpDivFloat,
		{compiler.TokenPlus, compiler.TypeString}:     OpConcatStr,
		{compiler.TokenEq, compiler.TypeInt}:          OpEqInt,
		{compiler.TokenNotEq, compiler.TypeInt}:       OpNeInt,
		{compiler.TokenLess, compiler.TypeInt}:        OpLtInt,
		{compiler.TokenLessEq, compiler.TypeInt}:      OpLeInt,
		{compiler.TokenGreater, compiler.TypeInt}:     OpGtInt,
		{compiler.TokenGreaterEq, compiler.TypeInt}:   OpGeInt,
		{compiler.TokenEq, compiler.TypeFloat}:        OpEqFloat,
		{compiler.TokenNotEq, compiler.TypeFloat}:     OpNeFloat,
		{compiler.TokenLess, compiler.TypeFloat}:      OpLtFloat,
		{compiler.TokenLessEq, compiler.TypeFloat}:    OpLeFloat,
		{compiler.TokenGreater, compiler.TypeFloat}:   OpGtFloat,
		{compiler.TokenGreaterEq, compiler.TypeFloat}: OpGeFloat,
		{compiler.TokenEq, compiler.TypeBool}:         OpEqBool,
		{compiler.TokenNotEq, compiler.TypeBool}:      OpNeBool,
		{compiler.TokenEq, compiler.TypeString}:       OpEqStr,
		{compiler.TokenNotEq, compiler.TypeString}:    OpNeStr,
	}

	if op, ok := table[key{ex.Op.Type, operandType}]; ok {
		return op
	}
	panic(fmt.Sprintf("emitter: unhandled binary operator %s on %s", ex.Op.Literal, operandType))
}
