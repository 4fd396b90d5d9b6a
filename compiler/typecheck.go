package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Type checker: scope tracking, type assignment, slot resolution
// ---------------------------------------------------------------------------

// symbol records one declared variable.
type symbol struct {
	name string
	typ  Type
	slot int
}

// scope is one lexical scope in the stack. Lookups search innermost-out.
type scope struct {
	symbols map[string]*symbol
}

// TypeChecker walks the AST, assigns a static type to every expression
// node in place, and resolves identifier references to storage slots.
// It collects every type error it finds in one pass rather than stopping
// at the first.
type TypeChecker struct {
	diags  []Diagnostic
	scopes []*scope

	// Slots are allocated program-wide and never reused, so a shadowing
	// declaration in an inner block gets its own slot. nextSlot is also
	// the total slot count after the walk.
	nextSlot int
}

// NewTypeChecker creates a checker with an empty top-level scope.
func NewTypeChecker() *TypeChecker {
	return &TypeChecker{scopes: []*scope{{symbols: make(map[string]*symbol)}}}
}

// Check type-checks a program. It returns the number of storage slots the
// program needs and all diagnostics found. The program is accepted only if
// the diagnostic list is empty.
func Check(prog *Program) (int, []Diagnostic) {
	tc := NewTypeChecker()
	for _, stmt := range prog.Statements {
		tc.checkStmt(stmt)
	}
	return tc.nextSlot, tc.diags
}

func (tc *TypeChecker) errorAt(kind DiagKind, pos Position, format string, args ...interface{}) {
	tc.diags = append(tc.diags, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
}

func (tc *TypeChecker) pushScope() {
	tc.scopes = append(tc.scopes, &scope{symbols: make(map[string]*symbol)})
}

func (tc *TypeChecker) popScope() {
	tc.scopes = tc.scopes[:len(tc.scopes)-1]
}

// declare binds a name in the current scope. Redeclaration in the same
// scope is an error; shadowing an outer scope is not.
func (tc *TypeChecker) declare(name string, typ Type, pos Position) int {
	current := tc.scopes[len(tc.scopes)-1]
	if _, exists := current.symbols[name]; exists {
		tc.errorAt(Redeclaration, pos, "variable %q is already declared in this scope", name)
		return current.symbols[name].slot
	}

	slot := tc.nextSlot
	tc.nextSlot++
	current.symbols[name] = &symbol{name: name, typ: typ, slot: slot}
	return slot
}

// resolve looks a name up from the innermost scope outward.
func (tc *TypeChecker) resolve(name string) *symbol {
	for i := len(tc.scopes) - 1; i >= 0; i-- {
		if sym, ok := tc.scopes[i].symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (tc *TypeChecker) checkStmt(stmt Stmt) {
	switch st := stmt.(type) {
	case *LetStmt:
		valueType := tc.checkExpr(st.Value)
		if valueType != TypeUnknown && valueType != st.Annot {
			tc.errorAt(TypeMismatch, st.Value.Span().Start,
				"cannot initialize %s variable %q with a value of type %s",
				st.Annot, st.Name, valueType)
		}
		st.Slot = tc.declare(st.Name, st.Annot, st.NamePos)

	case *ExprStmt:
		tc.checkExpr(st.Expr)

	case *BlockStmt:
		tc.pushScope()
		for _, inner := range st.Statements {
			tc.checkStmt(inner)
		}
		tc.popScope()

	case *IfStmt:
		condType := tc.checkExpr(st.Cond)
		if condType != TypeUnknown && condType != TypeBool {
			tc.errorAt(TypeMismatch, st.Cond.Span().Start,
				"if condition must be bool, found %s", condType)
		}
		tc.checkStmt(st.Then)
		if st.Else != nil {
			tc.checkStmt(st.Else)
		}
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (tc *TypeChecker) checkExpr(expr Expr) Type {
	switch e := expr.(type) {
	case *IntLiteral:
		e.Typ = TypeInt

	case *FloatLiteral:
		e.Typ = TypeFloat

	case *StringLiteral:
		e.Typ = TypeString

	case *BoolLiteral:
		e.Typ = TypeBool

	case *Identifier:
		sym := tc.resolve(e.Name)
		if sym == nil {
			tc.errorAt(NameError, e.SpanVal.Start, "undeclared variable %q", e.Name)
			e.Typ = TypeUnknown
			break
		}
		e.Slot = sym.slot
		e.Typ = sym.typ

	case *AssignExpr:
		valueType := tc.checkExpr(e.Value)
		sym := tc.resolve(e.Name)
		if sym == nil {
			tc.errorAt(NameError, e.NamePos, "cannot assign to undeclared variable %q", e.Name)
			e.Typ = TypeUnknown
			break
		}
		e.Slot = sym.slot
		if valueType != TypeUnknown && valueType != sym.typ {
			tc.errorAt(TypeMismatch, e.Value.Span().Start,
				"cannot assign %s value to %s variable %q", valueType, sym.typ, e.Name)
		}
		e.Typ = TypeUnit

	case *UnaryExpr:
		e.Typ = tc.checkUnary(e)

	case *BinaryExpr:
		e.Typ = tc.checkBinary(e)
	}

	return expr.Type()
}

func (tc *TypeChecker) checkUnary(e *UnaryExpr) Type {
	operandType := tc.checkExpr(e.Operand)
	if operandType == TypeUnknown {
		return TypeUnknown
	}

	switch e.Op.Type {
	case TokenMinus:
		if !operandType.IsNumeric() {
			tc.errorAt(TypeMismatch, e.SpanVal.Start,
				"operator - requires a numeric operand, found %s", operandType)
			return TypeUnknown
		}
		return operandType

	case TokenBang:
		if operandType != TypeBool {
			tc.errorAt(TypeMismatch, e.SpanVal.Start,
				"operator ! requires a bool operand, found %s", operandType)
			return TypeUnknown
		}
		return TypeBool
	}

	return TypeUnknown
}

func (tc *TypeChecker) checkBinary(e *BinaryExpr) Type {
	leftType := tc.checkExpr(e.Left)
	rightType := tc.checkExpr(e.Right)
	if leftType == TypeUnknown || rightType == TypeUnknown {
		return TypeUnknown
	}

	op := e.Op.Type

	// No implicit widening: mixed int/float operands are always an error.
	if leftType != rightType {
		tc.errorAt(TypeMismatch, e.Op.Pos,
			"operator %s requires matching operand types, found %s and %s",
			e.Op.Literal, leftType, rightType)
		return TypeUnknown
	}

	switch {
	case op == TokenPlus:
		// + is arithmetic on numbers and concatenation on strings.
		if leftType.IsNumeric() || leftType == TypeString {
			return leftType
		}
		tc.errorAt(TypeMismatch, e.Op.Pos,
			"operator + is not defined for %s operands", leftType)
		return TypeUnknown

	case op == TokenMinus || op == TokenStar || op == TokenSlash:
		if !leftType.IsNumeric() {
			tc.errorAt(TypeMismatch, e.Op.Pos,
				"operator %s requires numeric operands, found %s", e.Op.Literal, leftType)
			return TypeUnknown
		}
		return leftType

	case op.IsComparison():
		if !leftType.IsNumeric() {
			tc.errorAt(TypeMismatch, e.Op.Pos,
				"operator %s requires numeric operands, found %s", e.Op.Literal, leftType)
			return TypeUnknown
		}
		return TypeBool

	case op.IsEquality():
		// Defined for any pair of equal value types. Unit operands
		// (assignments) have no runtime value to compare.
		if !leftType.IsValue() {
			tc.errorAt(TypeMismatch, e.Op.Pos,
				"operator %s is not defined for %s operands", e.Op.Literal, leftType)
			return TypeUnknown
		}
		return TypeBool
	}

	return TypeUnknown
}
