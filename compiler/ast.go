package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for Hydor
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes. After a successful type-check
// pass every expression carries exactly one resolved type; TypeUnknown never
// survives into emission.
type Expr interface {
	Node
	expr() // marker method
	Type() Type
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	SpanVal Span
	Value   int64
	Typ     Type
}

func (n *IntLiteral) Span() Span { return n.SpanVal }
func (n *IntLiteral) node()      {}
func (n *IntLiteral) expr()      {}
func (n *IntLiteral) Type() Type { return n.Typ }

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	SpanVal Span
	Value   float64
	Typ     Type
}

func (n *FloatLiteral) Span() Span { return n.SpanVal }
func (n *FloatLiteral) node()      {}
func (n *FloatLiteral) expr()      {}
func (n *FloatLiteral) Type() Type { return n.Typ }

// StringLiteral represents a string literal.
type StringLiteral struct {
	SpanVal Span
	Value   string
	Typ     Type
}

func (n *StringLiteral) Span() Span { return n.SpanVal }
func (n *StringLiteral) node()      {}
func (n *StringLiteral) expr()      {}
func (n *StringLiteral) Type() Type { return n.Typ }

// BoolLiteral represents the 'true' and 'false' literals.
type BoolLiteral struct {
	SpanVal Span
	Value   bool
	Typ     Type
}

func (n *BoolLiteral) Span() Span { return n.SpanVal }
func (n *BoolLiteral) node()      {}
func (n *BoolLiteral) expr()      {}
func (n *BoolLiteral) Type() Type { return n.Typ }

// Identifier represents a variable reference. Slot is resolved by the type
// checker to the storage slot of the referenced declaration (-1 until then).
type Identifier struct {
	SpanVal Span
	Name    string
	Slot    int
	Typ     Type
}

func (n *Identifier) Span() Span { return n.SpanVal }
func (n *Identifier) node()      {}
func (n *Identifier) expr()      {}
func (n *Identifier) Type() Type { return n.Typ }

// BinaryExpr represents a binary operation (left op right).
type BinaryExpr struct {
	SpanVal Span
	Op      Token
	Left    Expr
	Right   Expr
	Typ     Type
}

func (n *BinaryExpr) Span() Span { return n.SpanVal }
func (n *BinaryExpr) node()      {}
func (n *BinaryExpr) expr()      {}
func (n *BinaryExpr) Type() Type { return n.Typ }

// UnaryExpr represents a prefix operation (-x or !x).
type UnaryExpr struct {
	SpanVal Span
	Op      Token
	Operand Expr
	Typ     Type
}

func (n *UnaryExpr) Span() Span { return n.SpanVal }
func (n *UnaryExpr) node()      {}
func (n *UnaryExpr) expr()      {}
func (n *UnaryExpr) Type() Type { return n.Typ }

// AssignExpr represents assignment to an already-declared variable
// (x = expr). Its type is Unit: assignment leaves no value behind.
type AssignExpr struct {
	SpanVal Span
	Name    string
	NamePos Position
	Value   Expr
	Slot    int
	Typ     Type
}

func (n *AssignExpr) Span() Span { return n.SpanVal }
func (n *AssignExpr) node()      {}
func (n *AssignExpr) expr()      {}
func (n *AssignExpr) Type() Type { return n.Typ }

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// LetStmt represents a variable declaration with an explicit type
// annotation: let x: int = expr;
type LetStmt struct {
	SpanVal  Span
	Name     string
	NamePos  Position
	Annot    Type
	AnnotPos Position
	Value    Expr
	Slot     int // storage slot, resolved by the type checker
}

func (n *LetStmt) Span() Span { return n.SpanVal }
func (n *LetStmt) node()      {}
func (n *LetStmt) stmt()      {}

// ExprStmt is an expression used as a statement (expr;).
type ExprStmt struct {
	SpanVal Span
	Expr    Expr
}

func (n *ExprStmt) Span() Span { return n.SpanVal }
func (n *ExprStmt) node()      {}
func (n *ExprStmt) stmt()      {}

// BlockStmt is a braced statement list. Each block opens a fresh scope.
type BlockStmt struct {
	SpanVal    Span
	Statements []Stmt
}

func (n *BlockStmt) Span() Span { return n.SpanVal }
func (n *BlockStmt) node()      {}
func (n *BlockStmt) stmt()      {}

// IfStmt represents basic conditional control flow. Else may be nil.
type IfStmt struct {
	SpanVal Span
	Cond    Expr
	Then    *BlockStmt
	Else    *BlockStmt
}

func (n *IfStmt) Span() Span { return n.SpanVal }
func (n *IfStmt) node()      {}
func (n *IfStmt) stmt()      {}

// ---------------------------------------------------------------------------
// Top-level structure
// ---------------------------------------------------------------------------

// Program represents a complete compilation unit.
type Program struct {
	SpanVal    Span
	Statements []Stmt
}

func (n *Program) Span() Span { return n.SpanVal }
func (n *Program) node()      {}

// MakeSpan creates a span from start and end positions.
func MakeSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}
