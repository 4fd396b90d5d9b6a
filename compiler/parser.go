package compiler

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent with one-token lookahead
// ---------------------------------------------------------------------------

// Parser consumes the token stream and produces an AST. A lex or parse
// error halts parsing for the unit: without a reliable token stream there
// is no AST worth checking further.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token

	diags []Diagnostic
}

// NewParser creates a parser reading from the given lexer.
func NewParser(l *Lexer) *Parser {
	p := &Parser{lexer: l}
	p.advance()
	p.advance()
	return p
}

// Parse tokenizes and parses source text in one call.
func Parse(source string) (*Program, []Diagnostic) {
	return NewParser(NewLexer(source)).ParseProgram()
}

// ParseProgram parses statements until EOF. On failure it returns a nil
// program and the diagnostics collected so far.
func (p *Parser) ParseProgram() (*Program, []Diagnostic) {
	prog := &Program{}
	start := p.cur.Pos

	for p.cur.Type != TokenEOF {
		stmt := p.parseStatement()
		if stmt == nil {
			return nil, p.diags
		}
		prog.Statements = append(prog.Statements, stmt)
	}

	prog.SpanVal = MakeSpan(start, p.cur.Pos)
	return prog, p.diags
}

// advance moves the token window forward by one.
func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// expect consumes the current token if it has the wanted type, or records
// a parse error.
func (p *Parser) expect(t TokenType, context string) (Token, bool) {
	if p.cur.Type == t {
		tok := p.cur
		p.advance()
		return tok, true
	}
	p.errorf("expected %s in %s, found %s", t, context, p.describeCurrent())
	return Token{}, false
}

// describeCurrent names the current token for error messages, surfacing
// lexer errors as their own diagnostic kind.
func (p *Parser) describeCurrent() string {
	if p.cur.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", p.cur.Literal)
}

func (p *Parser) errorf(format string, args ...interface{}) {
	// A lexer error token carries its message in the literal; report it as
	// a LexError at its own position instead of a generic parse error.
	if p.cur.Type == TokenError {
		p.diags = append(p.diags, Diagnostic{
			Kind:    LexError,
			Message: p.cur.Literal,
			Pos:     p.cur.Pos,
		})
		return
	}
	p.diags = append(p.diags, Diagnostic{
		Kind:    ParseError,
		Message: fmt.Sprintf(format, args...),
		Pos:     p.cur.Pos,
	})
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() Stmt {
	switch p.cur.Type {
	case TokenLet:
		return p.parseLetStmt()
	case TokenLBrace:
		return p.parseBlock()
	case TokenIf:
		return p.parseIfStmt()
	case TokenError:
		p.errorf("") // surfaces the lexer error
		return nil
	default:
		return p.parseExprStmt()
	}
}

// parseLetStmt parses: 'let' IDENT ':' TYPE '=' expr ';'
func (p *Parser) parseLetStmt() Stmt {
	letTok := p.cur
	p.advance() // consume 'let'

	nameTok, ok := p.expect(TokenIdent, "variable declaration")
	if !ok {
		return nil
	}
	if _, ok := p.expect(TokenColon, "variable declaration"); !ok {
		return nil
	}

	annotTok := p.cur
	if annotTok.Type != TokenTypeName {
		p.errorf("expected type name in variable declaration, found %s", p.describeCurrent())
		return nil
	}
	annot, _ := TypeFromName(annotTok.Literal)
	p.advance()

	if _, ok := p.expect(TokenAssign, "variable declaration"); !ok {
		return nil
	}

	value := p.parseExpression()
	if value == nil {
		return nil
	}

	semiTok, ok := p.expect(TokenSemicolon, "variable declaration")
	if !ok {
		return nil
	}

	return &LetStmt{
		SpanVal:  MakeSpan(letTok.Pos, semiTok.End),
		Name:     nameTok.Literal,
		NamePos:  nameTok.Pos,
		Annot:    annot,
		AnnotPos: annotTok.Pos,
		Value:    value,
		Slot:     -1,
	}
}

// parseBlock parses: '{' statement* '}'
func (p *Parser) parseBlock() *BlockStmt {
	openTok := p.cur
	p.advance() // consume '{'

	block := &BlockStmt{}
	for p.cur.Type != TokenRBrace {
		if p.cur.Type == TokenEOF {
			p.errorf("expected } to close block, found end of input")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
	}

	closeTok := p.cur
	p.advance() // consume '}'

	block.SpanVal = MakeSpan(openTok.Pos, closeTok.End)
	return block
}

// parseIfStmt parses: 'if' '(' expr ')' block ('else' block)?
func (p *Parser) parseIfStmt() Stmt {
	ifTok := p.cur
	p.advance() // consume 'if'

	if _, ok := p.expect(TokenLParen, "if condition"); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(TokenRParen, "if condition"); !ok {
		return nil
	}

	if p.cur.Type != TokenLBrace {
		p.errorf("expected { after if condition, found %s", p.describeCurrent())
		return nil
	}
	then := p.parseBlock()
	if then == nil {
		return nil
	}

	stmt := &IfStmt{Cond: cond, Then: then}
	end := then.Span().End

	if p.cur.Type == TokenElse {
		p.advance() // consume 'else'
		if p.cur.Type != TokenLBrace {
			p.errorf("expected { after else, found %s", p.describeCurrent())
			return nil
		}
		els := p.parseBlock()
		if els == nil {
			return nil
		}
		stmt.Else = els
		end = els.Span().End
	}

	stmt.SpanVal = MakeSpan(ifTok.Pos, end)
	return stmt
}

// parseExprStmt parses: expr ';'
func (p *Parser) parseExprStmt() Stmt {
	start := p.cur.Pos
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}

	semiTok, ok := p.expect(TokenSemicolon, "statement")
	if !ok {
		return nil
	}

	return &ExprStmt{
		SpanVal: MakeSpan(start, semiTok.End),
		Expr:    expr,
	}
}

// ---------------------------------------------------------------------------
// Expressions (precedence climbing via grammar nesting; all binary
// operators are left-associative)
// ---------------------------------------------------------------------------

func (p *Parser) parseExpression() Expr {
	return p.parseAssignment()
}

// parseAssignment parses: IDENT '=' expr | equality
func (p *Parser) parseAssignment() Expr {
	if p.cur.Type == TokenIdent && p.peek.Type == TokenAssign {
		nameTok := p.cur
		p.advance() // consume IDENT
		p.advance() // consume '='

		value := p.parseAssignment()
		if value == nil {
			return nil
		}

		return &AssignExpr{
			SpanVal: MakeSpan(nameTok.Pos, value.Span().End),
			Name:    nameTok.Literal,
			NamePos: nameTok.Pos,
			Value:   value,
			Slot:    -1,
		}
	}
	return p.parseEquality()
}

func (p *Parser) parseEquality() Expr {
	left := p.parseComparison()
	if left == nil {
		return nil
	}

	for p.cur.Type.IsEquality() {
		op := p.cur
		p.advance()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{
			SpanVal: MakeSpan(left.Span().Start, right.Span().End),
			Op:      op,
			Left:    left,
			Right:   right,
		}
	}
	return left
}

func (p *Parser) parseComparison() Expr {
	left := p.parseTerm()
	if left == nil {
		return nil
	}

	for p.cur.Type.IsComparison() {
		op := p.cur
		p.advance()
		right := p.parseTerm()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{
			SpanVal: MakeSpan(left.Span().Start, right.Span().End),
			Op:      op,
			Left:    left,
			Right:   right,
		}
	}
	return left
}

func (p *Parser) parseTerm() Expr {
	left := p.parseFactor()
	if left == nil {
		return nil
	}

	for p.cur.Type == TokenPlus || p.cur.Type == TokenMinus {
		op := p.cur
		p.advance()
		right := p.parseFactor()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{
			SpanVal: MakeSpan(left.Span().Start, right.Span().End),
			Op:      op,
			Left:    left,
			Right:   right,
		}
	}
	return left
}

func (p *Parser) parseFactor() Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for p.cur.Type == TokenStar || p.cur.Type == TokenSlash {
		op := p.cur
		p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{
			SpanVal: MakeSpan(left.Span().Start, right.Span().End),
			Op:      op,
			Left:    left,
			Right:   right,
		}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.cur.Type == TokenMinus || p.cur.Type == TokenBang {
		op := p.cur
		p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &UnaryExpr{
			SpanVal: MakeSpan(op.Pos, operand.Span().End),
			Op:      op,
			Operand: operand,
		}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Expr {
	tok := p.cur

	switch tok.Type {
	case TokenInt:
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf("integer literal %q out of range", tok.Literal)
			return nil
		}
		p.advance()
		return &IntLiteral{SpanVal: MakeSpan(tok.Pos, tok.End), Value: value}

	case TokenFloat:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf("float literal %q out of range", tok.Literal)
			return nil
		}
		p.advance()
		return &FloatLiteral{SpanVal: MakeSpan(tok.Pos, tok.End), Value: value}

	case TokenString:
		p.advance()
		return &StringLiteral{SpanVal: MakeSpan(tok.Pos, tok.End), Value: tok.Literal}

	case TokenTrue:
		p.advance()
		return &BoolLiteral{SpanVal: MakeSpan(tok.Pos, tok.End), Value: true}

	case TokenFalse:
		p.advance()
		return &BoolLiteral{SpanVal: MakeSpan(tok.Pos, tok.End), Value: false}

	case TokenIdent:
		p.advance()
		return &Identifier{SpanVal: MakeSpan(tok.Pos, tok.End), Name: tok.Literal, Slot: -1}

	case TokenLParen:
		p.advance() // consume '('
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(TokenRParen, "parenthesized expression"); !ok {
			return nil
		}
		return expr

	default:
		p.errorf("expected expression, found %s", p.describeCurrent())
		return nil
	}
}
