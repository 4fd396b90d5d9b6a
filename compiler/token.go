package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the Hydor lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInt    // 42
	TokenFloat  // 3.14, 1.5e10
	TokenString // "hello"

	TokenIdent // foo, counter

	// Operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenAssign    // =
	TokenEq        // ==
	TokenNotEq     // !=
	TokenLess      // <
	TokenLessEq    // <=
	TokenGreater   // >
	TokenGreaterEq // >=
	TokenBang      // !

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenSemicolon // ;
	TokenComma     // ,
	TokenColon     // :

	// Keywords
	TokenLet
	TokenIf
	TokenElse
	TokenTrue
	TokenFalse
	TokenTypeName // int, float, bool, string
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenError:     "ERROR",
	TokenInt:       "INT",
	TokenFloat:     "FLOAT",
	TokenString:    "STRING",
	TokenIdent:     "IDENT",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenAssign:    "=",
	TokenEq:        "==",
	TokenNotEq:     "!=",
	TokenLess:      "<",
	TokenLessEq:    "<=",
	TokenGreater:   ">",
	TokenGreaterEq: ">=",
	TokenBang:      "!",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenSemicolon: ";",
	TokenComma:     ",",
	TokenColon:     ":",
	TokenLet:       "let",
	TokenIf:        "if",
	TokenElse:      "else",
	TokenTrue:      "true",
	TokenFalse:     "false",
	TokenTypeName:  "TYPE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the token's value; for strings, after escape decoding
	Pos     Position // start position
	End     Position // position just past the raw lexeme
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types. The type names are reserved
// keywords so they can never be shadowed by variable declarations.
var reservedWords = map[string]TokenType{
	"let":    TokenLet,
	"if":     TokenIf,
	"else":   TokenElse,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"int":    TokenTypeName,
	"float":  TokenTypeName,
	"bool":   TokenTypeName,
	"string": TokenTypeName,
}

// IsComparison returns true for the four ordering operators.
func (t TokenType) IsComparison() bool {
	switch t {
	case TokenLess, TokenLessEq, TokenGreater, TokenGreaterEq:
		return true
	}
	return false
}

// IsEquality returns true for == and !=.
func (t TokenType) IsEquality() bool {
	return t == TokenEq || t == TokenNotEq
}
