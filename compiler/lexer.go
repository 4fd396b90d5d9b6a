package compiler

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for Hydor source text
// ---------------------------------------------------------------------------

// Lexer tokenizes Hydor source code in a single forward pass.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar advances to the next character. line and col always describe
// the position of ch.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}

	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
	}
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// token builds a token spanning from pos to the lexer's current position.
// Callers invoke it after consuming the lexeme, so End covers the raw
// source extent even when Literal is a decoded value.
func (l *Lexer) token(typ TokenType, literal string, pos Position) Token {
	return Token{Type: typ, Literal: literal, Pos: pos, End: l.position()}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()

	switch {
	case l.ch == 0:
		return l.token(TokenEOF, "", pos)

	case l.ch == '(':
		l.readChar()
		return l.token(TokenLParen, "(", pos)

	case l.ch == ')':
		l.readChar()
		return l.token(TokenRParen, ")", pos)

	case l.ch == '{':
		l.readChar()
		return l.token(TokenLBrace, "{", pos)

	case l.ch == '}':
		l.readChar()
		return l.token(TokenRBrace, "}", pos)

	case l.ch == ';':
		l.readChar()
		return l.token(TokenSemicolon, ";", pos)

	case l.ch == ',':
		l.readChar()
		return l.token(TokenComma, ",", pos)

	case l.ch == ':':
		l.readChar()
		return l.token(TokenColon, ":", pos)

	case l.ch == '+':
		l.readChar()
		return l.token(TokenPlus, "+", pos)

	case l.ch == '-':
		l.readChar()
		return l.token(TokenMinus, "-", pos)

	case l.ch == '*':
		l.readChar()
		return l.token(TokenStar, "*", pos)

	case l.ch == '/':
		l.readChar()
		return l.token(TokenSlash, "/", pos)

	case l.ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.token(TokenEq, "==", pos)
		}
		return l.token(TokenAssign, "=", pos)

	case l.ch == '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.token(TokenNotEq, "!=", pos)
		}
		return l.token(TokenBang, "!", pos)

	case l.ch == '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.token(TokenLessEq, "<=", pos)
		}
		return l.token(TokenLess, "<", pos)

	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.token(TokenGreaterEq, ">=", pos)
		}
		return l.token(TokenGreater, ">", pos)

	case l.ch == '"':
		return l.readString(pos)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifierOrKeyword(pos)

	default:
		ch := l.ch
		l.readChar()
		return l.token(TokenError, fmt.Sprintf("unexpected character %q", ch), pos)
	}
}

// skipWhitespaceAndComments skips whitespace, // line comments, and
// /* */ block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // consume /
			l.readChar() // consume *
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

// readString reads a double-quoted string literal with escape sequences.
// The token's Literal holds the decoded value; its span still covers the
// raw source text including quotes and escapes.
func (l *Lexer) readString(pos Position) Token {
	l.readChar() // consume opening "

	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return l.token(TokenError, "unterminated string literal", pos)
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				return l.token(TokenError, fmt.Sprintf("invalid escape sequence \\%c", l.ch), pos)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}

	l.readChar() // consume closing "
	return l.token(TokenString, sb.String(), pos)
}

// readNumber reads an integer or float literal.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	// Fractional part: the dot must be followed by a digit.
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume .
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent part.
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return l.token(TokenError, fmt.Sprintf("malformed number literal %q", l.input[start:l.pos]), pos)
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// A digit run flush against an identifier character is malformed
	// (e.g. 12abc), not two tokens.
	if isLetter(l.ch) || l.ch == '_' {
		for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.token(TokenError, fmt.Sprintf("malformed number literal %q", l.input[start:l.pos]), pos)
	}

	if isFloat {
		return l.token(TokenFloat, l.input[start:l.pos], pos)
	}
	return l.token(TokenInt, l.input[start:l.pos], pos)
}

// readIdentifierOrKeyword reads an identifier or reserved word.
func (l *Lexer) readIdentifierOrKeyword(pos Position) Token {
	start := l.pos

	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	literal := l.input[start:l.pos]
	if tokType, ok := reservedWords[literal]; ok {
		return l.token(tokType, literal, pos)
	}
	return l.token(TokenIdent, literal, pos)
}

// Helper functions

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize returns all tokens from the input, stopping after EOF or the
// first error token.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}
