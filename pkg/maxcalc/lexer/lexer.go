package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT      // sin, x, km
	NUMBER     // 12, 3.5, .5, 1e-3
	IMAGINARY  // 4i, 2.5j
	CONVERSION // [km->mi]

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	CARET    // ^
	ARROW    // ->

	// Assignment
	ASSIGN          // =
	PLUS_ASSIGN     // +=
	MINUS_ASSIGN    // -=
	ASTERISK_ASSIGN // *=
	SLASH_ASSIGN    // /=
	CARET_ASSIGN    // ^=

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )

	// Keywords
	TO // "to"
)

var tokenNames = map[TokenType]string{
	ILLEGAL:         "ILLEGAL",
	EOF:             "EOF",
	IDENT:           "IDENT",
	NUMBER:          "NUMBER",
	IMAGINARY:       "IMAGINARY",
	CONVERSION:      "CONVERSION",
	PLUS:            "+",
	MINUS:           "-",
	ASTERISK:        "*",
	SLASH:           "/",
	CARET:           "^",
	ARROW:           "->",
	ASSIGN:          "=",
	PLUS_ASSIGN:     "+=",
	MINUS_ASSIGN:    "-=",
	ASTERISK_ASSIGN: "*=",
	SLASH_ASSIGN:    "/=",
	CARET_ASSIGN:    "^=",
	COMMA:           ",",
	SEMICOLON:       ";",
	LPAREN:          "(",
	RPAREN:          ")",
	TO:              "TO",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsAssignment reports whether tt is one of the assignment operators.
func (tt TokenType) IsAssignment() bool {
	return tt >= ASSIGN && tt <= CARET_ASSIGN
}

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int

	// From and To hold the unit names of a CONVERSION token. From may be
	// empty ("[->mi]").
	From string
	To   string

	// Err is set on ILLEGAL tokens.
	Err *merrors.EngineError
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"to": TO,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
// Keywords are matched without regard to case.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENT
}

// Lexer turns an expression into tokens.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	chSize       int
	line         int
	column       int
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// LexerState holds the state of a lexer for save/restore
type LexerState struct {
	position     int
	readPosition int
	ch           rune
	chSize       int
	line         int
	column       int
}

// SaveState saves the current lexer state for potential restoration
func (l *Lexer) SaveState() LexerState {
	return LexerState{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		chSize:       l.chSize,
		line:         l.line,
		column:       l.column,
	}
}

// RestoreState restores the lexer to a previously saved state
func (l *Lexer) RestoreState(state LexerState) {
	l.position = state.position
	l.readPosition = state.readPosition
	l.ch = state.ch
	l.chSize = state.chSize
	l.line = state.line
	l.column = state.column
}

// PeekToken returns the next token without consuming it.
func (l *Lexer) PeekToken() Token {
	state := l.SaveState()
	tok := l.NextToken()
	l.RestoreState(state)
	return tok
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	r, size := rune(l.input[l.readPosition]), 1
	if r >= utf8.RuneSelf {
		r, size = utf8.DecodeRuneInString(l.input[l.readPosition:])
	}

	l.ch = r
	l.chSize = size
	l.position = l.readPosition
	l.readPosition += size

	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) atEnd() bool {
	return l.chSize == 0
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	line, column := l.line, l.column
	tok := Token{Line: line, Column: column}

	if l.atEnd() {
		tok.Type = EOF
		return tok
	}

	switch l.ch {
	case '+', '-', '*', '/', '^':
		return l.readOperator(line, column)
	case ',':
		tok.Type, tok.Literal = COMMA, ","
	case ';':
		tok.Type, tok.Literal = SEMICOLON, ";"
	case '(':
		tok.Type, tok.Literal = LPAREN, "("
	case ')':
		tok.Type, tok.Literal = RPAREN, ")"
	case '=':
		tok.Type, tok.Literal = ASSIGN, "="
	case '[':
		return l.readConversion(line, column)
	default:
		if isDigit(l.ch) || l.ch == '.' {
			return l.readNumber(line, column)
		}
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return Token{Type: LookupIdent(ident), Literal: ident, Line: line, Column: column}
		}
		ch := string(l.ch)
		l.readChar()
		return l.illegal(merrors.New(merrors.UnknownToken, ch), ch, line, column)
	}

	l.readChar()
	return tok
}

// Tokenize scans the whole input. It stops at the first ILLEGAL token and
// returns its error.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			return tokens, tok.Err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) illegal(err *merrors.EngineError, literal string, line, column int) Token {
	return Token{
		Type:    ILLEGAL,
		Literal: literal,
		Line:    line,
		Column:  column,
		Err:     err.WithPosition(line, column),
	}
}

var compoundOperators = map[rune]TokenType{
	'+': PLUS_ASSIGN,
	'-': MINUS_ASSIGN,
	'*': ASTERISK_ASSIGN,
	'/': SLASH_ASSIGN,
	'^': CARET_ASSIGN,
}

var simpleOperators = map[rune]TokenType{
	'+': PLUS,
	'-': MINUS,
	'*': ASTERISK,
	'/': SLASH,
	'^': CARET,
}

// readOperator reads an arithmetic operator, its compound assignment form,
// or the conversion arrow.
func (l *Lexer) readOperator(line, column int) Token {
	ch := l.ch
	l.readChar()

	if ch == '-' && l.ch == '>' {
		l.readChar()
		return Token{Type: ARROW, Literal: "->", Line: line, Column: column}
	}
	if l.ch == '=' {
		l.readChar()
		return Token{Type: compoundOperators[ch], Literal: string(ch) + "=", Line: line, Column: column}
	}
	return Token{Type: simpleOperators[ch], Literal: string(ch), Line: line, Column: column}
}

// readNumber reads a number with optional fraction, exponent and
// imaginary suffix.
func (l *Lexer) readNumber(line, column int) Token {
	start := l.position
	invalid := func() Token {
		// Swallow the rest of a malformed literal so the error names all of it.
		for isDigit(l.ch) || l.ch == '.' || isLetter(l.ch) {
			l.readChar()
		}
		text := l.input[start:l.position]
		return l.illegal(merrors.New(merrors.InvalidNumber, text), text, line, column)
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' {
		l.readChar()
		if !isDigit(l.ch) {
			return invalid()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '.' {
			return invalid()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			if !isDigit(l.ch) {
				return invalid()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		} else if !isLetter(next) {
			// "1e" at the end of a number; "2em" is left for the parser
			// as a number followed by a unit.
			l.readChar()
			return invalid()
		}
	}

	literal := l.input[start:l.position]

	if l.ch == 'i' || l.ch == 'j' {
		next := l.peekChar()
		switch {
		case next == 'i' || next == 'j':
			l.readChar()
			for isLetter(l.ch) || isDigit(l.ch) {
				l.readChar()
			}
			return l.illegal(merrors.New(merrors.InvalidNumber), l.input[start:l.position], line, column)
		case !isLetter(next) && !isDigit(next):
			l.readChar()
			return Token{Type: IMAGINARY, Literal: l.input[start:l.position], Line: line, Column: column}
		}
	}

	return Token{Type: NUMBER, Literal: literal, Line: line, Column: column}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readConversion reads a bracketed conversion such as [km->mi] or
// [km/h -> m/s]. A missing target unit is reported as
// InvalidUnitConversionSyntax.
func (l *Lexer) readConversion(line, column int) Token {
	start := l.position
	l.readChar() // consume '['

	for !l.atEnd() && l.ch != ']' {
		l.readChar()
	}
	if l.atEnd() {
		text := l.input[start:l.position]
		return l.illegal(merrors.New(merrors.InvalidUnitConversionSyntax), text, line, column)
	}

	body := l.input[start+1 : l.position]
	l.readChar() // consume ']'
	literal := l.input[start:l.position]

	from, to, ok := strings.Cut(body, "->")
	from = strings.Join(strings.Fields(from), "")
	to = strings.Join(strings.Fields(to), "")
	if !ok || to == "" || !validUnitName(to) || (from != "" && !validUnitName(from)) {
		return l.illegal(merrors.New(merrors.InvalidUnitConversionSyntax), literal, line, column)
	}

	return Token{Type: CONVERSION, Literal: literal, Line: line, Column: column, From: from, To: to}
}

// validUnitName accepts identifiers joined by single slashes ("km/h").
func validUnitName(s string) bool {
	for _, part := range strings.Split(s, "/") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if !isLetter(r) && (i == 0 || !isDigit(r)) {
				return false
			}
		}
	}
	return true
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// isLetter reports whether r can start an identifier. Unicode letters
// are accepted so that names like µm work.
func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
