package parser

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Mishamax/maxcalc/pkg/maxcalc/ast"
	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/lexer"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGN  // = += -= *= /= ^=
	SUM     // +
	PRODUCT // *
	POWER   // ^
	CONVERT // 5 km to mi, -> mi, [km->mi]
	PREFIX  // -X
	CALL    // sin(X)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:          ASSIGN,
	lexer.PLUS_ASSIGN:     ASSIGN,
	lexer.MINUS_ASSIGN:    ASSIGN,
	lexer.ASTERISK_ASSIGN: ASSIGN,
	lexer.SLASH_ASSIGN:    ASSIGN,
	lexer.CARET_ASSIGN:    ASSIGN,
	lexer.PLUS:            SUM,
	lexer.MINUS:           SUM,
	lexer.ASTERISK:        PRODUCT,
	lexer.SLASH:           PRODUCT,
	lexer.CARET:           POWER,
	lexer.TO:              CONVERT,
	lexer.ARROW:           CONVERT,
	lexer.CONVERSION:      CONVERT,
	lexer.LPAREN:          CALL,
}

// reservedNames cannot be assigned to.
var reservedNames = map[string]bool{
	"e": true, "pi": true, "i": true, "j": true,
	"res": true, "result": true, "ans": true,
	"to": true, "exit": true, "quit": true, "help": true,
}

// IsReservedName reports whether name is a constant, a previous-result
// alias or a host command word.
func IsReservedName(name string) bool {
	return reservedNames[strings.ToLower(name)]
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	lexError   *merrors.EngineError // first ILLEGAL token seen
	parseError *merrors.EngineError // first structural error

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.IMAGINARY, p.parseNumberLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.CARET, p.parseInfixExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.IDENT, p.parseConversion)
	p.registerInfix(lexer.TO, p.parseConversion)
	p.registerInfix(lexer.ARROW, p.parseConversion)
	p.registerInfix(lexer.CONVERSION, p.parseConversion)
	for _, tt := range []lexer.TokenType{
		lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN,
		lexer.ASTERISK_ASSIGN, lexer.SLASH_ASSIGN, lexer.CARET_ASSIGN,
	} {
		p.registerInfix(tt, p.parseAssignment)
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse tokenizes and parses a single expression.
func Parse(input string) (ast.Expression, error) {
	p := New(lexer.New(input))
	expr := p.ParseExpression()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return expr, nil
}

// Err returns the error that stopped parsing, or nil. Lexical errors
// anywhere in the input take priority over structural ones.
func (p *Parser) Err() error {
	if p.lexError != nil {
		return p.lexError
	}
	if p.parseError != nil {
		return p.parseError
	}
	return nil
}

// addError records a structural error at tok.
// Only the first error is recorded - subsequent errors are usually cascading noise.
func (p *Parser) addError(kind merrors.Kind, tok lexer.Token, args ...string) {
	if p.parseError != nil {
		return
	}
	p.parseError = merrors.NewWithPosition(kind, tok.Line, tok.Column, args...)
}

func (p *Parser) failed() bool {
	return p.lexError != nil || p.parseError != nil
}

// registerPrefix registers a prefix parse function
func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers an infix parse function
func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances curToken and peekToken
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.peekToken.Type == lexer.ILLEGAL && p.lexError == nil {
		p.lexError = p.peekToken.Err
	}
}

// ParseExpression parses the whole input as one expression. On failure it
// returns nil and Err reports why.
func (p *Parser) ParseExpression() ast.Expression {
	if p.curTokenIs(lexer.EOF) {
		p.addError(merrors.ErrorInExpression, p.curToken)
		return nil
	}

	expr := p.parseExpression(LOWEST)

	if !p.failed() && !p.peekTokenIs(lexer.EOF) {
		if p.peekTokenIs(lexer.RPAREN) {
			p.addError(merrors.TooManyClosingBrackets, p.peekToken)
		} else {
			p.addError(merrors.ErrorInExpression, p.peekToken)
		}
	}

	// Surface lexical errors past the point where parsing stopped.
	for p.lexError == nil && !p.peekTokenIs(lexer.EOF) {
		p.nextToken()
	}

	if p.failed() {
		return nil
	}
	return expr
}

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) ast.Expression {
	if p.failed() {
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(merrors.ErrorInExpression, p.curToken)
		return nil
	}

	leftExp := prefix()

	for !p.failed() && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	if p.failed() {
		return nil
	}
	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken, Imaginary: p.curTokenIs(lexer.IMAGINARY)}

	text := p.curToken.Literal
	if lit.Imaginary {
		text = text[:len(text)-1]
	}

	value, err := strconv.ParseFloat(text, 64)
	if err == nil && math.Abs(value) < number.MinNormal && nonzeroMantissa(text) {
		// ParseFloat rounds tiny literals to zero or a subnormal without error.
		err = strconv.ErrRange
	}
	if err != nil {
		switch {
		case errors.Is(err, strconv.ErrRange) && math.IsInf(value, 0):
			p.addError(merrors.ArithmeticOverflow, p.curToken)
		case errors.Is(err, strconv.ErrRange):
			p.addError(merrors.ArithmeticUnderflow, p.curToken)
		default:
			p.addError(merrors.InvalidNumber, p.curToken, p.curToken.Literal)
		}
		return nil
	}

	lit.Value = value
	return lit
}

// nonzeroMantissa reports whether a numeric literal has a nonzero digit
// before its exponent.
func nonzeroMantissa(text string) bool {
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		text = text[:i]
	}
	return strings.ContainsAny(text, "123456789")
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	if p.curTokenIs(lexer.CARET) {
		precedence-- // right-associative: 2^3^2 = 2^(3^2)
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}

	if !p.peekTokenIs(lexer.RPAREN) {
		p.addError(merrors.NoClosingBracket, p.peekToken)
		return nil
	}
	p.nextToken()

	return exp
}

// parseCallExpression parses name(arg; arg; ...). Arguments may be
// separated by ';' or ','.
func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	ident, ok := fn.(*ast.Identifier)
	if !ok {
		p.addError(merrors.ErrorInExpression, p.curToken)
		return nil
	}

	exp := &ast.CallExpression{Token: p.curToken, Function: ident}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return exp
	}

	p.nextToken()
	exp.Arguments = append(exp.Arguments, p.parseExpression(LOWEST))

	for !p.failed() && (p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.COMMA)) {
		p.nextToken() // consume separator
		p.nextToken() // move to next argument
		exp.Arguments = append(exp.Arguments, p.parseExpression(LOWEST))
	}

	if p.failed() {
		return nil
	}
	if !p.peekTokenIs(lexer.RPAREN) {
		p.addError(merrors.NoClosingBracket, p.peekToken)
		return nil
	}
	p.nextToken()

	return exp
}

// parseConversion handles every conversion form once an operand has been
// parsed. curToken is the unit, 'to', '->' or a bracketed conversion.
func (p *Parser) parseConversion(operand ast.Expression) ast.Expression {
	exp := &ast.ConversionExpression{Token: p.curToken, Operand: operand}

	// A chained conversion continues from the unit the operand ended in.
	defer func() {
		if prev, ok := operand.(*ast.ConversionExpression); ok && exp.From == "" {
			exp.From = prev.To
		}
	}()

	if p.curTokenIs(lexer.CONVERSION) {
		exp.From, exp.To = p.curToken.From, p.curToken.To
		return exp
	}

	if p.curTokenIs(lexer.IDENT) {
		exp.From = p.readUnitName()
		if !p.peekTokenIs(lexer.TO) && !p.peekTokenIs(lexer.ARROW) {
			p.addError(merrors.InvalidUnitConversionSyntax, p.peekToken)
			return nil
		}
		p.nextToken()
		exp.Token = p.curToken
	}

	if !p.peekTokenIs(lexer.IDENT) {
		p.addError(merrors.InvalidUnitConversionSyntax, p.peekToken)
		return nil
	}
	p.nextToken()
	exp.To = p.readUnitName()

	return exp
}

// readUnitName reads a unit name starting at curToken, joining compound
// names such as km/h. It leaves curToken on the last part.
func (p *Parser) readUnitName() string {
	name := p.curToken.Literal
	for p.peekTokenIs(lexer.SLASH) && p.l.PeekToken().Type == lexer.IDENT {
		p.nextToken() // '/'
		p.nextToken() // denominator
		name += "/" + p.curToken.Literal
	}
	return name
}

// parseAssignment parses name = value and its compound forms. The value
// is parsed at the lowest precedence so chains associate to the right.
func (p *Parser) parseAssignment(left ast.Expression) ast.Expression {
	ident, ok := left.(*ast.Identifier)
	if !ok || IsReservedName(ident.Value) {
		p.addError(merrors.InvalidVariableName, p.curToken)
		return nil
	}

	exp := &ast.AssignmentExpression{
		Token:    p.curToken,
		Name:     ident,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	exp.Value = p.parseExpression(LOWEST)

	return exp
}

// Helper functions
func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) peekPrecedence() int {
	if p.peekTokenIs(lexer.IDENT) {
		if p.unitConversionAhead() {
			return CONVERT
		}
		return LOWEST
	}
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// unitConversionAhead reports whether the unit name in peekToken is
// followed by 'to' or '->', as in "5 km to mi" or "36 km/h -> m/s".
func (p *Parser) unitConversionAhead() bool {
	state := p.l.SaveState()
	defer p.l.RestoreState(state)

	tok := p.l.NextToken()
	for tok.Type == lexer.SLASH {
		if p.l.NextToken().Type != lexer.IDENT {
			return false
		}
		tok = p.l.NextToken()
	}
	return tok.Type == lexer.TO || tok.Type == lexer.ARROW
}
