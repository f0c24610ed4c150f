package ast

import (
	"bytes"
	"strings"

	"github.com/Mishamax/maxcalc/pkg/maxcalc/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// NumberLiteral is a real number, or an imaginary one when Imaginary is set
// ("4j" has Value 4).
type NumberLiteral struct {
	Token     lexer.Token
	Value     float64
	Imaginary bool
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// Identifier names a variable, constant or function.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// PrefixExpression represents unary plus and minus.
type PrefixExpression struct {
	Token    lexer.Token // the prefix token, e.g. -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents infix expressions like 'x + y'
type InfixExpression struct {
	Token    lexer.Token // the operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (oe *InfixExpression) expressionNode()      {}
func (oe *InfixExpression) TokenLiteral() string { return oe.Token.Literal }
func (oe *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(oe.Left.String())
	out.WriteString(" " + oe.Operator + " ")
	out.WriteString(oe.Right.String())
	out.WriteString(")")

	return out.String()
}

// CallExpression represents a function call like sin(x) or pow(2; 8).
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, 0, len(ce.Arguments))
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	return ce.Function.String() + "(" + strings.Join(args, "; ") + ")"
}

// ConversionExpression converts its operand between units. From is empty
// when the source unit was omitted ("5 to mi").
type ConversionExpression struct {
	Token   lexer.Token // 'to', '->' or the CONVERSION token
	Operand Expression
	From    string
	To      string
}

func (ce *ConversionExpression) expressionNode()      {}
func (ce *ConversionExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ConversionExpression) String() string {
	return "(" + ce.Operand.String() + " [" + ce.From + "->" + ce.To + "])"
}

// AssignmentExpression stores a value in a variable. Operator is "=" or a
// compound form such as "+=". Assignments are expressions, so chains like
// a = b = 3 nest on the right.
type AssignmentExpression struct {
	Token    lexer.Token // the assignment token
	Name     *Identifier
	Operator string
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	return "(" + ae.Name.String() + " " + ae.Operator + " " + ae.Value.String() + ")"
}
