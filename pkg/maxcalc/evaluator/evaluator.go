// Package evaluator walks a parsed expression and computes its value
// against a Context holding variables, settings and the previous result.
package evaluator

import (
	"math"
	"unicode"

	"github.com/Mishamax/maxcalc/pkg/maxcalc/ast"
	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/parser"
)

// Constant is a built-in named value.
type Constant struct {
	Name        string
	Description string
	Value       number.Value
}

var constants = []Constant{
	{Name: "pi", Description: "Ratio of a circle's circumference to its diameter", Value: number.NewReal(math.Pi)},
	{Name: "e", Description: "Base of the natural logarithm", Value: number.NewReal(math.E)},
	{Name: "i", Description: "Imaginary unit", Value: number.ImaginaryUnit()},
	{Name: "j", Description: "Imaginary unit (engineering notation)", Value: number.ImaginaryUnit()},
}

// previousResultNames refer to the result of the last successful
// evaluation.
var previousResultNames = []string{"res", "result", "ans"}

// Constants returns the built-in constants.
func Constants() []Constant {
	out := make([]Constant, len(constants))
	copy(out, constants)
	return out
}

// IsBuiltinName reports whether name is a constant or a previous-result
// alias. Such names cannot be assigned or deleted.
func IsBuiltinName(name string) bool {
	return lookupConstant(name) != nil || isPreviousResultName(name)
}

func lookupConstant(name string) *Constant {
	key := foldName(name)
	for i := range constants {
		if constants[i].Name == key {
			return &constants[i]
		}
	}
	return nil
}

func isPreviousResultName(name string) bool {
	key := foldName(name)
	for _, n := range previousResultNames {
		if n == key {
			return true
		}
	}
	return false
}

// Evaluate parses and evaluates expression against ctx.
//
// Evaluation runs on a copy of the context. The copy replaces ctx only if
// evaluation succeeds, so a failing expression leaves no trace.
func Evaluate(expression string, ctx *Context) (number.Value, error) {
	node, err := parser.Parse(expression)
	if err != nil {
		return number.NewInvalid(), err
	}

	work := ctx.Clone()
	result, err := work.run(node)
	if err != nil {
		return number.NewInvalid(), err
	}

	work.previous = result
	work.hasPrevious = true
	*ctx = *work
	return result, nil
}

// run evaluates node, converting runtime panics into ArithmeticError.
func (c *Context) run(node ast.Expression) (result number.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = number.NewInvalid(), merrors.New(merrors.ArithmeticError)
		}
	}()

	result, err = c.eval(node)
	if err != nil {
		return number.NewInvalid(), err
	}
	if result.IsInvalid() {
		return number.NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	return result, nil
}

func (c *Context) eval(node ast.Expression) (number.Value, error) {
	switch node := node.(type) {
	case *ast.NumberLiteral:
		return c.evalNumber(node)

	case *ast.Identifier:
		return c.evalIdentifier(node)

	case *ast.PrefixExpression:
		right, err := c.eval(node.Right)
		if err != nil {
			return number.NewInvalid(), err
		}
		if node.Operator == "-" {
			return number.Neg(right)
		}
		return right, nil

	case *ast.InfixExpression:
		left, err := c.eval(node.Left)
		if err != nil {
			return number.NewInvalid(), err
		}
		right, err := c.eval(node.Right)
		if err != nil {
			return number.NewInvalid(), err
		}
		return c.applyOperator(node.Operator, left, right)

	case *ast.CallExpression:
		return c.evalCall(node)

	case *ast.ConversionExpression:
		operand, err := c.eval(node.Operand)
		if err != nil {
			return number.NewInvalid(), err
		}
		return c.units.Convert(operand, node.From, node.To)

	case *ast.AssignmentExpression:
		return c.evalAssignment(node)
	}

	return number.NewInvalid(), merrors.New(merrors.ErrorInExpression)
}

func (c *Context) evalNumber(node *ast.NumberLiteral) (number.Value, error) {
	if !node.Imaginary {
		return number.NewReal(node.Value), nil
	}
	if !c.complexOn {
		return number.NewInvalid(), merrors.New(merrors.InvalidNumber, node.String())
	}
	return number.NewComplex(0, node.Value).Normalize(), nil
}

func (c *Context) evalIdentifier(node *ast.Identifier) (number.Value, error) {
	name := node.Value

	if isPreviousResultName(name) {
		if !c.hasPrevious {
			return number.NewInvalid(), merrors.New(merrors.NoPreviousResult)
		}
		return c.previous, nil
	}

	if k := lookupConstant(name); k != nil {
		if k.Value.IsComplex() && !c.complexOn {
			return number.NewInvalid(), merrors.New(merrors.InvalidNumber, name)
		}
		return k.Value, nil
	}

	if v, ok := c.Variable(name); ok {
		return v, nil
	}

	return number.NewInvalid(), merrors.NewUnknownVariable(name, c.variableNames())
}

func (c *Context) applyOperator(op string, left, right number.Value) (number.Value, error) {
	switch op {
	case "+":
		return number.Add(left, right)
	case "-":
		return number.Sub(left, right)
	case "*":
		return number.Mul(left, right)
	case "/":
		return number.Div(left, right)
	case "^":
		return number.Pow(left, right, c.complexOn)
	}
	return number.NewInvalid(), merrors.New(merrors.ErrorInExpression)
}

func (c *Context) evalCall(node *ast.CallExpression) (number.Value, error) {
	fn, ok := c.functions.Lookup(node.Function.Value)
	if !ok {
		return number.NewInvalid(), merrors.NewUnknownFunction(node.Function.Value, c.functions.AllNames())
	}

	args := make([]number.Value, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		v, err := c.eval(a)
		if err != nil {
			return number.NewInvalid(), err
		}
		args = append(args, v)
	}

	return fn.call(c, args)
}

func (c *Context) evalAssignment(node *ast.AssignmentExpression) (number.Value, error) {
	name := node.Name.Value

	value, err := c.eval(node.Value)
	if err != nil {
		return number.NewInvalid(), err
	}

	if node.Operator != "=" {
		current, ok := c.Variable(name)
		if !ok {
			return number.NewInvalid(), merrors.NewUnknownVariable(name, c.variableNames())
		}
		if value, err = c.applyOperator(node.Operator[:1], current, value); err != nil {
			return number.NewInvalid(), err
		}
	}

	c.setVariable(name, value)
	return value, nil
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}
