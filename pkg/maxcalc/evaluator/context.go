package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/parser"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/units"
)

// AngleMode selects the unit trigonometric functions take and return.
type AngleMode int

const (
	Radians AngleMode = iota
	Degrees
	Grads
)

func (m AngleMode) String() string {
	switch m {
	case Degrees:
		return "degrees"
	case Grads:
		return "grads"
	default:
		return "radians"
	}
}

// ParseAngleMode accepts the usual spellings of each mode: rad, radian,
// radians; deg, degree, degrees; grad, grads, gradian, gradians, gon.
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rad", "radian", "radians":
		return Radians, nil
	case "deg", "degree", "degrees":
		return Degrees, nil
	case "grad", "grads", "gradian", "gradians", "gon":
		return Grads, nil
	}
	return Radians, fmt.Errorf("unknown angle mode %q", s)
}

// Variable is a named value. Name keeps the spelling used when the
// variable was first assigned.
type Variable struct {
	Name  string
	Value number.Value
}

// Context is the state an expression is evaluated against. A Context is
// not safe for concurrent use.
type Context struct {
	vars        map[string]Variable // keyed by folded name
	angleMode   AngleMode
	complexOn   bool
	previous    number.Value
	hasPrevious bool

	functions *FunctionRegistry
	units     *units.Registry
}

// NewContext returns a context with default settings: radians, complex
// numbers enabled, no variables and no previous result.
func NewContext() *Context {
	return &Context{
		vars:      make(map[string]Variable),
		angleMode: Radians,
		complexOn: true,
		functions: builtinRegistry,
		units:     units.NewRegistry(),
	}
}

// Clone returns a copy of c whose variables can be changed independently.
// The function and unit registries are shared.
func (c *Context) Clone() *Context {
	clone := *c
	clone.vars = make(map[string]Variable, len(c.vars))
	for k, v := range c.vars {
		clone.vars[k] = v
	}
	return &clone
}

// Evaluate parses and evaluates one expression against c.
//
// On success the result becomes the previous result. On failure nothing in
// c changes, including variables assigned earlier in the same expression.
func (c *Context) Evaluate(expression string) (number.Value, error) {
	return Evaluate(expression, c)
}

// AngleMode returns the current angle mode.
func (c *Context) AngleMode() AngleMode { return c.angleMode }

// SetAngleMode changes the angle mode.
func (c *Context) SetAngleMode(mode AngleMode) { c.angleMode = mode }

// ComplexEnabled reports whether complex results are allowed.
func (c *Context) ComplexEnabled() bool { return c.complexOn }

// SetComplexEnabled turns complex numbers on or off.
func (c *Context) SetComplexEnabled(on bool) { c.complexOn = on }

// PreviousResult returns the result of the last successful evaluation.
func (c *Context) PreviousResult() (number.Value, bool) {
	return c.previous, c.hasPrevious
}

// Units returns the unit registry.
func (c *Context) Units() *units.Registry { return c.units }

// SetUnits replaces the unit registry.
func (c *Context) SetUnits(r *units.Registry) { c.units = r }

// Functions returns the function registry.
func (c *Context) Functions() *FunctionRegistry { return c.functions }

func foldName(name string) string {
	return cases.Fold().String(name)
}

// Variable returns the value of a variable. Names are case-insensitive.
func (c *Context) Variable(name string) (number.Value, bool) {
	v, ok := c.vars[foldName(name)]
	return v.Value, ok
}

// SetVariable assigns a variable. Reserved names and names that are not
// identifiers are rejected with InvalidVariableName.
func (c *Context) SetVariable(name string, value number.Value) error {
	if !isIdentifier(name) || parser.IsReservedName(name) {
		return merrors.New(merrors.InvalidVariableName)
	}
	if value.IsInvalid() {
		return merrors.New(merrors.ArithmeticError)
	}
	c.setVariable(name, value)
	return nil
}

func (c *Context) setVariable(name string, value number.Value) {
	key := foldName(name)
	if existing, ok := c.vars[key]; ok {
		name = existing.Name
	}
	c.vars[key] = Variable{Name: name, Value: value}
}

// DeleteVariable removes a variable and reports whether it existed.
func (c *Context) DeleteVariable(name string) bool {
	key := foldName(name)
	_, ok := c.vars[key]
	delete(c.vars, key)
	return ok
}

// DeleteAllVariables removes every variable.
func (c *Context) DeleteAllVariables() {
	c.vars = make(map[string]Variable)
}

// ListVariables returns the variables sorted by name.
func (c *Context) ListVariables() []Variable {
	out := make([]Variable, 0, len(c.vars))
	for _, v := range c.vars {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return foldName(out[i].Name) < foldName(out[j].Name)
	})
	return out
}

// ListFunctions returns the canonical names of all functions, sorted.
func (c *Context) ListFunctions() []string {
	return c.functions.Names()
}

// variableNames returns names usable in "did you mean" hints for an
// unknown variable.
func (c *Context) variableNames() []string {
	names := make([]string, 0, len(c.vars)+len(constants)+len(previousResultNames))
	for _, v := range c.vars {
		names = append(names, v.Name)
	}
	for _, k := range constants {
		names = append(names, k.Name)
	}
	if c.hasPrevious {
		names = append(names, previousResultNames...)
	}
	sort.Strings(names)
	return names
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || isLetter(r) || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}
