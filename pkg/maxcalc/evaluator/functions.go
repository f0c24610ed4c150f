package evaluator

import (
	"math"
	"math/cmplx"
	"sort"

	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
)

// builtinFn implements a function. name is the canonical function name,
// used in error arguments.
type builtinFn func(c *Context, name string, args []number.Value) (number.Value, error)

// Function describes a built-in function for evaluation and for help
// listings.
type Function struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Arity       int      `json:"arity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`

	fn builtinFn
}

// FunctionRegistry resolves function names and aliases, ignoring case.
type FunctionRegistry struct {
	functions []*Function
	byName    map[string]*Function
}

func newFunctionRegistry(fns []*Function) *FunctionRegistry {
	r := &FunctionRegistry{byName: make(map[string]*Function)}
	for _, f := range fns {
		r.functions = append(r.functions, f)
		r.byName[foldName(f.Name)] = f
		for _, alias := range f.Aliases {
			r.byName[foldName(alias)] = f
		}
	}
	return r
}

// Lookup finds a function by name or alias.
func (r *FunctionRegistry) Lookup(name string) (*Function, bool) {
	f, ok := r.byName[foldName(name)]
	return f, ok
}

// All returns every function in listing order.
func (r *FunctionRegistry) All() []*Function {
	out := make([]*Function, len(r.functions))
	copy(out, r.functions)
	return out
}

// Names returns canonical function names, sorted.
func (r *FunctionRegistry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for _, f := range r.functions {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// AllNames returns canonical names and aliases, sorted. Used for
// suggestions and completion.
func (r *FunctionRegistry) AllNames() []string {
	names := make([]string, 0, len(r.byName))
	for _, f := range r.functions {
		names = append(names, f.Name)
		names = append(names, f.Aliases...)
	}
	sort.Strings(names)
	return names
}

func (f *Function) call(c *Context, args []number.Value) (number.Value, error) {
	if len(args) != f.Arity {
		return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, f.Name, merrors.ReasonArity)
	}
	return f.fn(c, f.Name, args)
}

var builtinRegistry = newFunctionRegistry([]*Function{
	// Arithmetic
	{Name: "abs", Arity: 1, Category: "arithmetic", Description: "Absolute value (modulus of a complex number)", fn: fnAbs},
	{Name: "sqr", Arity: 1, Category: "arithmetic", Description: "Square", fn: fnSqr},
	{Name: "sqrt", Arity: 1, Category: "arithmetic", Description: "Square root", fn: fnSqrt},
	{Name: "pow", Arity: 2, Category: "arithmetic", Description: "Power (base; exponent)", fn: fnPow},
	{Name: "fact", Aliases: []string{"factorial"}, Arity: 1, Category: "arithmetic", Description: "Factorial of a non-negative integer", fn: fnFact},

	// Trigonometry
	{Name: "sin", Arity: 1, Category: "trigonometric", Description: "Sine", fn: fnSin},
	{Name: "cos", Arity: 1, Category: "trigonometric", Description: "Cosine", fn: fnCos},
	{Name: "tan", Aliases: []string{"tg"}, Arity: 1, Category: "trigonometric", Description: "Tangent", fn: fnTan},
	{Name: "cot", Aliases: []string{"ctg"}, Arity: 1, Category: "trigonometric", Description: "Cotangent", fn: fnCot},
	{Name: "asin", Aliases: []string{"arcsin"}, Arity: 1, Category: "trigonometric", Description: "Arc sine", fn: fnAsin},
	{Name: "acos", Aliases: []string{"arccos"}, Arity: 1, Category: "trigonometric", Description: "Arc cosine", fn: fnAcos},
	{Name: "atan", Aliases: []string{"arctan", "atg", "arctg"}, Arity: 1, Category: "trigonometric", Description: "Arc tangent", fn: fnAtan},
	{Name: "acot", Aliases: []string{"arccot", "actg", "arcctg"}, Arity: 1, Category: "trigonometric", Description: "Arc cotangent", fn: fnAcot},

	// Hyperbolic
	{Name: "sinh", Arity: 1, Category: "hyperbolic", Description: "Hyperbolic sine", fn: fnSinh},
	{Name: "cosh", Arity: 1, Category: "hyperbolic", Description: "Hyperbolic cosine", fn: fnCosh},
	{Name: "tanh", Aliases: []string{"th"}, Arity: 1, Category: "hyperbolic", Description: "Hyperbolic tangent", fn: fnTanh},
	{Name: "coth", Aliases: []string{"cth"}, Arity: 1, Category: "hyperbolic", Description: "Hyperbolic cotangent", fn: fnCoth},
	{Name: "asinh", Aliases: []string{"arcsinh"}, Arity: 1, Category: "hyperbolic", Description: "Inverse hyperbolic sine", fn: fnAsinh},
	{Name: "acosh", Aliases: []string{"arccosh"}, Arity: 1, Category: "hyperbolic", Description: "Inverse hyperbolic cosine", fn: fnAcosh},
	{Name: "atanh", Aliases: []string{"arctanh", "ath", "arcth"}, Arity: 1, Category: "hyperbolic", Description: "Inverse hyperbolic tangent", fn: fnAtanh},
	{Name: "acoth", Aliases: []string{"arccoth", "acth", "arccth"}, Arity: 1, Category: "hyperbolic", Description: "Inverse hyperbolic cotangent", fn: fnAcoth},

	// Logarithms
	{Name: "ln", Arity: 1, Category: "logarithmic", Description: "Natural logarithm", fn: fnLn},
	{Name: "log2", Arity: 1, Category: "logarithmic", Description: "Base-2 logarithm", fn: fnLog2},
	{Name: "log10", Aliases: []string{"lg"}, Arity: 1, Category: "logarithmic", Description: "Base-10 logarithm", fn: fnLog10},
	{Name: "exp", Arity: 1, Category: "logarithmic", Description: "e raised to a power", fn: fnExp},

	// Complex numbers
	{Name: "re", Arity: 1, Category: "complex", Description: "Real part", fn: fnRe},
	{Name: "im", Arity: 1, Category: "complex", Description: "Imaginary part", fn: fnIm},
	{Name: "arg", Arity: 1, Category: "complex", Description: "Argument (phase angle)", fn: fnArg},
	{Name: "conj", Arity: 1, Category: "complex", Description: "Complex conjugate", fn: fnConj},

	// Bitwise
	{Name: "and", Arity: 2, Category: "bitwise", Description: "Bitwise AND of two integers", fn: fnAnd},
	{Name: "or", Arity: 2, Category: "bitwise", Description: "Bitwise OR of two integers", fn: fnOr},
	{Name: "xor", Arity: 2, Category: "bitwise", Description: "Bitwise XOR of two integers", fn: fnXor},
	{Name: "not", Arity: 1, Category: "bitwise", Description: "Bitwise NOT of an integer", fn: fnNot},
})

// =============================================================================
// Arithmetic
// =============================================================================

func fnAbs(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return args[0].Abs(), nil
}

func fnSqr(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return number.Mul(args[0], args[0])
}

func fnSqrt(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		if x.Re() >= 0 {
			return number.NewReal(math.Sqrt(x.Re())), nil
		}
		if !c.complexOn {
			return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name, merrors.ReasonNegative)
		}
		return number.NewComplex(0, math.Sqrt(-x.Re())), nil
	}
	return number.CheckComplex(cmplx.Sqrt(x.Complex128()), !x.IsZero())
}

func fnPow(c *Context, _ string, args []number.Value) (number.Value, error) {
	return number.Pow(args[0], args[1], c.complexOn)
}

func fnFact(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return number.Factorial(args[0])
}

// =============================================================================
// Logarithms
// =============================================================================

// logarithm computes ln(x)/divisor with the domain checks shared by ln,
// log2 and log10.
func logarithm(c *Context, name string, x number.Value, divisor float64) (number.Value, error) {
	if x.IsZero() {
		if !c.complexOn && name != "ln" {
			return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name, merrors.ReasonZeroOrNegative)
		}
		return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name, merrors.ReasonZero)
	}

	if x.IsReal() {
		if x.Re() > 0 {
			return number.CheckReal(math.Log(x.Re())/divisor, false)
		}
		if !c.complexOn {
			reason := merrors.ReasonZeroOrNegative
			if name == "ln" {
				reason = merrors.ReasonNegative
			}
			return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name, reason)
		}
	}

	z := cmplx.Log(x.Complex128())
	return number.CheckComplex(complex(real(z)/divisor, imag(z)/divisor), false)
}

func fnLn(c *Context, name string, args []number.Value) (number.Value, error) {
	return logarithm(c, name, args[0], 1)
}

func fnLog2(c *Context, name string, args []number.Value) (number.Value, error) {
	return logarithm(c, name, args[0], math.Ln2)
}

func fnLog10(c *Context, name string, args []number.Value) (number.Value, error) {
	return logarithm(c, name, args[0], math.Ln10)
}

func fnExp(_ *Context, _ string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		return number.CheckReal(math.Exp(x.Re()), true)
	}
	return number.CheckComplex(cmplx.Exp(x.Complex128()), true)
}

// =============================================================================
// Complex numbers
// =============================================================================

func fnRe(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return number.NewReal(args[0].Re()), nil
}

func fnIm(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return number.NewReal(args[0].Im()), nil
}

func fnArg(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	return fromRadians(c, name, number.NewReal(math.Atan2(x.Im(), x.Re())))
}

func fnConj(_ *Context, _ string, args []number.Value) (number.Value, error) {
	x := args[0]
	return number.NewComplex(x.Re(), -x.Im()).Normalize(), nil
}

// =============================================================================
// Bitwise
// =============================================================================

func fnAnd(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return number.And(args[0], args[1])
}

func fnOr(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return number.Or(args[0], args[1])
}

func fnXor(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return number.Xor(args[0], args[1])
}

func fnNot(_ *Context, _ string, args []number.Value) (number.Value, error) {
	return number.Not(args[0])
}
