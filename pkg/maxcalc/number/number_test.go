package number

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
)

func TestZeroValueIsInvalid(t *testing.T) {
	var v Value
	assert.True(t, v.IsInvalid())
	assert.False(t, v.Equal(v))
	assert.Equal(t, "invalid", v.String())
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name                              string
		v                                 Value
		zero, negative, fractional, cmplx bool
	}{
		{"real zero", NewReal(0), true, false, false, false},
		{"negative integer", NewReal(-3), false, true, false, false},
		{"fraction", NewReal(2.5), false, false, true, false},
		{"complex", NewComplex(1, 2), false, false, false, true},
		{"complex zero", NewComplex(0, 0), true, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.zero, tt.v.IsZero(), "IsZero")
			assert.Equal(t, tt.negative, tt.v.IsNegative(), "IsNegative")
			assert.Equal(t, tt.fractional, tt.v.IsFractional(), "IsFractional")
			assert.Equal(t, tt.cmplx, tt.v.IsComplex(), "IsComplex")
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.True(t, NewComplex(3, 0).Normalize().IsReal())
	assert.True(t, NewComplex(3, 1e-300).Normalize().IsComplex())
	assert.True(t, FromComplex128(complex(2, 0)).IsReal())
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b Value) (Value, error)
		a, b Value
		want Value
	}{
		{"add", Add, NewReal(2), NewReal(2), NewReal(4)},
		{"sub", Sub, NewReal(2), NewReal(5), NewReal(-3)},
		{"mul", Mul, NewReal(6), NewReal(7), NewReal(42)},
		{"div", Div, NewReal(1), NewReal(4), NewReal(0.25)},
		{"complex add cancels", Add, NewComplex(1, 2), NewComplex(1, -2), NewReal(2)},
		{"complex mul", Mul, NewComplex(1, 2), NewComplex(3, -1), NewComplex(5, 5)},
		{"i squared", Mul, ImaginaryUnit(), ImaginaryUnit(), NewReal(-1)},
		{"scale complex", Mul, NewReal(2), ImaginaryUnit(), NewComplex(0, 2)},
		{"complex div by real", Div, NewComplex(4, 2), NewReal(2), NewComplex(2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Kind(), got.Kind())
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	tests := []struct {
		name string
		op   func() (Value, error)
		kind merrors.Kind
	}{
		{"division by zero", func() (Value, error) { return Div(NewReal(1), NewReal(0)) }, merrors.DivisionByZero},
		{"zero by zero", func() (Value, error) { return Div(NewReal(0), NewReal(0)) }, merrors.DivisionByZero},
		{"complex division by zero", func() (Value, error) { return Div(ImaginaryUnit(), NewComplex(0, 0)) }, merrors.DivisionByZero},
		{"overflow", func() (Value, error) { return Mul(NewReal(1e308), NewReal(10)) }, merrors.ArithmeticOverflow},
		{"add overflow", func() (Value, error) { return Add(NewReal(math.MaxFloat64), NewReal(math.MaxFloat64)) }, merrors.ArithmeticOverflow},
		{"underflow", func() (Value, error) { return Div(NewReal(1e-300), NewReal(1e300)) }, merrors.ArithmeticUnderflow},
		{"invalid operand", func() (Value, error) { return Add(NewInvalid(), NewReal(1)) }, merrors.ArithmeticError},
		{"zero to negative power", func() (Value, error) { return Pow(NewReal(0), NewReal(-1), true) }, merrors.DivisionImpossible},
		{"negative base real-only", func() (Value, error) { return Pow(NewReal(-8), NewReal(0.5), false) }, merrors.InvalidFunctionArgument},
		{"factorial of fraction", func() (Value, error) { return Factorial(NewReal(2.5)) }, merrors.InvalidFunctionArgument},
		{"factorial overflow", func() (Value, error) { return Factorial(NewReal(171)) }, merrors.ArithmeticOverflow},
		{"bitwise on fraction", func() (Value, error) { return And(NewReal(1.5), NewReal(1)) }, merrors.InvalidFractionalOperation},
		{"bitwise too large", func() (Value, error) { return Or(NewReal(1e20), NewReal(1)) }, merrors.ConversionImpossible},
		{"bitwise on complex", func() (Value, error) { return Not(ImaginaryUnit()) }, merrors.InvalidFunctionArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.op()
			require.Error(t, err)
			assert.Equal(t, tt.kind, merrors.KindOf(err))
		})
	}
}

func TestPow(t *testing.T) {
	tests := []struct {
		name         string
		base, exp    Value
		allowComplex bool
		want         Value
	}{
		{"integer", NewReal(2), NewReal(10), false, NewReal(1024)},
		{"zero exponent", NewReal(0), NewReal(0), false, NewReal(1)},
		{"zero base", NewReal(0), NewReal(3), false, NewReal(0)},
		{"negative integer exponent", NewReal(2), NewReal(-2), false, NewReal(0.25)},
		{"odd power of negative", NewReal(-2), NewReal(3), false, NewReal(-8)},
		{"i squared exact", ImaginaryUnit(), NewReal(2), true, NewReal(-1)},
		{"i to the fourth", ImaginaryUnit(), NewReal(4), true, NewReal(1)},
		{"i inverse", ImaginaryUnit(), NewReal(-1), true, NewComplex(0, -1)},
		{"square root", NewReal(9), NewReal(0.5), false, NewReal(3)},
		{"large even power of negative", NewReal(-1), NewReal(70000), true, NewReal(1)},
		{"large even power of negative real-only", NewReal(-1), NewReal(70000), false, NewReal(1)},
		{"large odd power of negative", NewReal(-1), NewReal(70001), false, NewReal(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pow(tt.base, tt.exp, tt.allowComplex)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Kind(), got.Kind())
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}

	got, err := Pow(NewReal(-4), NewReal(0.5), true)
	require.NoError(t, err)
	assert.True(t, got.IsComplex())
	assert.InDelta(t, 2, got.Im(), 1e-12)
}

func TestFactorialAndBitwise(t *testing.T) {
	got, err := Factorial(NewReal(5))
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.Re())

	got, err = Factorial(NewReal(0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Re())

	got, err = And(NewReal(6), NewReal(3))
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Re())

	got, err = Xor(NewReal(6), NewReal(3))
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Re())

	got, err = Not(NewReal(0))
	require.NoError(t, err)
	assert.Equal(t, -1.0, got.Re())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		v      Value
		want   string
	}{
		{"integer", DefaultFormat(), NewReal(4), "4"},
		{"rounding noise", DefaultFormat(), NewReal(0.1 + 0.2), "0.3"},
		{"negative zero", DefaultFormat(), NewReal(math.Copysign(0, -1)), "0"},
		{"large", DefaultFormat(), NewReal(1e21), "1e21"},
		{"small", DefaultFormat(), NewReal(1e-7), "1e-7"},
		{"comma", Format{Precision: 15, DecimalSeparator: ',', ImaginaryUnit: 'i'}, NewReal(2.5), "2,5"},
		{"precision", Format{Precision: 3}, NewReal(math.Pi), "3.14"},
		{"complex", DefaultFormat(), NewComplex(3, 4), "3+4i"},
		{"complex negative imaginary", DefaultFormat(), NewComplex(3, -4), "3-4i"},
		{"pure imaginary", DefaultFormat(), NewComplex(0, 2), "2i"},
		{"unit imaginary", DefaultFormat(), ImaginaryUnit(), "i"},
		{"negative unit imaginary", DefaultFormat(), NewComplex(0, -1), "-i"},
		{"j unit", Format{ImaginaryUnit: 'j'}, NewComplex(1, 1), "1+j"},
		{"out of range precision", Format{Precision: 99}, NewReal(0.5), "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.Value(tt.v))
		})
	}
}

func TestDecimalSeparatorFor(t *testing.T) {
	assert.Equal(t, '.', DecimalSeparatorFor("en"))
	assert.Equal(t, ',', DecimalSeparatorFor("ru"))
	assert.Equal(t, ',', DecimalSeparatorFor("de"))
	assert.Equal(t, '.', DecimalSeparatorFor("not a locale!"))
}
