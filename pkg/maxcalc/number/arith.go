package number

import (
	"math"
	"math/cmplx"

	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
)

// MinNormal is the smallest positive normal float64. A multiplicative
// result whose exact value is nonzero but whose magnitude falls below this
// bound is reported as ArithmeticUnderflow.
const MinNormal = 0x1p-1022

// maxIntegerPower bounds exact binary exponentiation of complex bases.
const maxIntegerPower = 1 << 16

// checkReal classifies a real result computed from finite operands.
// nonzero tells whether the exact result of a multiplicative operation is
// known to be nonzero.
func checkReal(r float64, multiplicative, nonzero bool) (Value, error) {
	switch {
	case math.IsNaN(r):
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	case math.IsInf(r, 0):
		return NewInvalid(), merrors.New(merrors.ArithmeticOverflow)
	case multiplicative && nonzero && math.Abs(r) < MinNormal:
		return NewInvalid(), merrors.New(merrors.ArithmeticUnderflow)
	}
	return NewReal(r), nil
}

// checkComplex classifies a complex result the same way as checkReal,
// then normalizes it.
func checkComplex(z complex128, multiplicative, nonzero bool) (Value, error) {
	switch {
	case math.IsNaN(real(z)) || math.IsNaN(imag(z)):
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	case math.IsInf(real(z), 0) || math.IsInf(imag(z), 0):
		return NewInvalid(), merrors.New(merrors.ArithmeticOverflow)
	case multiplicative && nonzero && cmplx.Abs(z) < MinNormal:
		return NewInvalid(), merrors.New(merrors.ArithmeticUnderflow)
	}
	return FromComplex128(z), nil
}

// CheckReal classifies the result of an elementary function applied to
// finite operands. Functions that can legitimately return zero pass
// nonzero=false.
func CheckReal(r float64, nonzero bool) (Value, error) {
	return checkReal(r, true, nonzero)
}

// CheckComplex is the complex counterpart of CheckReal.
func CheckComplex(z complex128, nonzero bool) (Value, error) {
	return checkComplex(z, true, nonzero)
}

func invalidOperand(a, b Value) bool {
	return a.kind == Invalid || b.kind == Invalid
}

// Neg returns -v.
func Neg(v Value) (Value, error) {
	switch v.kind {
	case Real:
		return NewReal(-v.re), nil
	case Complex:
		return NewComplex(-v.re, -v.im), nil
	default:
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
}

// Add returns a + b.
func Add(a, b Value) (Value, error) {
	if invalidOperand(a, b) {
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	if a.kind == Real && b.kind == Real {
		return checkReal(a.re+b.re, false, false)
	}
	return checkComplex(a.Complex128()+b.Complex128(), false, false)
}

// Sub returns a - b.
func Sub(a, b Value) (Value, error) {
	if invalidOperand(a, b) {
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	if a.kind == Real && b.kind == Real {
		return checkReal(a.re-b.re, false, false)
	}
	return checkComplex(a.Complex128()-b.Complex128(), false, false)
}

// Mul returns a * b.
func Mul(a, b Value) (Value, error) {
	if invalidOperand(a, b) {
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	nonzero := !a.IsZero() && !b.IsZero()
	if a.kind == Real && b.kind == Real {
		return checkReal(a.re*b.re, true, nonzero)
	}
	if a.kind == Real || b.kind == Real {
		// Scale componentwise so that 2*(0+1i) keeps an exact zero real part.
		s, z := a, b
		if b.kind == Real {
			s, z = b, a
		}
		return checkComplex(complex(s.re*z.re, s.re*z.im), true, nonzero)
	}
	return checkComplex(a.Complex128()*b.Complex128(), true, nonzero)
}

// Div returns a / b. Any zero divisor, including 0/0, is DivisionByZero.
func Div(a, b Value) (Value, error) {
	if invalidOperand(a, b) {
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	if b.IsZero() {
		return NewInvalid(), merrors.New(merrors.DivisionByZero)
	}
	nonzero := !a.IsZero()
	if a.kind == Real && b.kind == Real {
		return checkReal(a.re/b.re, true, nonzero)
	}
	if b.kind == Real {
		return checkComplex(complex(a.re/b.re, a.Im()/b.re), true, nonzero)
	}
	return checkComplex(a.Complex128()/b.Complex128(), true, nonzero)
}

// Pow returns base^exp. allowComplex controls whether a negative real base
// with a fractional exponent may produce a complex principal value.
func Pow(base, exp Value, allowComplex bool) (Value, error) {
	if invalidOperand(base, exp) {
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	}

	if exp.IsZero() {
		return NewReal(1), nil
	}

	if base.IsZero() {
		// 0^x is 0 for Re(x) > 0 and undefined otherwise.
		if exp.Re() > 0 {
			return NewReal(0), nil
		}
		return NewInvalid(), merrors.New(merrors.DivisionImpossible)
	}

	if base.kind == Real && exp.IsInteger() {
		return checkReal(math.Pow(base.re, exp.re), true, true)
	}

	if exp.IsInteger() && math.Abs(exp.re) <= maxIntegerPower {
		return powInt(base, int64(exp.re))
	}

	if base.kind == Real && exp.kind == Real {
		if base.re < 0 {
			if !allowComplex {
				return NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, "pow", merrors.ReasonNegative)
			}
			return checkComplex(cmplx.Pow(base.Complex128(), exp.Complex128()), true, true)
		}
		return checkReal(math.Pow(base.re, exp.re), true, true)
	}

	return checkComplex(cmplx.Pow(base.Complex128(), exp.Complex128()), true, true)
}

// powInt raises base to an integer power by binary exponentiation, which
// keeps results like i^2 exact.
func powInt(base Value, n int64) (Value, error) {
	neg := n < 0
	if neg {
		n = -n
	}

	result := NewReal(1)
	square := base
	for n > 0 {
		var err error
		if n&1 == 1 {
			if result, err = Mul(result, square); err != nil {
				return NewInvalid(), err
			}
		}
		n >>= 1
		if n > 0 {
			if square, err = Mul(square, square); err != nil {
				return NewInvalid(), err
			}
		}
	}

	if neg {
		return Div(NewReal(1), result)
	}
	return result, nil
}

// maxFactorial is the largest n whose factorial fits in a float64.
const maxFactorial = 170

// Factorial returns n! for a non-negative integer n.
func Factorial(v Value) (Value, error) {
	if v.kind == Invalid {
		return NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	if !v.IsInteger() || v.re < 0 {
		return NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, "fact", merrors.ReasonFactorial)
	}
	if v.re > maxFactorial {
		return NewInvalid(), merrors.New(merrors.ArithmeticOverflow)
	}

	result := 1.0
	for i := 2.0; i <= v.re; i++ {
		result *= i
	}
	return NewReal(result), nil
}

// ToInt64 converts an integral Real to int64 for integer-only operations.
// name is the operation reported when v is complex.
func ToInt64(v Value, name string) (int64, error) {
	switch {
	case v.kind == Invalid:
		return 0, merrors.New(merrors.ArithmeticError)
	case v.kind == Complex:
		return 0, merrors.New(merrors.InvalidFunctionArgument, name, merrors.ReasonComplex)
	case v.IsFractional():
		return 0, merrors.New(merrors.InvalidFractionalOperation)
	case v.re >= 0x1p63 || v.re < -0x1p63 || math.IsInf(v.re, 0):
		return 0, merrors.New(merrors.ConversionImpossible)
	}
	return int64(v.re), nil
}

func bitwise(a, b Value, name string, op func(x, y int64) int64) (Value, error) {
	x, err := ToInt64(a, name)
	if err != nil {
		return NewInvalid(), err
	}
	y, err := ToInt64(b, name)
	if err != nil {
		return NewInvalid(), err
	}
	return NewReal(float64(op(x, y))), nil
}

// And returns the bitwise AND of two integers.
func And(a, b Value) (Value, error) {
	return bitwise(a, b, "and", func(x, y int64) int64 { return x & y })
}

// Or returns the bitwise OR of two integers.
func Or(a, b Value) (Value, error) {
	return bitwise(a, b, "or", func(x, y int64) int64 { return x | y })
}

// Xor returns the bitwise XOR of two integers.
func Xor(a, b Value) (Value, error) {
	return bitwise(a, b, "xor", func(x, y int64) int64 { return x ^ y })
}

// Not returns the bitwise complement of an integer.
func Not(a Value) (Value, error) {
	x, err := ToInt64(a, "not")
	if err != nil {
		return NewInvalid(), err
	}
	return NewReal(float64(^x)), nil
}
