// Package number implements the calculator's numeric value: a tagged union
// of a real number, a complex number, or an invalid marker.
//
// Arithmetic is closed over the variants and every operation either returns
// a valid Value or an *errors.EngineError describing the numeric fault.
package number

import (
	"math"
	"math/cmplx"
)

// Kind is the variant tag of a Value.
type Kind int

const (
	Invalid Kind = iota
	Real
	Complex
)

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case Real:
		return "real"
	case Complex:
		return "complex"
	default:
		return "invalid"
	}
}

// Value is a calculator value. The zero Value is Invalid.
type Value struct {
	kind Kind
	re   float64
	im   float64
}

// NewReal returns a Real value.
func NewReal(x float64) Value {
	return Value{kind: Real, re: x}
}

// NewComplex returns a Complex value. A zero imaginary part still yields a
// Complex; use Normalize to collapse it.
func NewComplex(re, im float64) Value {
	return Value{kind: Complex, re: re, im: im}
}

// FromComplex128 returns the normalized value of z.
func FromComplex128(z complex128) Value {
	return NewComplex(real(z), imag(z)).Normalize()
}

// NewInvalid returns the Invalid marker.
func NewInvalid() Value {
	return Value{}
}

// ImaginaryUnit returns i.
func ImaginaryUnit() Value {
	return NewComplex(0, 1)
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Re returns the real part. Invalid values return NaN.
func (v Value) Re() float64 {
	if v.kind == Invalid {
		return math.NaN()
	}
	return v.re
}

// Im returns the imaginary part (zero for Real values).
func (v Value) Im() float64 {
	switch v.kind {
	case Complex:
		return v.im
	case Real:
		return 0
	default:
		return math.NaN()
	}
}

// Complex128 returns the value as a complex128.
func (v Value) Complex128() complex128 {
	return complex(v.Re(), v.Im())
}

// Normalize turns a Complex with an imaginary part of exactly zero into a
// Real. It is the only place a Complex becomes Real.
func (v Value) Normalize() Value {
	if v.kind == Complex && v.im == 0 {
		return NewReal(v.re)
	}
	return v
}

// IsInvalid reports whether v is the Invalid marker.
func (v Value) IsInvalid() bool { return v.kind == Invalid }

// IsReal reports whether v is Real.
func (v Value) IsReal() bool { return v.kind == Real }

// IsComplex reports whether v is Complex.
func (v Value) IsComplex() bool { return v.kind == Complex }

// IsZero reports whether v is a real or complex zero.
func (v Value) IsZero() bool {
	switch v.kind {
	case Real:
		return v.re == 0
	case Complex:
		return v.re == 0 && v.im == 0
	default:
		return false
	}
}

// IsNegative reports whether v is a negative Real.
func (v Value) IsNegative() bool {
	return v.kind == Real && v.re < 0
}

// IsInteger reports whether v is a Real with no fractional part.
func (v Value) IsInteger() bool {
	return v.kind == Real && !math.IsInf(v.re, 0) && v.re == math.Trunc(v.re)
}

// IsFractional reports whether v is a Real with a fractional part.
func (v Value) IsFractional() bool {
	return v.kind == Real && !math.IsNaN(v.re) && v.re != math.Trunc(v.re)
}

// Equal reports whether two valid values are numerically equal. Real and
// Complex values compare by their components. Invalid values are never
// equal, not even to themselves.
func (v Value) Equal(w Value) bool {
	if v.kind == Invalid || w.kind == Invalid {
		return false
	}
	return v.Re() == w.Re() && v.Im() == w.Im()
}

// Abs returns |v| as a Real.
func (v Value) Abs() Value {
	switch v.kind {
	case Real:
		return NewReal(math.Abs(v.re))
	case Complex:
		return NewReal(cmplx.Abs(v.Complex128()))
	default:
		return v
	}
}
