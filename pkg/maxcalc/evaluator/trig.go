package evaluator

import (
	"math"
	"math/cmplx"

	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
)

// Results of forward trig functions in radians mode whose magnitude is at
// most roundoffZero are treated as exact zeros, provided the argument is
// not itself tiny. This makes sin(pi) = 0 and tan(pi/2) an error.
const (
	roundoffZero    = 1e-15
	roundoffMinArgs = 1e-3
)

// fullTurn is the size of a full circle in each angle mode.
func fullTurn(mode AngleMode) float64 {
	switch mode {
	case Degrees:
		return 360
	case Grads:
		return 400
	default:
		return 2 * math.Pi
	}
}

// toRadians converts a trig argument from the current angle mode.
func toRadians(c *Context, name string, x number.Value) (number.Value, error) {
	if c.angleMode == Radians {
		return x, nil
	}
	if x.IsComplex() {
		return number.NewInvalid(), merrors.New(merrors.ComplexAngleConversion, name)
	}
	return number.CheckReal(x.Re()*2*math.Pi/fullTurn(c.angleMode), false)
}

// fromRadians converts an inverse trig result into the current angle mode.
func fromRadians(c *Context, name string, x number.Value) (number.Value, error) {
	if c.angleMode == Radians {
		return x, nil
	}
	if x.IsComplex() {
		return number.NewInvalid(), merrors.New(merrors.ComplexAngleConversion, name)
	}
	return number.CheckReal(x.Re()*fullTurn(c.angleMode)/(2*math.Pi), false)
}

// quarterTurn reports, for a real argument in degrees or grads that is an
// exact multiple of a quarter turn, which quarter (0..3) it lands on.
func quarterTurn(c *Context, x number.Value) (int, bool) {
	if c.angleMode == Radians || !x.IsReal() {
		return 0, false
	}
	quarter := fullTurn(c.angleMode) / 4
	if math.Abs(x.Re()) >= 1<<53 || math.Mod(x.Re(), quarter) != 0 {
		return 0, false
	}
	k := int(math.Mod(x.Re()/quarter, 4))
	if k < 0 {
		k += 4
	}
	return k, true
}

var (
	quarterSin = [4]float64{0, 1, 0, -1}
	quarterCos = [4]float64{1, 0, -1, 0}
)

// snap rounds trig noise around zero to zero in radians mode.
func snap(c *Context, arg, r float64) float64 {
	if c.angleMode == Radians && math.Abs(r) <= roundoffZero && math.Abs(arg) >= roundoffMinArgs {
		return 0
	}
	return r
}

// sinCos returns sin(x) and cos(x) for a real argument in the current
// angle mode, exact at quarter turns.
func sinCos(c *Context, name string, x number.Value) (float64, float64, error) {
	if k, ok := quarterTurn(c, x); ok {
		return quarterSin[k], quarterCos[k], nil
	}
	rad, err := toRadians(c, name, x)
	if err != nil {
		return 0, 0, err
	}
	s, co := math.Sincos(rad.Re())
	return snap(c, rad.Re(), s), snap(c, rad.Re(), co), nil
}

// complexArg converts a trig argument to a complex128 in radians.
func complexArg(c *Context, name string, x number.Value) (complex128, error) {
	rad, err := toRadians(c, name, x)
	if err != nil {
		return 0, err
	}
	return rad.Complex128(), nil
}

func fnSin(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		s, _, err := sinCos(c, name, x)
		if err != nil {
			return number.NewInvalid(), err
		}
		return number.NewReal(s), nil
	}
	z, err := complexArg(c, name, x)
	if err != nil {
		return number.NewInvalid(), err
	}
	return number.CheckComplex(cmplx.Sin(z), false)
}

func fnCos(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		_, co, err := sinCos(c, name, x)
		if err != nil {
			return number.NewInvalid(), err
		}
		return number.NewReal(co), nil
	}
	z, err := complexArg(c, name, x)
	if err != nil {
		return number.NewInvalid(), err
	}
	return number.CheckComplex(cmplx.Cos(z), false)
}

func fnTan(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		s, co, err := sinCos(c, name, x)
		if err != nil {
			return number.NewInvalid(), err
		}
		if co == 0 {
			return number.NewInvalid(), merrors.New(merrors.CosArgZero, name)
		}
		return number.CheckReal(s/co, false)
	}
	z, err := complexArg(c, name, x)
	if err != nil {
		return number.NewInvalid(), err
	}
	co := cmplx.Cos(z)
	if co == 0 {
		return number.NewInvalid(), merrors.New(merrors.CosArgZero, name)
	}
	return number.CheckComplex(cmplx.Sin(z)/co, false)
}

func fnCot(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		s, co, err := sinCos(c, name, x)
		if err != nil {
			return number.NewInvalid(), err
		}
		if s == 0 {
			return number.NewInvalid(), merrors.New(merrors.SinArgZero, name)
		}
		return number.CheckReal(co/s, false)
	}
	z, err := complexArg(c, name, x)
	if err != nil {
		return number.NewInvalid(), err
	}
	s := cmplx.Sin(z)
	if s == 0 {
		return number.NewInvalid(), merrors.New(merrors.SinArgZero, name)
	}
	return number.CheckComplex(cmplx.Cos(z)/s, false)
}

// inverseTrig applies an inverse function and converts the resulting angle
// into the current mode.
func inverseTrig(c *Context, name string, x number.Value, realFn func(float64) float64, complexFn func(complex128) complex128) (number.Value, error) {
	var (
		r   number.Value
		err error
	)
	if x.IsReal() {
		r, err = number.CheckReal(realFn(x.Re()), false)
	} else {
		r, err = number.CheckComplex(complexFn(x.Complex128()), false)
	}
	if err != nil {
		return number.NewInvalid(), err
	}
	return fromRadians(c, name, r)
}

func fnAsin(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() && math.Abs(x.Re()) > 1 {
		return number.NewInvalid(), merrors.New(merrors.AbsArgGreaterThanOne, name)
	}
	return inverseTrig(c, name, x, math.Asin, cmplx.Asin)
}

func fnAcos(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() && math.Abs(x.Re()) > 1 {
		return number.NewInvalid(), merrors.New(merrors.AbsArgGreaterThanOne, name)
	}
	return inverseTrig(c, name, x, math.Acos, cmplx.Acos)
}

func fnAtan(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsComplex() && x.Re() == 0 && math.Abs(x.Im()) == 1 {
		return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name)
	}
	return inverseTrig(c, name, x, math.Atan, cmplx.Atan)
}

func fnAcot(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsZero() {
		return fromRadians(c, name, number.NewReal(math.Pi/2))
	}
	if x.IsComplex() && x.Re() == 0 && math.Abs(x.Im()) == 1 {
		return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name)
	}
	return inverseTrig(c, name, x,
		func(v float64) float64 { return math.Atan(1 / v) },
		func(z complex128) complex128 { return cmplx.Atan(1 / z) })
}

// =============================================================================
// Hyperbolic
// =============================================================================

func fnSinh(_ *Context, _ string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		return number.CheckReal(math.Sinh(x.Re()), false)
	}
	return number.CheckComplex(cmplx.Sinh(x.Complex128()), false)
}

func fnCosh(_ *Context, _ string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		return number.CheckReal(math.Cosh(x.Re()), false)
	}
	return number.CheckComplex(cmplx.Cosh(x.Complex128()), false)
}

func fnTanh(_ *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		return number.CheckReal(math.Tanh(x.Re()), false)
	}
	z := x.Complex128()
	ch := cmplx.Cosh(z)
	if cmplx.Abs(ch) <= roundoffZero {
		return number.NewInvalid(), merrors.New(merrors.CoshArgZero, name)
	}
	return number.CheckComplex(cmplx.Sinh(z)/ch, false)
}

func fnCoth(_ *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		if x.Re() == 0 {
			return number.NewInvalid(), merrors.New(merrors.SinhArgZero, name)
		}
		return number.CheckReal(1/math.Tanh(x.Re()), false)
	}
	z := x.Complex128()
	sh := cmplx.Sinh(z)
	if cmplx.Abs(sh) <= roundoffZero {
		return number.NewInvalid(), merrors.New(merrors.SinhArgZero, name)
	}
	return number.CheckComplex(cmplx.Cosh(z)/sh, false)
}

func fnAsinh(_ *Context, _ string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		return number.CheckReal(math.Asinh(x.Re()), false)
	}
	return number.CheckComplex(cmplx.Asinh(x.Complex128()), false)
}

func fnAcosh(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		if x.Re() >= 1 {
			return number.CheckReal(math.Acosh(x.Re()), false)
		}
		if !c.complexOn {
			return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name)
		}
	}
	return number.CheckComplex(cmplx.Acosh(x.Complex128()), false)
}

func fnAtanh(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsReal() {
		switch a := math.Abs(x.Re()); {
		case a < 1:
			return number.CheckReal(math.Atanh(x.Re()), false)
		case a == 1 || !c.complexOn:
			return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name)
		}
	}
	if z := x.Complex128(); z == 1 || z == -1 {
		return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name)
	}
	return number.CheckComplex(cmplx.Atanh(x.Complex128()), false)
}

// acoth(x) = atanh(1/x).
func fnAcoth(c *Context, name string, args []number.Value) (number.Value, error) {
	x := args[0]
	if x.IsZero() {
		if !c.complexOn {
			return number.NewInvalid(), merrors.New(merrors.InvalidFunctionArgument, name)
		}
		return number.NewComplex(0, math.Pi/2), nil
	}
	inv, err := number.Div(number.NewReal(1), x)
	if err != nil {
		return number.NewInvalid(), err
	}
	return fnAtanh(c, name, []number.Value{inv})
}
