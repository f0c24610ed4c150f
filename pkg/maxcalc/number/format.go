package number

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	xnumber "golang.org/x/text/number"
)

const (
	// MaxPrecision is the number of significant digits a float64 can carry.
	MaxPrecision = 17
	// DefaultPrecision is the output precision used when none is set.
	DefaultPrecision = 15
)

// Format controls how values are rendered as text.
type Format struct {
	Precision        int  // Significant digits, 1..MaxPrecision
	DecimalSeparator rune // '.' or ','
	ImaginaryUnit    rune // 'i' or 'j'
}

// DefaultFormat returns the default output format.
func DefaultFormat() Format {
	return Format{
		Precision:        DefaultPrecision,
		DecimalSeparator: '.',
		ImaginaryUnit:    'i',
	}
}

func (f Format) normalized() Format {
	if f.Precision < 1 || f.Precision > MaxPrecision {
		f.Precision = DefaultPrecision
	}
	if f.DecimalSeparator != ',' {
		f.DecimalSeparator = '.'
	}
	if f.ImaginaryUnit != 'j' {
		f.ImaginaryUnit = 'i'
	}
	return f
}

// String renders v with the default format.
func (v Value) String() string {
	return DefaultFormat().Value(v)
}

// Value renders v.
func (f Format) Value(v Value) string {
	f = f.normalized()

	switch v.kind {
	case Real:
		return f.real(v.re)
	case Complex:
		return f.complex(v.re, v.im)
	default:
		return "invalid"
	}
}

func (f Format) real(x float64) string {
	if x == 0 {
		return "0" // also drops the sign of -0
	}

	s := strconv.FormatFloat(x, 'g', f.Precision, 64)

	// 1e+21 -> 1e21, 1e-07 -> 1e-7
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		mantissa, exp := s[:i], s[i+1:]
		sign := ""
		if exp[0] == '-' {
			sign = "-"
		}
		exp = strings.TrimLeft(exp[1:], "0")
		if exp == "" {
			exp = "0"
		}
		s = mantissa + "e" + sign + exp
	}

	if f.DecimalSeparator != '.' {
		s = strings.Replace(s, ".", string(f.DecimalSeparator), 1)
	}
	return s
}

func (f Format) complex(re, im float64) string {
	var sb strings.Builder

	if re != 0 {
		sb.WriteString(f.real(re))
		if im > 0 || math.IsNaN(im) {
			sb.WriteByte('+')
		}
	}

	switch {
	case im == 1:
	case im == -1:
		sb.WriteByte('-')
	default:
		sb.WriteString(f.real(im))
	}
	sb.WriteRune(f.ImaginaryUnit)

	return sb.String()
}

// DecimalSeparatorFor returns the decimal separator conventionally used
// by a BCP 47 locale ("en" -> '.', "ru" -> ','). Unknown locales use '.'.
func DecimalSeparatorFor(locale string) rune {
	tag, err := language.Parse(locale)
	if err != nil {
		return '.'
	}

	p := message.NewPrinter(tag)
	s := p.Sprint(xnumber.Decimal(1.5))
	for _, r := range s {
		if !unicode.IsDigit(r) {
			if r == ',' {
				return ','
			}
			return '.'
		}
	}
	return '.'
}
