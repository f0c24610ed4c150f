// Package errors provides the structured error type returned by the MaxCalc
// engine.
//
// Every failure of the tokenizer, parser, unit registry or evaluator is an
// EngineError carrying a Kind and zero, one or two string arguments. The
// English message is rendered from the catalog; presentation layers that
// want their own wording can switch on Kind and use Args directly.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassState      ErrorClass = "state"      // Session state (previous result)
	ClassLex        ErrorClass = "lex"        // Tokenizer errors
	ClassParse      ErrorClass = "parse"      // Structural errors
	ClassUndefined  ErrorClass = "undefined"  // Unknown functions and variables
	ClassUnit       ErrorClass = "unit"       // Unit conversion
	ClassArithmetic ErrorClass = "arithmetic" // Numeric faults
	ClassDomain     ErrorClass = "domain"     // Function domain checks
	ClassFunction   ErrorClass = "function"   // Invalid function arguments
)

// Kind identifies an error condition. The value doubles as the stable
// error code.
type Kind string

const (
	NoPreviousResult Kind = "STATE-0001"

	UnknownToken  Kind = "LEX-0001"
	InvalidNumber Kind = "LEX-0002"

	ErrorInExpression           Kind = "PARSE-0001"
	NoClosingBracket            Kind = "PARSE-0002"
	TooManyClosingBrackets      Kind = "PARSE-0003"
	InvalidVariableName         Kind = "PARSE-0004"
	InvalidUnitConversionSyntax Kind = "PARSE-0005"

	UnknownFunction Kind = "UNDEF-0001"
	UnknownVariable Kind = "UNDEF-0002"

	UnknownUnit                     Kind = "UNIT-0001"
	UnknownUnitConversion           Kind = "UNIT-0002"
	ComplexArgumentInUnitConversion Kind = "UNIT-0003"
	ComplexAngleConversion          Kind = "UNIT-0004"

	DivisionByZero             Kind = "ARITH-0001"
	DivisionImpossible         Kind = "ARITH-0002"
	ArithmeticOverflow         Kind = "ARITH-0003"
	ArithmeticUnderflow        Kind = "ARITH-0004"
	ConversionImpossible       Kind = "ARITH-0005"
	InvalidFractionalOperation Kind = "ARITH-0006"
	ArithmeticError            Kind = "ARITH-0007"

	CosArgZero           Kind = "DOMAIN-0001"
	SinArgZero           Kind = "DOMAIN-0002"
	AbsArgGreaterThanOne Kind = "DOMAIN-0003"
	CoshArgZero          Kind = "DOMAIN-0004"
	SinhArgZero          Kind = "DOMAIN-0005"

	InvalidFunctionArgument Kind = "FUNC-0001"
)

// Reasons attached to InvalidFunctionArgument.
const (
	ReasonZero              = "zero"
	ReasonNegative          = "negative number"
	ReasonZeroOrNegative    = "zero or negative number"
	ReasonPowerZeroNegative = "zero or negative number in negative degree"
	ReasonFactorial         = "negative, fractional or complex number"
	ReasonComplex           = "complex number"
	ReasonArity             = "wrong number of arguments"
)

// EngineError is the single error type produced by the engine.
type EngineError struct {
	Kind    Kind           `json:"code"`
	Class   ErrorClass     `json:"class"`
	Args    []string       `json:"args,omitempty"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based line (0 if unknown)
	Column  int            `json:"column"` // 1-based column (0 if unknown)
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return e.String()
}

// String returns the message followed by any hints, one per line.
func (e *EngineError) String() string {
	var sb strings.Builder

	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *EngineError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassLex, ClassParse:
		sb.WriteString("Syntax error")
	default:
		sb.WriteString("Error")
	}

	if e.Column > 0 {
		sb.WriteString(fmt.Sprintf(": column %d\n  ", e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// Arg returns the i-th argument or an empty string.
func (e *EngineError) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i]
}

// Is reports whether target is an *EngineError of the same kind, so that
// errors.Is(err, errors.New(errors.DivisionByZero)) works.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ToJSON returns the error as JSON bytes.
func (e *EngineError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithPosition returns a copy of the error with line and column set.
func (e *EngineError) WithPosition(line, column int) *EngineError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Params   []string // Template variable names, in argument order
	Template string   // Message when every param is supplied
	Bare     string   // Message when the last param is omitted (optional params only)
}

// ErrorCatalog maps error kinds to their definitions.
var ErrorCatalog = map[Kind]ErrorDef{
	NoPreviousResult: {
		Class:    ClassState,
		Template: "Previous result does not exist",
	},

	// ========================================
	// Tokenizer
	// ========================================
	UnknownToken: {
		Class:    ClassLex,
		Params:   []string{"Token"},
		Template: "Unknown token '{{.Token}}'",
	},
	InvalidNumber: {
		Class:    ClassLex,
		Params:   []string{"Literal"},
		Template: "Invalid number '{{.Literal}}'",
		Bare:     "Invalid number",
	},

	// ========================================
	// Parser
	// ========================================
	ErrorInExpression: {
		Class:    ClassParse,
		Template: "Error in expression",
	},
	NoClosingBracket: {
		Class:    ClassParse,
		Template: "No closing bracket",
	},
	TooManyClosingBrackets: {
		Class:    ClassParse,
		Template: "Too many closing brackets",
	},
	InvalidVariableName: {
		Class:    ClassParse,
		Template: "Invalid variable name",
	},
	InvalidUnitConversionSyntax: {
		Class:    ClassParse,
		Template: "Invalid unit conversion syntax",
	},

	// ========================================
	// Name resolution
	// ========================================
	UnknownFunction: {
		Class:    ClassUndefined,
		Params:   []string{"Name"},
		Template: "Unknown function '{{.Name}}'",
	},
	UnknownVariable: {
		Class:    ClassUndefined,
		Params:   []string{"Name"},
		Template: "Unknown variable '{{.Name}}'",
	},

	// ========================================
	// Units
	// ========================================
	UnknownUnit: {
		Class:    ClassUnit,
		Params:   []string{"Unit"},
		Template: "Unknown unit '{{.Unit}}'",
	},
	UnknownUnitConversion: {
		Class:    ClassUnit,
		Params:   []string{"Conversion"},
		Template: "There is no unit conversion '{{.Conversion}}'",
	},
	ComplexArgumentInUnitConversion: {
		Class:    ClassUnit,
		Params:   []string{"Conversion"},
		Template: "Complex argument in unit conversion '{{.Conversion}}'",
	},
	ComplexAngleConversion: {
		Class:    ClassUnit,
		Params:   []string{"Name"},
		Template: "Invalid argument of function '{{.Name}}' (cannot convert complex angle from/to radians)",
		Bare:     "Cannot convert complex angle from/to radians",
	},

	// ========================================
	// Arithmetic
	// ========================================
	DivisionByZero: {
		Class:    ClassArithmetic,
		Template: "Division by zero",
	},
	DivisionImpossible: {
		Class:    ClassArithmetic,
		Template: "Division impossible",
	},
	ArithmeticOverflow: {
		Class:    ClassArithmetic,
		Template: "Arithmetic overflow",
	},
	ArithmeticUnderflow: {
		Class:    ClassArithmetic,
		Template: "Arithmetic underflow",
	},
	ConversionImpossible: {
		Class:    ClassArithmetic,
		Template: "Conversion impossible",
	},
	InvalidFractionalOperation: {
		Class:    ClassArithmetic,
		Template: "Invalid operation on fractional number",
	},
	ArithmeticError: {
		Class:    ClassArithmetic,
		Template: "Arithmetic error",
	},

	// ========================================
	// Function domains
	// ========================================
	CosArgZero: {
		Class:    ClassDomain,
		Params:   []string{"Name"},
		Template: "Invalid argument of function '{{.Name}}' (cos(argument) = 0)",
	},
	SinArgZero: {
		Class:    ClassDomain,
		Params:   []string{"Name"},
		Template: "Invalid argument of function '{{.Name}}' (sin(argument) = 0)",
	},
	AbsArgGreaterThanOne: {
		Class:    ClassDomain,
		Params:   []string{"Name"},
		Template: "Invalid argument of function '{{.Name}}' (abs(argument) > 1)",
	},
	CoshArgZero: {
		Class:    ClassDomain,
		Params:   []string{"Name"},
		Template: "Invalid argument of function '{{.Name}}' (cosh(argument) = 0)",
	},
	SinhArgZero: {
		Class:    ClassDomain,
		Params:   []string{"Name"},
		Template: "Invalid argument of function '{{.Name}}' (sinh(argument) = 0)",
	},
	InvalidFunctionArgument: {
		Class:    ClassFunction,
		Params:   []string{"Name", "Reason"},
		Template: "Invalid argument of function '{{.Name}}' ({{.Reason}})",
		Bare:     "Invalid argument of function '{{.Name}}'",
	},
}

// New creates an EngineError from the catalog. Extra arguments beyond the
// kind's params are dropped; a missing optional argument selects the bare
// template. Unknown kinds fall back to ErrorInExpression.
func New(kind Kind, args ...string) *EngineError {
	def, ok := ErrorCatalog[kind]
	if !ok {
		def = ErrorCatalog[ErrorInExpression]
		kind = ErrorInExpression
		args = nil
	}

	if len(args) > len(def.Params) {
		args = args[:len(def.Params)]
	}

	data := make(map[string]any, len(def.Params))
	for i, param := range def.Params {
		if i < len(args) {
			data[param] = args[i]
		} else {
			data[param] = ""
		}
	}

	tmpl := def.Template
	if len(args) < len(def.Params) && def.Bare != "" {
		tmpl = def.Bare
	}

	var stored []string
	if len(args) > 0 {
		stored = append(stored, args...)
	}

	return &EngineError{
		Kind:    kind,
		Class:   def.Class,
		Args:    stored,
		Message: renderTemplate(tmpl, data),
		Data:    data,
	}
}

// NewWithPosition creates an EngineError with position information.
func NewWithPosition(kind Kind, line, column int, args ...string) *EngineError {
	err := New(kind, args...)
	err.Line = line
	err.Column = column
	return err
}

// As extracts an *EngineError from err. Errors of any other type are
// wrapped as ErrorInExpression, the designated fallback.
func As(err error) *EngineError {
	if err == nil {
		return nil
	}
	if e, ok := err.(*EngineError); ok {
		return e
	}
	return New(ErrorInExpression)
}

// KindOf returns the kind of err, or "" if err is nil or not an
// *EngineError.
func KindOf(err error) Kind {
	if e, ok := err.(*EngineError); ok && e != nil {
		return e.Kind
	}
	return ""
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if len(data) == 0 && !strings.Contains(tmplStr, "{{") {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}

	return prev[len(rb)]
}

// threshold returns the maximum edit distance accepted for an input.
// Short words (1-3): 1 edit, medium (4-6): 2, longer: 3.
func threshold(input string) int {
	n := len([]rune(input))
	switch {
	case n >= 7:
		return 3
	case n >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch finds the closest candidate to input, ignoring case.
// Returns "" if there is no candidate within the threshold or the input
// matches a candidate exactly.
func FindClosestMatch(input string, candidates []string) string {
	if input == "" || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	bestMatch := ""
	bestDistance := -1
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > threshold(input) {
		return ""
	}
	return bestMatch
}

// FindTopMatches returns up to n candidates within the threshold, closest
// first.
func FindTopMatches(input string, candidates []string, n int) []string {
	if input == "" || len(candidates) == 0 || n <= 0 {
		return nil
	}

	type match struct {
		value    string
		distance int
	}

	inputLower := strings.ToLower(input)
	limit := threshold(input)

	var matches []match
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if dist > 0 && dist <= limit {
			matches = append(matches, match{candidate, dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// NewUnknownFunction creates an UnknownFunction error with a "did you mean"
// hint drawn from the known function names.
func NewUnknownFunction(name string, known []string) *EngineError {
	err := New(UnknownFunction, name)
	if suggestion := FindClosestMatch(name, known); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}

// NewUnknownVariable creates an UnknownVariable error with a "did you mean"
// hint drawn from the defined variable and constant names.
func NewUnknownVariable(name string, known []string) *EngineError {
	err := New(UnknownVariable, name)
	if suggestion := FindClosestMatch(name, known); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
