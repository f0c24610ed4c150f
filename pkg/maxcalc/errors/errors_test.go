package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_Messages(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		args     []string
		expected string
	}{
		{"no args", NoPreviousResult, nil, "Previous result does not exist"},
		{"one arg", UnknownToken, []string{"$"}, "Unknown token '$'"},
		{"optional literal present", InvalidNumber, []string{"1.2.3"}, "Invalid number '1.2.3'"},
		{"optional literal absent", InvalidNumber, nil, "Invalid number"},
		{"function with reason", InvalidFunctionArgument, []string{"ln", ReasonZero}, "Invalid argument of function 'ln' (zero)"},
		{"function without reason", InvalidFunctionArgument, []string{"acosh"}, "Invalid argument of function 'acosh'"},
		{"cos denominator", CosArgZero, []string{"tan"}, "Invalid argument of function 'tan' (cos(argument) = 0)"},
		{"unit conversion", UnknownUnitConversion, []string{"km->kg"}, "There is no unit conversion 'km->kg'"},
		{"complex angle bare", ComplexAngleConversion, nil, "Cannot convert complex angle from/to radians"},
		{"extra args dropped", DivisionByZero, []string{"x"}, "Division by zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.kind, tt.args...)
			if err.Message != tt.expected {
				t.Errorf("Message = %q, want %q", err.Message, tt.expected)
			}
			if err.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", err.Kind, tt.kind)
			}
			if len(err.Args) > 2 {
				t.Errorf("Args has %d entries, want at most 2", len(err.Args))
			}
		})
	}
}

func TestNew_UnknownKindFallsBack(t *testing.T) {
	err := New(Kind("NOPE-0001"), "x")
	if err.Kind != ErrorInExpression {
		t.Errorf("Kind = %q, want %q", err.Kind, ErrorInExpression)
	}
	if err.Message != "Error in expression" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestCatalogIsComplete(t *testing.T) {
	kinds := []Kind{
		NoPreviousResult, UnknownToken, InvalidNumber, ErrorInExpression,
		NoClosingBracket, TooManyClosingBrackets, UnknownFunction, UnknownVariable,
		InvalidVariableName, InvalidUnitConversionSyntax, UnknownUnit,
		UnknownUnitConversion, ComplexArgumentInUnitConversion, DivisionByZero,
		DivisionImpossible, ArithmeticOverflow, ArithmeticUnderflow,
		ConversionImpossible, InvalidFractionalOperation, ArithmeticError,
		CosArgZero, SinArgZero, AbsArgGreaterThanOne, CoshArgZero, SinhArgZero,
		ComplexAngleConversion, InvalidFunctionArgument,
	}

	for _, k := range kinds {
		def, ok := ErrorCatalog[k]
		if !ok {
			t.Errorf("kind %s missing from catalog", k)
			continue
		}
		if len(def.Params) > 2 {
			t.Errorf("kind %s has %d params, want at most 2", k, len(def.Params))
		}
		if strings.Contains(New(k).Message, "<no value>") {
			t.Errorf("kind %s renders a missing value", k)
		}
	}
}

func TestEngineError_String(t *testing.T) {
	err := New(UnknownVariable, "foo")
	err.Hints = []string{"Did you mean `for`?"}

	expected := "Unknown variable 'foo'\n  Did you mean `for`?"
	if got := err.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}
	if err.Error() != err.String() {
		t.Errorf("Error() and String() differ")
	}
}

func TestEngineError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *EngineError
		contains []string
	}{
		{
			name:     "syntax error with column",
			err:      NewWithPosition(NoClosingBracket, 1, 5),
			contains: []string{"Syntax error", "column 5", "No closing bracket"},
		},
		{
			name:     "runtime error",
			err:      New(DivisionByZero),
			contains: []string{"Error:", "Division by zero"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestEngineError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(DivisionByZero))
	if !stderrors.Is(err, New(DivisionByZero)) {
		t.Error("expected errors.Is to match same kind")
	}
	if stderrors.Is(err, New(ArithmeticOverflow)) {
		t.Error("expected errors.Is not to match a different kind")
	}
}

func TestAsAndKindOf(t *testing.T) {
	if As(nil) != nil {
		t.Error("As(nil) should be nil")
	}
	if got := As(stderrors.New("boom")); got.Kind != ErrorInExpression {
		t.Errorf("As(foreign) kind = %q", got.Kind)
	}
	if got := KindOf(New(SinArgZero, "cot")); got != SinArgZero {
		t.Errorf("KindOf = %q", got)
	}
	if got := KindOf(stderrors.New("boom")); got != "" {
		t.Errorf("KindOf(foreign) = %q", got)
	}
}

func TestEngineError_ToJSON(t *testing.T) {
	err := NewWithPosition(UnknownFunction, 1, 1, "foo")
	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON() error: %v", jerr)
	}

	var decoded map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("invalid JSON: %v", jerr)
	}
	if decoded["code"] != string(UnknownFunction) {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["class"] != string(ClassUndefined) {
		t.Errorf("class = %v", decoded["class"])
	}
}

func TestFindClosestMatch(t *testing.T) {
	candidates := []string{"sin", "sinh", "sqrt", "asin", "factorial"}

	tests := []struct {
		input    string
		expected string
	}{
		{"sinn", "sin"},
		{"sqr", "sqrt"},
		{"factorail", "factorial"},
		{"sin", ""}, // exact match
		{"xyzzy", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FindClosestMatch(tt.input, candidates); got != tt.expected {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindTopMatches(t *testing.T) {
	got := FindTopMatches("cosh", []string{"cos", "cosh", "coth", "sinh", "tanh"}, 3)
	if len(got) == 0 || got[0] != "cos" && got[0] != "coth" {
		t.Errorf("FindTopMatches = %v", got)
	}
	for _, m := range got {
		if m == "cosh" {
			t.Errorf("exact match should be excluded: %v", got)
		}
	}
}

func TestNewUnknownFunction_Hint(t *testing.T) {
	err := NewUnknownFunction("sinn", []string{"sin", "cos"})
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "sin") {
		t.Errorf("Hints = %v", err.Hints)
	}

	err = NewUnknownVariable("qqqqqq", []string{"pi", "e"})
	if len(err.Hints) != 0 {
		t.Errorf("expected no hint, got %v", err.Hints)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
		{"π", "p", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
