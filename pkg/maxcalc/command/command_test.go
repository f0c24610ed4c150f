package command

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Mishamax/maxcalc/pkg/maxcalc/evaluator"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
)

func newSession() *Session {
	f := number.DefaultFormat()
	return &Session{Context: evaluator.NewContext(), Format: &f, Version: "1.2.3"}
}

func run(t *testing.T, s *Session, input string) (Result, string) {
	t.Helper()
	var out bytes.Buffer
	r := Execute(input, s, &out)
	return r, out.String()
}

func TestExecuteResults(t *testing.T) {
	tests := []struct {
		input    string
		expected Result
	}{
		{"2 + 2", NoCommand},
		{"", NoCommand},
		{"exit", Exit},
		{"  QUIT ", Exit},
		{"exit + 1", NoCommand},
		{"help", Parsed},
		{"#help", Parsed},
		{"#funcs", Parsed},
		{"#FUNC", Parsed},
		{"#convs", Parsed},
		{"#consts", Parsed},
		{"#vars", Parsed},
		{"#ver", Parsed},
		{"#bogus", Parsed},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, _ := run(t, newSession(), tt.input)
			if r != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, r)
			}
		})
	}
}

func TestUnknownCommandKeepsSession(t *testing.T) {
	_, out := run(t, newSession(), "#frobnicate now")
	if !strings.Contains(out, "Unknown command '#frobnicate'") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAngleCommand(t *testing.T) {
	s := newSession()

	_, out := run(t, s, "#angle")
	if !strings.Contains(out, "radians") {
		t.Errorf("expected radians, got %q", out)
	}

	run(t, s, "#angle deg")
	if s.Context.AngleMode() != evaluator.Degrees {
		t.Fatalf("expected degrees, got %s", s.Context.AngleMode())
	}

	_, out = run(t, s, "#angle turns")
	if !strings.Contains(out, "Unknown parameter 'turns'") {
		t.Errorf("unexpected output %q", out)
	}
	if s.Context.AngleMode() != evaluator.Degrees {
		t.Error("a bad parameter must not change the angle mode")
	}
}

func TestOutputCommand(t *testing.T) {
	s := newSession()

	run(t, s, "#output , j 5")
	if s.Format.DecimalSeparator != ',' || s.Format.ImaginaryUnit != 'j' || s.Format.Precision != 5 {
		t.Fatalf("unexpected format %+v", *s.Format)
	}
	if got := s.Format.Value(number.NewComplex(1.5, 2)); got != "1,5+2j" {
		t.Errorf("expected 1,5+2j, got %s", got)
	}

	_, out := run(t, s, "#output 99")
	if !strings.Contains(out, "Unknown parameter '99'") {
		t.Errorf("unexpected output %q", out)
	}

	run(t, s, "#output default")
	if *s.Format != number.DefaultFormat() {
		t.Errorf("expected default format, got %+v", *s.Format)
	}
}

func TestComplexCommand(t *testing.T) {
	s := newSession()

	run(t, s, "#complex off")
	if s.Context.ComplexEnabled() {
		t.Fatal("expected complex numbers off")
	}
	_, out := run(t, s, "#complex")
	if !strings.Contains(out, "off") {
		t.Errorf("unexpected output %q", out)
	}
	_, out = run(t, s, "#complex maybe")
	if !strings.Contains(out, "Unknown parameter 'maybe'") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestVariableCommands(t *testing.T) {
	s := newSession()
	for _, expr := range []string{"x = 1", "Y = 2.5"} {
		if _, err := s.Context.Evaluate(expr); err != nil {
			t.Fatalf("%s: %v", expr, err)
		}
	}

	_, out := run(t, s, "#vars")
	if !strings.Contains(out, "x = 1") || !strings.Contains(out, "Y = 2.5") {
		t.Errorf("unexpected listing %q", out)
	}

	_, out = run(t, s, "#del y res pi z")
	for _, want := range []string{
		"Variable 'y' deleted",
		"Cannot delete built-in 'res'",
		"Cannot delete built-in 'pi'",
		"Unknown variable 'z'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if len(s.Context.ListVariables()) != 1 {
		t.Fatalf("expected one variable left, got %d", len(s.Context.ListVariables()))
	}

	run(t, s, "#delete")
	_, out = run(t, s, "#var")
	if !strings.Contains(out, "No variables") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestListings(t *testing.T) {
	s := newSession()

	_, out := run(t, s, "#funcs")
	for _, want := range []string{"sqrt(x)", "pow(x; y)", "tan(x) [tg]", "Trigonometric:"} {
		if !strings.Contains(out, want) {
			t.Errorf("#funcs missing %q", want)
		}
	}

	_, out = run(t, s, "#convs")
	if !strings.Contains(out, "km") || !strings.Contains(out, "5 km to mi") {
		t.Errorf("#convs output incomplete: %q", out)
	}

	_, out = run(t, s, "#consts")
	if !strings.Contains(out, "3.14159265358979") {
		t.Errorf("#consts missing pi: %q", out)
	}

	s.Context.SetComplexEnabled(false)
	_, out = run(t, s, "#consts")
	if strings.Contains(out, "Imaginary unit") {
		t.Errorf("imaginary constants listed in real mode: %q", out)
	}

	_, out = run(t, s, "#version")
	if strings.TrimSpace(out) != "MaxCalc 1.2.3" {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	for _, want := range []string{"#funcs", "#del", "exit"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Names() missing %s", want)
		}
	}
}
