// Package command implements the host commands of the calculator: the
// '#' directives that inspect and change session settings, plus the bare
// words help, exit and quit.
package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Mishamax/maxcalc/pkg/maxcalc/evaluator"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
)

// Result tells the host what happened to a line of input.
type Result int

const (
	// NoCommand means the input is an expression and should be evaluated.
	NoCommand Result = iota
	// Parsed means the input was a command and has been handled.
	Parsed
	// Exit means the user asked to leave.
	Exit
)

func (r Result) String() string {
	switch r {
	case Parsed:
		return "parsed"
	case Exit:
		return "exit"
	default:
		return "no-command"
	}
}

// Session is the state commands act on.
type Session struct {
	Context *evaluator.Context
	Format  *number.Format
	Version string
}

type handler func(s *Session, args []string, out io.Writer)

type command struct {
	names []string
	usage string
	help  string
	run   handler
}

var commands []command

func init() {
	commands = []command{
		{[]string{"#funcs", "#func"}, "#funcs", "List functions", listFunctions},
		{[]string{"#convs", "#conv"}, "#convs", "List unit conversions", listConversions},
		{[]string{"#consts", "#const"}, "#consts", "List constants", listConstants},
		{[]string{"#vars", "#var"}, "#vars", "List variables", listVariables},
		{[]string{"#delete", "#del"}, "#del [names...]", "Delete variables (all when no names given)", deleteVariables},
		{[]string{"#angle"}, "#angle [rad|deg|grad]", "Show or set the angle unit", angle},
		{[]string{"#output"}, "#output [,|.|i|j|<precision>|default]", "Show or set output format", output},
		{[]string{"#complex"}, "#complex [on|off]", "Show or switch complex numbers", complexMode},
		{[]string{"#version", "#ver"}, "#ver", "Show version", version},
		{[]string{"#help"}, "#help", "Show this help", help},
	}
}

// Execute handles input if it is a command. Output is written to out.
// Unknown commands and parameters print a message and return Parsed, so
// the session carries on.
func Execute(input string, s *Session, out io.Writer) Result {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return NoCommand
	}

	name := strings.ToLower(fields[0])
	switch name {
	case "exit", "quit":
		if len(fields) == 1 {
			return Exit
		}
		return NoCommand
	case "help":
		if len(fields) == 1 {
			help(s, nil, out)
			return Parsed
		}
		return NoCommand
	}

	if !strings.HasPrefix(name, "#") {
		return NoCommand
	}

	for _, c := range commands {
		for _, n := range c.names {
			if n == name {
				c.run(s, fields[1:], out)
				return Parsed
			}
		}
	}

	fmt.Fprintf(out, "Unknown command '%s'\n", fields[0])
	return Parsed
}

// Names returns every command spelling, for completion.
func Names() []string {
	names := []string{"help", "exit", "quit"}
	for _, c := range commands {
		names = append(names, c.names...)
	}
	return names
}

func unknownParameter(out io.Writer, p string) {
	fmt.Fprintf(out, "Unknown parameter '%s'\n", p)
}

func help(_ *Session, _ []string, out io.Writer) {
	fmt.Fprintln(out, "Enter an expression to evaluate it, e.g. 2 + 2 or sin(pi/2).")
	fmt.Fprintln(out, "Assign with = += -= *= /= ^=; use res (or ans) for the last result.")
	fmt.Fprintln(out, "Convert units with 'to', '->' or [from->to]: 5 km to mi.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")

	width := 0
	for _, c := range commands {
		if len(c.usage) > width {
			width = len(c.usage)
		}
	}
	for _, c := range commands {
		fmt.Fprintf(out, "  %-*s  %s\n", width, c.usage, c.help)
	}
	fmt.Fprintf(out, "  %-*s  %s\n", width, "exit, quit", "Leave")
}

func listFunctions(s *Session, _ []string, out io.Writer) {
	category := ""
	for _, f := range s.Context.Functions().All() {
		if f.Category != category {
			if category != "" {
				fmt.Fprintln(out, "")
			}
			category = f.Category
			fmt.Fprintf(out, "%s:\n", strings.ToUpper(category[:1])+category[1:])
		}

		params := "x"
		if f.Arity == 2 {
			params = "x; y"
		}
		signature := fmt.Sprintf("%s(%s)", f.Name, params)
		if len(f.Aliases) > 0 {
			signature += " [" + strings.Join(f.Aliases, ", ") + "]"
		}
		fmt.Fprintf(out, "  %-40s %s\n", signature, f.Description)
	}
}

func listConversions(s *Session, _ []string, out io.Writer) {
	reg := s.Context.Units()
	for i, cat := range reg.Categories() {
		if i > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "%s:\n", cat)
		for _, u := range reg.Units(cat) {
			name := u.Name
			if len(u.Aliases) > 0 {
				name += " [" + strings.Join(u.Aliases, ", ") + "]"
			}
			fmt.Fprintf(out, "  %-36s %s\n", name, u.Description)
		}
	}
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Usage: 5 km to mi, 5 km -> mi, 5 [km->mi]")
}

func listConstants(s *Session, _ []string, out io.Writer) {
	for _, k := range evaluator.Constants() {
		if k.Value.IsComplex() && !s.Context.ComplexEnabled() {
			continue
		}
		fmt.Fprintf(out, "  %-4s = %-20s %s\n", k.Name, s.Format.Value(k.Value), k.Description)
	}
	fmt.Fprintln(out, "  res, result, ans: result of the last evaluation")
}

func listVariables(s *Session, _ []string, out io.Writer) {
	vars := s.Context.ListVariables()
	if len(vars) == 0 {
		fmt.Fprintln(out, "No variables")
		return
	}
	for _, v := range vars {
		fmt.Fprintf(out, "  %s = %s\n", v.Name, s.Format.Value(v.Value))
	}
}

func deleteVariables(s *Session, args []string, out io.Writer) {
	if len(args) == 0 {
		s.Context.DeleteAllVariables()
		fmt.Fprintln(out, "All variables deleted")
		return
	}

	for _, name := range args {
		switch {
		case evaluator.IsBuiltinName(name):
			fmt.Fprintf(out, "Cannot delete built-in '%s'\n", name)
		case s.Context.DeleteVariable(name):
			fmt.Fprintf(out, "Variable '%s' deleted\n", name)
		default:
			fmt.Fprintf(out, "Unknown variable '%s'\n", name)
		}
	}
}

func angle(s *Session, args []string, out io.Writer) {
	if len(args) > 1 {
		unknownParameter(out, strings.Join(args[1:], " "))
		return
	}
	if len(args) == 1 {
		mode, err := evaluator.ParseAngleMode(args[0])
		if err != nil {
			unknownParameter(out, args[0])
			return
		}
		s.Context.SetAngleMode(mode)
	}
	fmt.Fprintf(out, "Angle unit: %s\n", s.Context.AngleMode())
}

func output(s *Session, args []string, out io.Writer) {
	for _, a := range args {
		switch strings.ToLower(a) {
		case ".", ",":
			s.Format.DecimalSeparator = rune(a[0])
		case "i", "j":
			s.Format.ImaginaryUnit = rune(strings.ToLower(a)[0])
		case "default":
			*s.Format = number.DefaultFormat()
		default:
			p, err := strconv.Atoi(a)
			if err != nil || p < 1 || p > number.MaxPrecision {
				unknownParameter(out, a)
				return
			}
			s.Format.Precision = p
		}
	}

	fmt.Fprintf(out, "Precision: %d\n", s.Format.Precision)
	fmt.Fprintf(out, "Decimal separator: '%c'\n", s.Format.DecimalSeparator)
	fmt.Fprintf(out, "Imaginary unit: %c\n", s.Format.ImaginaryUnit)
}

func complexMode(s *Session, args []string, out io.Writer) {
	if len(args) > 1 {
		unknownParameter(out, strings.Join(args[1:], " "))
		return
	}
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on", "true", "1":
			s.Context.SetComplexEnabled(true)
		case "off", "false", "0":
			s.Context.SetComplexEnabled(false)
		default:
			unknownParameter(out, args[0])
			return
		}
	}

	state := "off"
	if s.Context.ComplexEnabled() {
		state = "on"
	}
	fmt.Fprintf(out, "Complex numbers: %s\n", state)
}

func version(s *Session, _ []string, out io.Writer) {
	v := s.Version
	if v == "" {
		v = "dev"
	}
	fmt.Fprintf(out, "MaxCalc %s\n", v)
}
