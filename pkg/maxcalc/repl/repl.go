// Package repl implements the interactive calculator shell.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/Mishamax/maxcalc/pkg/maxcalc/command"
	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/maxcalc"
)

const PROMPT = "> "
const CONTINUATION_PROMPT = ".. "

const LOGO = `
█▀▄▀█ ▄▀█ ▀▄▀ █▀▀ ▄▀█ █░░ █▀▀
█░▀░█ █▀█ █░█ █▄▄ █▀█ █▄▄ █▄▄`

// Options configures a shell session.
type Options struct {
	Version     string
	HistoryFile string // Empty means <tmp>/.maxcalc_history
	Color       bool
}

// printer renders results and errors, optionally in color.
type printer struct {
	out    io.Writer
	result *color.Color
	err    *color.Color
	hint   *color.Color
}

func newPrinter(out io.Writer, useColor bool) *printer {
	p := &printer{
		out:    out,
		result: color.New(color.FgGreen, color.Bold),
		err:    color.New(color.FgRed),
		hint:   color.New(color.FgYellow),
	}
	if !useColor {
		p.result.DisableColor()
		p.err.DisableColor()
		p.hint.DisableColor()
	} else {
		p.result.EnableColor()
		p.err.EnableColor()
		p.hint.EnableColor()
	}
	return p
}

func (p *printer) printResult(s string) {
	p.result.Fprintln(p.out, s)
}

// printError prints an engine error with a caret under the offending
// column when the position is known.
func (p *printer) printError(input string, err error) {
	e := merrors.As(err)
	if e == nil {
		p.err.Fprintf(p.out, "Error: %v\n", err)
		return
	}

	if e.Column > 0 && !strings.Contains(input, "\n") {
		fmt.Fprintf(p.out, "  %s\n", input)
		fmt.Fprintf(p.out, "  %s^\n", strings.Repeat(" ", e.Column-1))
	}

	header := "Error"
	switch e.Class {
	case merrors.ClassLex, merrors.ClassParse:
		header = "Syntax error"
	}
	p.err.Fprintf(p.out, "%s: %s\n", header, e.Message)
	for _, hint := range e.Hints {
		p.hint.Fprintf(p.out, "  %s\n", hint)
	}
}

// handleLine processes one complete input. It returns true when the user
// asked to leave.
func handleLine(eng *maxcalc.Engine, input string, p *printer) bool {
	switch eng.Execute(input, p.out) {
	case command.Exit:
		return true
	case command.Parsed:
		return false
	}

	result, err := eng.EvalString(input)
	if err != nil {
		p.printError(input, err)
		return false
	}
	p.printResult(result)
	return false
}

// Start starts the REPL with line editing, history, and tab completion
func Start(out io.Writer, eng *maxcalc.Engine, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	// Set up tab completion
	line.SetCompleter(func(line string) []string {
		return filterCompletions(line, eng.Completions())
	})

	// Load command history from file
	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".maxcalc_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	// Save history on exit
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	p := newPrinter(out, opts.Color)

	fmt.Fprintln(out, LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type 'help' for commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := PROMPT
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			// Ctrl+D or Ctrl+C
			if errors.Is(err, liner.ErrPromptAborted) {
				// Ctrl+C - clear any buffered input and return to main prompt
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				// Ctrl+D - exit
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		// Skip empty lines when no input buffered
		if inputBuffer.Len() == 0 && strings.TrimSpace(input) == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString(" ")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}
		inputBuffer.Reset()

		line.AppendHistory(fullInput)

		if handleLine(eng, strings.TrimSpace(fullInput), p) {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
	}
}

// Run evaluates lines from r without line editing, for piped input. Each
// line is a separate expression. It stops at EOF or on exit/quit.
func Run(r io.Reader, out io.Writer, eng *maxcalc.Engine, opts Options) error {
	p := newPrinter(out, opts.Color)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if handleLine(eng, text, p) {
			return nil
		}
	}
	return scanner.Err()
}

// filterCompletions returns full-line completions for the word being typed
func filterCompletions(line string, words []string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	// Find the start of the last word
	start := len(line)
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	lastWord := line[start:]
	if lastWord == "" {
		return nil
	}

	prefix := strings.ToLower(lastWord)
	var matches []string
	for _, word := range words {
		if strings.HasPrefix(strings.ToLower(word), prefix) && word != lastWord {
			matches = append(matches, line[:start]+word)
		}
	}
	return matches
}

func isWordChar(ch byte) bool {
	return ch == '_' || ch == '#' || ch == '/' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
		ch >= 0x80
}

// needsMoreInput checks if the input has unclosed parentheses or brackets
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return false
	}

	parenCount := 0
	bracketCount := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '(':
			parenCount++
		case ')':
			parenCount--
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		}
	}

	// Need more input if any are unclosed
	return parenCount > 0 || bracketCount > 0
}
