// Package maxcalc provides the public API for embedding the calculator.
//
// An Engine owns an evaluation context and serializes access to it, so a
// single Engine can be shared between goroutines. Evaluations are
// transactional: a failed or cancelled expression leaves variables,
// settings and the previous result exactly as they were.
package maxcalc

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Mishamax/maxcalc/journal"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/command"
	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/evaluator"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/units"
)

// Journal records evaluations. *journal.Journal satisfies it.
type Journal interface {
	Record(journal.Entry) error
}

// Settings are the user-adjustable parts of an Engine.
type Settings struct {
	AngleMode evaluator.AngleMode
	Complex   bool
	Format    number.Format
}

// DefaultSettings returns radians, complex numbers on and the default
// output format.
func DefaultSettings() Settings {
	return Settings{
		AngleMode: evaluator.Radians,
		Complex:   true,
		Format:    number.DefaultFormat(),
	}
}

// Engine evaluates expressions. It is safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	ctx     *evaluator.Context
	format  number.Format
	version string
	logger  Logger
	journal Journal
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithJournal records every evaluation in j.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithVersion sets the version reported by the #ver command.
func WithVersion(v string) Option {
	return func(e *Engine) { e.version = v }
}

// WithSettings applies initial settings.
func WithSettings(s Settings) Option {
	return func(e *Engine) { e.apply(s) }
}

// WithUnits replaces the unit registry, e.g. one extended with
// user-defined conversions.
func WithUnits(r *units.Registry) Option {
	return func(e *Engine) { e.ctx.SetUnits(r) }
}

// New creates an Engine with default settings.
func New(opts ...Option) *Engine {
	e := &Engine{
		ctx:    evaluator.NewContext(),
		format: number.DefaultFormat(),
		logger: NullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval evaluates one expression.
func (e *Engine) Eval(input string) (number.Value, error) {
	return e.EvalContext(context.Background(), input)
}

// EvalContext evaluates one expression on a copy of the engine state in a
// separate goroutine. If ctx is done first, the copy is discarded and
// ctx.Err() is returned; the engine state is unchanged.
func (e *Engine) EvalContext(ctx context.Context, input string) (number.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return number.NewInvalid(), err
	}

	type outcome struct {
		value number.Value
		err   error
	}

	work := e.ctx.Clone()
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		v, err := evaluator.Evaluate(input, work)
		done <- outcome{v, err}
	}()

	select {
	case <-ctx.Done():
		e.logger.Debug("eval %q cancelled after %s", input, time.Since(start))
		return number.NewInvalid(), ctx.Err()
	case out := <-done:
		if out.err != nil {
			e.logger.Debug("eval %q failed: %s", input, merrors.KindOf(out.err))
			e.record(input, "", out.err)
			return out.value, out.err
		}
		e.ctx = work
		result := e.format.Value(out.value)
		e.logger.Debug("eval %q = %s (%s)", input, result, time.Since(start))
		e.record(input, result, nil)
		return out.value, nil
	}
}

// EvalString evaluates input and formats the result with the current
// output settings.
func (e *Engine) EvalString(input string) (string, error) {
	v, err := e.Eval(input)
	if err != nil {
		return "", err
	}
	return e.Format(v), nil
}

func (e *Engine) record(input, result string, err error) {
	if e.journal == nil {
		return
	}

	entry := journal.Entry{Expression: input, Result: result}
	if err != nil {
		if ee := merrors.As(err); ee != nil {
			entry.ErrorCode = string(ee.Kind)
			entry.Message = ee.Message
		} else {
			entry.ErrorCode = "ERROR"
			entry.Message = err.Error()
		}
	}

	if jerr := e.journal.Record(entry); jerr != nil {
		e.logger.Warn("journal: %v", jerr)
	}
}

// Execute runs input as a host command (see package command), writing any
// output to out. It returns command.NoCommand when input is an expression.
func (e *Engine) Execute(input string, out io.Writer) command.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &command.Session{Context: e.ctx, Format: &e.format, Version: e.version}
	return command.Execute(input, s, out)
}

// Format renders v with the current output settings.
func (e *Engine) Format(v number.Value) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.format.Value(v)
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Settings{
		AngleMode: e.ctx.AngleMode(),
		Complex:   e.ctx.ComplexEnabled(),
		Format:    e.format,
	}
}

// Apply replaces the current settings. Variables and the previous result
// are kept.
func (e *Engine) Apply(s Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.apply(s)
}

func (e *Engine) apply(s Settings) {
	e.ctx.SetAngleMode(s.AngleMode)
	e.ctx.SetComplexEnabled(s.Complex)
	e.format = s.Format
}

// SetVariable assigns a variable directly.
func (e *Engine) SetVariable(name string, v number.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.SetVariable(name, v)
}

// Variables returns the defined variables sorted by name.
func (e *Engine) Variables() []evaluator.Variable {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.ListVariables()
}

// Functions returns the built-in functions in listing order.
func (e *Engine) Functions() []*evaluator.Function {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.Functions().All()
}

// Units returns a copy of the unit registry. Changes to the copy do not
// reach the engine; build a new Engine with WithUnits instead.
func (e *Engine) Units() *units.Registry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.Units().Clone()
}

// Completions returns every name a user might type: functions and their
// aliases, constants, variables, units and commands. The list is sorted
// and free of duplicates.
func (e *Engine) Completions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}

	add(e.ctx.Functions().AllNames()...)
	for _, k := range evaluator.Constants() {
		add(k.Name)
	}
	add("res", "result", "ans", "to")
	for _, v := range e.ctx.ListVariables() {
		add(v.Name)
	}
	add(e.ctx.Units().Names()...)
	add(command.Names()...)

	sort.Strings(out)
	return out
}
