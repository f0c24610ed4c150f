package maxcalc

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mishamax/maxcalc/journal"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/command"
	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/evaluator"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
)

type memJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
	err     error
}

func (m *memJournal) Record(e journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return m.err
}

func TestEvalString(t *testing.T) {
	e := New()

	tests := []struct {
		input    string
		expected string
	}{
		{"2 + 2", "4"},
		{"1/3", "0.333333333333333"},
		{"(1+2i)*(3-i)", "5+5i"},
		{"sqrt(-1)", "i"},
		{"-40 c to f", "-40"},
		{"98.6 f to c", "37"},
		{"5 km to mi to ft", "16404.1994750656"},
		{"(-1)^70000", "1"},
		{"1e21 * 10", "1e22"},
	}

	for _, tt := range tests {
		got, err := e.EvalString(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got, tt.input)
	}
}

func TestStateCarriesBetweenEvaluations(t *testing.T) {
	e := New()

	_, err := e.Eval("x = 5")
	require.NoError(t, err)
	got, err := e.EvalString("x += 2")
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	got, err = e.EvalString("res * 2")
	require.NoError(t, err)
	assert.Equal(t, "14", got)

	_, err = e.Eval("x = 1/0")
	assert.True(t, errors.Is(err, merrors.New(merrors.DivisionByZero)))

	vars := e.Variables()
	require.Len(t, vars, 1)
	assert.Equal(t, 7.0, vars[0].Value.Re())
}

func TestEvalContextCancelled(t *testing.T) {
	e := New()
	_, err := e.Eval("y = 3")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.EvalContext(ctx, "y = 100")
	assert.ErrorIs(t, err, context.Canceled)

	got, err := e.EvalString("y")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	s.AngleMode = evaluator.Degrees
	s.Complex = false
	s.Format.Precision = 4
	s.Format.DecimalSeparator = ','

	e := New(WithSettings(s))
	assert.Equal(t, s, e.Settings())

	got, err := e.EvalString("sin(30) + 1/3")
	require.NoError(t, err)
	assert.Equal(t, "0,8333", got)

	_, err = e.Eval("sqrt(-1)")
	assert.Equal(t, merrors.InvalidFunctionArgument, merrors.KindOf(err))

	e.Apply(DefaultSettings())
	got, err = e.EvalString("sqrt(-1)")
	require.NoError(t, err)
	assert.Equal(t, "i", got)
}

func TestExecuteSharesState(t *testing.T) {
	e := New(WithVersion("9.9"))
	var out bytes.Buffer

	assert.Equal(t, command.NoCommand, e.Execute("2+2", &out))
	assert.Equal(t, command.Exit, e.Execute("exit", &out))

	assert.Equal(t, command.Parsed, e.Execute("#angle deg", &out))
	assert.Equal(t, evaluator.Degrees, e.Settings().AngleMode)

	assert.Equal(t, command.Parsed, e.Execute("#output 3", &out))
	got, err := e.EvalString("pi")
	require.NoError(t, err)
	assert.Equal(t, "3.14", got)

	out.Reset()
	e.Execute("#ver", &out)
	assert.Contains(t, out.String(), "9.9")
}

func TestJournalRecordsEvaluations(t *testing.T) {
	j := &memJournal{}
	log := NewBufferedLogger()
	e := New(WithJournal(j), WithLogger(log))

	_, _ = e.Eval("6*7")
	_, _ = e.Eval("sinn(1)")

	require.Len(t, j.entries, 2)
	assert.Equal(t, "42", j.entries[0].Result)
	assert.False(t, j.entries[0].Failed())
	assert.Equal(t, string(merrors.UnknownFunction), j.entries[1].ErrorCode)
	assert.Contains(t, j.entries[1].Message, "sinn")

	lines := log.Lines()
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `[DEBUG] eval "6*7" = 42`))
	assert.Contains(t, lines[1], "UNDEF-0001")
}

func TestJournalFailureIsLogged(t *testing.T) {
	j := &memJournal{err: errors.New("disk full")}
	log := NewBufferedLogger()
	e := New(WithJournal(j), WithLogger(log))

	_, err := e.Eval("1+1")
	require.NoError(t, err, "journal failures do not fail the evaluation")
	assert.Contains(t, log.String(), "[WARN] journal: disk full")
}

func TestSQLiteJournal(t *testing.T) {
	j, err := journal.Open(journal.Config{Path: filepath.Join(t.TempDir(), "j.db")})
	require.NoError(t, err)
	defer j.Close()

	e := New(WithJournal(j))
	_, _ = e.Eval("2^10")

	entries, err := j.Query(journal.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1024", entries[0].Result)
}

func TestConcurrentEvaluation(t *testing.T) {
	e := New()
	_, err := e.Eval("n = 0")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Eval("n += 1")
		}()
	}
	wg.Wait()

	got, err := e.EvalString("n")
	require.NoError(t, err)
	assert.Equal(t, "50", got)
}

func TestUnitsReturnsCopy(t *testing.T) {
	e := New()

	reg := e.Units()
	require.NoError(t, reg.RegisterConversion("cup", "ml", 240))

	_, err := e.Eval("1 cup to ml")
	assert.Equal(t, merrors.UnknownUnit, merrors.KindOf(err))

	e = New(WithUnits(reg))
	got, err := e.EvalString("2 cup to ml")
	require.NoError(t, err)
	assert.Equal(t, "480", got)
}

func TestCompletions(t *testing.T) {
	e := New()
	require.NoError(t, e.SetVariable("velocity", number.NewReal(3)))

	names := e.Completions()
	for _, want := range []string{"sin", "arctg", "pi", "ans", "velocity", "km", "#funcs"} {
		assert.Contains(t, names, want)
	}
	assert.True(t, sortedUnique(names))
}

func sortedUnique(names []string) bool {
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			return false
		}
	}
	return true
}
