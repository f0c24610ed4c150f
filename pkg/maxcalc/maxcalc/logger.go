package maxcalc

import (
	"fmt"
	"strings"
	"sync"
)

// Logger receives diagnostic messages from an Engine. *logging.Logger
// satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// nullLogger discards all output
type nullLogger struct{}

func (nullLogger) Debug(string, ...any) {}
func (nullLogger) Warn(string, ...any)  {}

// NullLogger returns a logger that discards all output
func NullLogger() Logger {
	return nullLogger{}
}

// BufferedLogger captures log output for later retrieval
type BufferedLogger struct {
	mu    sync.Mutex
	lines []string
}

// NewBufferedLogger creates a new buffered logger
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{
		lines: make([]string, 0),
	}
}

func (l *BufferedLogger) Debug(format string, args ...any) {
	l.append("DEBUG", format, args...)
}

func (l *BufferedLogger) Warn(format string, args ...any) {
	l.append("WARN", format, args...)
}

func (l *BufferedLogger) append(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, "["+level+"] "+fmt.Sprintf(format, args...))
}

// String returns all captured output as a single string
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := strings.Join(l.lines, "\n")
	if len(l.lines) > 0 {
		result += "\n"
	}
	return result
}

// Lines returns all captured log lines
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Make a copy to avoid race conditions
	result := make([]string, len(l.lines))
	copy(result, l.lines)
	return result
}

// Reset clears all captured output
func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = l.lines[:0]
}
