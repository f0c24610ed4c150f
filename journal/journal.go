// Package journal records evaluations in a SQLite database so that past
// expressions and their results can be listed from the command line.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"
)

// Journal is an append-only evaluation log capped at a number of entries.
type Journal struct {
	mu          sync.RWMutex
	db          *sql.DB
	path        string
	maxEntries  int
	truncatePct int
}

// Entry is one recorded evaluation. Exactly one of Result and ErrorCode
// is set.
type Entry struct {
	ID         int64
	Timestamp  time.Time
	Expression string
	Result     string
	ErrorCode  string
	Message    string
}

// Failed reports whether the evaluation ended in an error.
func (e Entry) Failed() bool {
	return e.ErrorCode != ""
}

// Config holds journal settings.
type Config struct {
	Path        string // Database file path
	MaxEntries  int    // Entries kept before trimming (default 10000)
	TruncatePct int    // Percentage of oldest entries removed when trimming (default 25)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEntries:  10000,
		TruncatePct: 25,
	}
}

// Filter narrows Query results.
type Filter struct {
	Contains   string // substring of the expression
	ErrorsOnly bool
	Limit      int // default 100
}

// Open opens or creates the journal at cfg.Path.
func Open(cfg Config) (*Journal, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("journal path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to journal database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	j := &Journal{
		db:          db,
		path:        cfg.Path,
		maxEntries:  cfg.MaxEntries,
		truncatePct: cfg.TruncatePct,
	}
	if j.maxEntries <= 0 {
		j.maxEntries = 10000
	}
	if j.truncatePct <= 0 || j.truncatePct > 100 {
		j.truncatePct = 25
	}

	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return j, nil
}

func (j *Journal) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS evaluations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			expression TEXT NOT NULL,
			result TEXT NOT NULL DEFAULT '',
			error_code TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_evaluations_error ON evaluations(error_code);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends an entry. A zero Timestamp is replaced by the current time.
func (j *Journal) Record(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	_, err := j.db.Exec(`
		INSERT INTO evaluations (timestamp, expression, result, error_code, message)
		VALUES (?, ?, ?, ?, ?)
	`, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Expression, e.Result, e.ErrorCode, e.Message)
	if err != nil {
		return fmt.Errorf("recording evaluation: %w", err)
	}

	return j.trim()
}

// Query returns matching entries, newest first.
func (j *Journal) Query(f Filter) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if f.Limit <= 0 {
		f.Limit = 100
	}

	var (
		where []string
		args  []any
	)
	if f.Contains != "" {
		where = append(where, "instr(lower(expression), lower(?)) > 0")
		args = append(args, f.Contains)
	}
	if f.ErrorsOnly {
		where = append(where, "error_code != ''")
	}

	query := "SELECT id, timestamp, expression, result, error_code, message FROM evaluations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, f.Limit)

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Expression, &e.Result, &e.ErrorCode, &e.Message); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the number of entries.
func (j *Journal) Count() (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var count int
	err := j.db.QueryRow("SELECT COUNT(*) FROM evaluations").Scan(&count)
	return count, err
}

// Clear removes every entry.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec("DELETE FROM evaluations")
	return err
}

// trim deletes the oldest truncatePct percent of entries once the journal
// exceeds maxEntries. Must be called with lock held.
func (j *Journal) trim() error {
	var total int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM evaluations").Scan(&total); err != nil {
		return err
	}
	if total <= j.maxEntries {
		return nil
	}

	deleteCount := (total * j.truncatePct) / 100
	if deleteCount < total-j.maxEntries {
		deleteCount = total - j.maxEntries
	}

	_, err := j.db.Exec(`
		DELETE FROM evaluations WHERE id IN (
			SELECT id FROM evaluations ORDER BY id ASC LIMIT ?
		)
	`, deleteCount)
	if err != nil {
		return fmt.Errorf("trimming journal: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

// Path returns the path to the database file.
func (j *Journal) Path() string {
	return j.path
}
