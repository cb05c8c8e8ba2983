// Package history stores validation runs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/icscheck/internal/model"
)

// tsLayout is fixed width so stored timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Run is one recorded validation.
type Run struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"ts"`
	Source     string        `json:"source"`
	InputHash  string        `json:"input_hash"`
	ConfigHash string        `json:"config_hash"`
	Compliant  bool          `json:"compliant"`
	Errors     int           `json:"errors"`
	Warnings   int           `json:"warnings"`
	Report     *model.Report `json:"report,omitempty"`
}

// NewRun builds a run from a report with a fresh ID and the current time.
func NewRun(source, inputHash, configHash string, r *model.Report) Run {
	return Run{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Source:     source,
		InputHash:  inputHash,
		ConfigHash: configHash,
		Compliant:  r.Compliant,
		Errors:     r.Errors(),
		Warnings:   r.Warnings(),
		Report:     r,
	}
}

// Store is a SQLite-backed run history. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	ts          TEXT NOT NULL,
	source      TEXT NOT NULL,
	input_hash  TEXT NOT NULL,
	config_hash TEXT NOT NULL,
	compliant   INTEGER NOT NULL,
	errors      INTEGER NOT NULL,
	warnings    INTEGER NOT NULL,
	report      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts);
`

// Open opens or creates the database at path and ensures the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("history: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	s.logger.Debug("history store opened", zap.String("path", path))
	return s, nil
}

// Record inserts a run. Empty ID and zero Timestamp are filled in.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	report := run.Report
	if report == nil {
		report = model.NewReport(nil)
	}
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("history: marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, ts, source, input_hash, config_hash, compliant, errors, warnings, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Timestamp.UTC().Format(tsLayout), run.Source, run.InputHash, run.ConfigHash,
		boolToInt(run.Compliant), run.Errors, run.Warnings, string(data))
	if err != nil {
		return "", fmt.Errorf("history: insert run: %w", err)
	}
	s.logger.Debug("run recorded", zap.String("id", run.ID), zap.Bool("compliant", run.Compliant))
	return run.ID, nil
}

// List returns up to limit runs, newest first, without their reports.
// limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, ts, source, input_hash, config_hash, compliant, errors, warnings
		FROM runs ORDER BY ts DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			ts        string
			compliant int
		)
		if err := rows.Scan(&r.ID, &ts, &r.Source, &r.InputHash, &r.ConfigHash, &compliant, &r.Errors, &r.Warnings); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.Timestamp = parseTime(ts)
		r.Compliant = compliant != 0
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its full report.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var (
		r         Run
		ts        string
		compliant int
		report    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ts, source, input_hash, config_hash, compliant, errors, warnings, report
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &ts, &r.Source, &r.InputHash, &r.ConfigHash, &compliant, &r.Errors, &r.Warnings, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history: %w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("history: get run: %w", err)
	}
	r.Timestamp = parseTime(ts)
	r.Compliant = compliant != 0
	r.Report = &model.Report{}
	if err := json.Unmarshal([]byte(report), r.Report); err != nil {
		return nil, fmt.Errorf("history: decode report: %w", err)
	}
	return &r, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
