// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/toolverse/internal/tools"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound  = errors.New("history entry not found")
	ErrAmbiguous = errors.New("history id prefix matches several entries")
	ErrClosed    = errors.New("history store closed")
)

// =============================================================================
// TYPES
// =============================================================================

const (
	// DefaultLimit is the number of runs kept when no limit is configured.
	DefaultLimit = 1000

	// SummaryLength caps the stored output summary.
	SummaryLength = 200

	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"
)

// Entry is one recorded tool run.
type Entry struct {
	ID        string        `json:"id" yaml:"id"`
	Tool      string        `json:"tool" yaml:"tool"`
	Category  string        `json:"category" yaml:"category"`
	Status    string        `json:"status" yaml:"status"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	Summary   string        `json:"summary,omitempty" yaml:"summary,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
}

// Succeeded reports whether the run finished without error.
func (e Entry) Succeeded() bool {
	return e.Status == tools.StatusOK
}

// FromRecord converts an executor record into an Entry.
func FromRecord(rec tools.ExecutionRecord) Entry {
	return Entry{
		Tool:      rec.ToolName,
		Category:  string(rec.Category),
		Status:    rec.Status,
		Message:   rec.Message,
		Summary:   rec.Summary,
		Duration:  rec.Duration,
		CreatedAt: rec.Timestamp,
	}
}

// Filter narrows List results.
type Filter struct {
	// Tool restricts results to one tool name (empty = all)
	Tool string

	// Status restricts results to one status (empty = all)
	Status string

	// Limit caps the number of entries returned (0 = 50)
	Limit int
}

// ToolStats aggregates the runs of one tool.
type ToolStats struct {
	Tool        string        `json:"tool" yaml:"tool"`
	Runs        int           `json:"runs" yaml:"runs"`
	Failures    int           `json:"failures" yaml:"failures"`
	AvgDuration time.Duration `json:"avg_duration" yaml:"avg_duration"`
}

// Stats aggregates the whole history.
type Stats struct {
	Total    int         `json:"total" yaml:"total"`
	Failures int         `json:"failures" yaml:"failures"`
	ByTool   []ToolStats `json:"by_tool" yaml:"by_tool"`
}

// =============================================================================
// STORE
// =============================================================================

// Store persists tool runs in SQLite.
type Store struct {
	db    *sql.DB
	path  string
	limit int

	mu     sync.Mutex
	closed bool
}

// Open opens or creates the history database at path. limit is the number
// of most recent runs kept; older runs are pruned on insert.
func Open(path string, limit int) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection also
	// keeps an in-memory database alive for the life of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Store{db: db, path: path, limit: limit}, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Record stores an entry, assigning an ID and timestamp when missing, and
// prunes runs beyond the limit. It returns the stored entry.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if err := s.check(); err != nil {
		return Entry{}, err
	}
	if e.Tool == "" {
		return Entry{}, errors.New("history entry needs a tool name")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Status == "" {
		e.Status = tools.StatusOK
	}
	e.Summary = util.TruncateRunes(e.Summary, SummaryLength)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, tool, category, status, message, summary, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tool, e.Category, e.Status, e.Message, e.Summary,
		e.Duration.Milliseconds(), e.CreatedAt.UnixMilli())
	if err != nil {
		return Entry{}, fmt.Errorf("insert run: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM runs WHERE seq NOT IN (SELECT seq FROM runs ORDER BY seq DESC LIMIT ?)`,
		s.limit)
	if err != nil {
		return Entry{}, fmt.Errorf("prune runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit: %w", err)
	}
	e.CreatedAt = time.UnixMilli(e.CreatedAt.UnixMilli())
	return e, nil
}

// Recorder adapts the store to the tool executor.
func (s *Store) Recorder() tools.Recorder {
	return tools.RecorderFunc(func(ctx context.Context, rec tools.ExecutionRecord) error {
		_, err := s.Record(ctx, FromRecord(rec))
		return err
	})
}

const selectColumns = `SELECT id, tool, category, status, message, summary, duration_ms, created_at FROM runs`

func scanEntry(row interface{ Scan(...interface{}) error }) (Entry, error) {
	var e Entry
	var durationMs, createdMs int64
	if err := row.Scan(&e.ID, &e.Tool, &e.Category, &e.Status, &e.Message, &e.Summary, &durationMs, &createdMs); err != nil {
		return Entry{}, err
	}
	e.Duration = time.Duration(durationMs) * time.Millisecond
	e.CreatedAt = time.UnixMilli(createdMs)
	return e, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := selectColumns
	var where []string
	var args []interface{}
	if f.Tool != "" {
		where = append(where, "tool = ?")
		args = append(args, f.Tool)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry with the given ID. A unique prefix of at least
// four characters is also accepted.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	if err := s.check(); err != nil {
		return Entry{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, ErrNotFound
	}

	e, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("get run: %w", err)
	}
	if len(id) < 4 {
		return Entry{}, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE id LIKE ? ESCAPE '\\' LIMIT 2", escapeLike(id)+"%")
	if err != nil {
		return Entry{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return Entry{}, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, err
	}
	switch len(matches) {
	case 0:
		return Entry{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return Entry{}, ErrAmbiguous
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Stats aggregates runs per tool, sorted by tool name.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	if err := s.check(); err != nil {
		return Stats{}, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT tool,
		       COUNT(*),
		       SUM(CASE WHEN status != 'ok' THEN 1 ELSE 0 END),
		       AVG(duration_ms)
		FROM runs
		GROUP BY tool
		ORDER BY tool`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByTool: []ToolStats{}}
	for rows.Next() {
		var ts ToolStats
		var avgMs float64
		if err := rows.Scan(&ts.Tool, &ts.Runs, &ts.Failures, &avgMs); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		ts.AvgDuration = time.Duration(avgMs * float64(time.Millisecond))
		stats.Total += ts.Runs
		stats.Failures += ts.Failures
		stats.ByTool = append(stats.ByTool, ts)
	}
	return stats, rows.Err()
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}
