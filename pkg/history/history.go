// Package history keeps an append-only SQLite log of resolved answers
// and what happened when they were run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aish-cli/aish/pkg/models"
)

// DefaultLimit caps Query results when no limit is given.
const DefaultLimit = 50

// Recorder stores history entries.
type Recorder interface {
	Record(ctx context.Context, entry models.HistoryEntry) error
}

// Log writes and queries history entries.
type Log struct {
	db *sql.DB
}

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	namespace  TEXT NOT NULL,
	query      TEXT NOT NULL,
	answer     TEXT NOT NULL,
	source     TEXT NOT NULL,
	executed   INTEGER NOT NULL,
	exit_code  INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_ns_created ON history(namespace, created_at);
`

// New opens the history database at dbPath and creates the schema.
func New(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(createHistoryTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &Log{db: db}, nil
}

// Record inserts entry. ID and CreatedAt are filled in when empty.
func (l *Log) Record(ctx context.Context, entry models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO history (id, namespace, query, answer, source, executed, exit_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Namespace, entry.Query, entry.Answer, entry.Source,
		entry.Executed, entry.ExitCode, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// Query returns entries matching opts, newest first.
func (l *Log) Query(ctx context.Context, opts models.HistoryQueryOpts) ([]models.HistoryEntry, error) {
	q := `SELECT id, namespace, query, answer, source, executed, exit_code, created_at
		FROM history WHERE 1=1`
	var args []any

	if opts.Namespace != "" {
		q += " AND namespace = ?"
		args = append(args, opts.Namespace)
	}
	if opts.Query != "" {
		q += " AND query = ?"
		args = append(args, opts.Query)
	}
	if !opts.Since.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, opts.Since.UTC())
	}

	q += " ORDER BY created_at DESC, rowid DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.Namespace, &e.Query, &e.Answer, &e.Source,
			&e.Executed, &e.ExitCode, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}
