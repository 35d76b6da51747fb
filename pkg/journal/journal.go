// Package journal keeps an append-only SQLite record of every HTTP attempt
// the client makes. It is an audit trail: nothing is replayed from it.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/client"
	_ "modernc.org/sqlite"
)

// Journal implements client.Recorder on top of SQLite.
type Journal struct {
	db *sql.DB
}

var _ client.Recorder = (*Journal)(nil)

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA busy_timeout = 5000;
		PRAGMA journal_mode = WAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		url TEXT NOT NULL,
		status INTEGER NOT NULL,
		token TEXT,
		attempt INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		rate_limited INTEGER NOT NULL,
		error TEXT,
		at_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_at ON attempts(at_ms);
	CREATE INDEX IF NOT EXISTS idx_attempts_task ON attempts(task_id);
	`
	if _, err := j.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create attempts table: %w", err)
	}
	return nil
}

// Record appends a.
func (j *Journal) Record(ctx context.Context, a client.Attempt) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO attempts (task_id, endpoint, url, status, token, attempt, duration_ms, rate_limited, error, at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.TaskID, a.Endpoint, a.URL, a.Status, a.Token, a.Attempt,
		a.Duration.Milliseconds(), boolToInt(a.RateLimited), a.Err, a.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Recent returns up to n attempts, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]client.Attempt, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT task_id, endpoint, url, status, token, attempt, duration_ms, rate_limited, error, at_ms
		FROM attempts ORDER BY at_ms DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var out []client.Attempt
	for rows.Next() {
		var (
			a           client.Attempt
			token, msg  sql.NullString
			durationMS  int64
			rateLimited int
			atMS        int64
		)
		if err := rows.Scan(&a.TaskID, &a.Endpoint, &a.URL, &a.Status, &token, &a.Attempt,
			&durationMS, &rateLimited, &msg, &atMS); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.Token = token.String
		a.Err = msg.String
		a.Duration = time.Duration(durationMS) * time.Millisecond
		a.RateLimited = rateLimited != 0
		a.At = time.UnixMilli(atMS)
		out = append(out, a)
	}
	return out, rows.Err()
}

// EndpointStats aggregates the attempts made against one endpoint.
type EndpointStats struct {
	Endpoint    string
	Attempts    int
	RateLimited int
	Errors      int // status 0 or >= 400, excluding rate limited attempts
	AvgDuration time.Duration
}

// Stats aggregates attempts recorded at or after since, ordered by endpoint.
func (j *Journal) Stats(ctx context.Context, since time.Time) ([]EndpointStats, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT endpoint,
			COUNT(*),
			SUM(rate_limited),
			SUM(CASE WHEN rate_limited = 0 AND (status = 0 OR status >= 400) THEN 1 ELSE 0 END),
			AVG(duration_ms)
		FROM attempts WHERE at_ms >= ?
		GROUP BY endpoint ORDER BY endpoint`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var out []EndpointStats
	for rows.Next() {
		var (
			s     EndpointStats
			avgMS float64
		)
		if err := rows.Scan(&s.Endpoint, &s.Attempts, &s.RateLimited, &s.Errors, &avgMS); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		s.AvgDuration = time.Duration(avgMS * float64(time.Millisecond))
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes attempts recorded before cutoff and returns how many were
// removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM attempts WHERE at_ms < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune attempts: %w", err)
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
