package sinks

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/constants"
	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	provider1   TEXT NOT NULL DEFAULT '',
	provider2   TEXT NOT NULL DEFAULT '',
	attributes  TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	buckets     INTEGER NOT NULL DEFAULT 0,
	accepted    INTEGER NOT NULL DEFAULT 0,
	rejected    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS buckets (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	id          INTEGER NOT NULL,
	cardinality TEXT NOT NULL,
	size        INTEGER NOT NULL,
	PRIMARY KEY (run_id, id)
);
CREATE TABLE IF NOT EXISTS bucket_members (
	run_id    TEXT NOT NULL,
	bucket_id INTEGER NOT NULL,
	provider  TEXT NOT NULL,
	record_id TEXT NOT NULL,
	PRIMARY KEY (run_id, provider, record_id),
	FOREIGN KEY (run_id, bucket_id) REFERENCES buckets(run_id, id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS bucket_links (
	run_id      TEXT NOT NULL,
	bucket_id   INTEGER NOT NULL,
	a_provider  TEXT NOT NULL,
	a_id        TEXT NOT NULL,
	b_provider  TEXT NOT NULL,
	b_id        TEXT NOT NULL,
	evidence    TEXT NOT NULL,
	FOREIGN KEY (run_id, bucket_id) REFERENCES buckets(run_id, id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_buckets_cardinality ON buckets(run_id, cardinality);
`

// SQLite persists buckets to a SQLite database, one transaction per
// bucket.
type SQLite struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", dir, err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapResource("open", "database", path, err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// under parallel dispatch.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, errors.WrapResource("open", "database", path, fmt.Errorf("failed to set pragma: %w", err))
		}
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, errors.WrapResource("create", "schema", path, err)
	}

	logging.FromContext(ctx).Debug().Str("path", path).Msg("Opened SQLite sink")
	return &SQLite{conn: conn, path: path}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Conn returns the underlying connection.
func (s *SQLite) Conn() *sql.DB {
	return s.conn
}

// Start records a run before its buckets arrive.
func (s *SQLite) Start(ctx context.Context, runID, provider1, provider2 string, attributes []string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO runs (id, provider1, provider2, attributes, started_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET provider1 = excluded.provider1, provider2 = excluded.provider2, attributes = excluded.attributes`,
		runID, provider1, provider2, strings.Join(attributes, ","), time.Now().UTC())
	return errors.WrapResource("write", "run", runID, err)
}

// Finish stores the totals of a completed run. It has the shape of a
// bucketizer post-process hook.
func (s *SQLite) Finish(ctx context.Context, r *bucketizer.Result) error {
	if err := s.Start(ctx, r.RunID, r.Provider1, r.Provider2, r.Attributes); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, buckets = ?, accepted = ?, rejected = ? WHERE id = ?`,
		r.Metadata.EndTime.UTC(), r.Stats.Buckets, r.Stats.Accepted, r.Stats.Rejected, r.RunID)
	return errors.WrapResource("write", "run", r.RunID, err)
}

// Handle implements bucketizer.Handler.
func (s *SQLite) Handle(ctx context.Context, b *bucketizer.Bucket) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, started_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
			b.RunID(), time.Now().UTC()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO buckets (run_id, id, cardinality, size) VALUES (?, ?, ?, ?)`,
			b.RunID(), b.ID(), b.Cardinality().String(), b.Size()); err != nil {
			return err
		}
		for _, m := range b.Members() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bucket_members (run_id, bucket_id, provider, record_id) VALUES (?, ?, ?, ?)`,
				b.RunID(), b.ID(), m.Provider(), m.ID()); err != nil {
				return err
			}
		}
		for _, a := range b.Associations() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bucket_links (run_id, bucket_id, a_provider, a_id, b_provider, b_id, evidence) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				b.RunID(), b.ID(), a.A.Provider(), a.A.ID(), a.B.Provider(), a.B.ID(), a.Label); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.WrapResource("write", "bucket", fmt.Sprint(b.ID()), err)
}

// Counts returns the number of stored buckets per cardinality for a run.
func (s *SQLite) Counts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT cardinality, COUNT(*) FROM buckets WHERE run_id = ? GROUP BY cardinality`, runID)
	if err != nil {
		return nil, errors.WrapResource("read", "buckets", runID, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var card string
		var n int
		if err := rows.Scan(&card, &n); err != nil {
			return nil, errors.WrapResource("read", "buckets", runID, err)
		}
		out[card] = n
	}
	return out, rows.Err()
}

// withTx executes fn within a transaction, rolling back on error.
func (s *SQLite) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.FromContext(ctx).Error().
				Err(err).
				AnErr("rollback_error", rbErr).
				Msg("Failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
