package sources

import (
	"context"
	"database/sql"
	"iter"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/records"
)

// SQLite reads records from a SQLite database. The query must return
// three columns (id, attribute, value) ordered by id; consecutive rows with
// the same id form one record. Rows naming an attribute outside the
// declared list are ignored, as are NULL values.
type SQLite struct {
	provider string
	path     string
	query    string
	opts     *options
}

// NewSQLite creates a source running query against the database at path.
// attributes declares the names records carry.
func NewSQLite(provider, path, query string, attributes []string, opts ...Option) *SQLite {
	o := defaultOptions().apply(opts...)
	if len(attributes) > 0 {
		o.attributes = attributes
	}
	return &SQLite{
		provider: provider,
		path:     path,
		query:    query,
		opts:     o,
	}
}

// Provider implements Source.
func (s *SQLite) Provider() string { return s.provider }

// Type implements Source.
func (s *SQLite) Type() Type { return SQLiteType }

// Records implements Source.
func (s *SQLite) Records(ctx context.Context) iter.Seq2[records.Matchable, error] {
	return func(yield func(records.Matchable, error) bool) {
		db, err := openReadOnly(ctx, s.path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer func() { _ = db.Close() }()

		rows, err := db.QueryContext(ctx, s.query, s.opts.args...)
		if err != nil {
			yield(nil, errors.WrapResource("query", "source", s.provider, err))
			return
		}
		defer func() { _ = rows.Close() }()

		var (
			current string
			set     *records.AttributeSet
		)
		flush := func() bool {
			if set == nil {
				return true
			}
			return yield(records.New(s.provider, current, set), nil)
		}

		for rows.Next() {
			var id, name string
			var value sql.NullString
			if err := rows.Scan(&id, &name, &value); err != nil {
				yield(nil, errors.WrapResource("scan", "source", s.provider, err))
				return
			}
			if id == "" {
				yield(nil, errors.NewRecordError(s.provider, "", "empty id", nil))
				return
			}
			if set == nil || id != current {
				if !flush() {
					return
				}
				current, set = id, records.NewAttributeSet(s.opts.attributes...)
			}
			if !value.Valid {
				continue
			}
			if v := s.opts.normalizer(value.String); v != "" {
				set.Add(name, v)
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, errors.WrapResource("read", "source", s.provider, err))
			return
		}
		flush()
	}
}

func openReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapResource("open", "database", path, err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA query_only=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.WrapResource("open", "database", path, err)
		}
	}
	return db, nil
}
