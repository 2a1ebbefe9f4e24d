package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/abhisek/coursekit/internal/logger"
)

// ErrTableMissing means the user_detail table does not exist.
var ErrTableMissing = errors.New("progress table user_detail not found")

// Repo runs progress queries against the user_detail table. It only reads.
type Repo struct {
	db      *sql.DB
	dialect string
	timeout time.Duration
	log     *logger.Logger
}

// Open connects to the progress database described by cfg.
func Open(cfg Config, log *logger.Logger) (*Repo, error) {
	var driver string
	var dialect string
	switch cfg.Driver {
	case "sqlite":
		driver, dialect = "sqlite", DialectSQLite
	case "postgres", "pgx":
		driver, dialect = "pgx", DialectPostgres
	default:
		return nil, fmt.Errorf("unknown progress driver %q", cfg.Driver)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open progress database: %w", err)
	}
	return NewRepo(db, dialect, cfg.QueryTimeout, log), nil
}

// NewRepo wraps an existing connection pool. dialect is one of
// DialectSQLite or DialectPostgres.
func NewRepo(db *sql.DB, dialect string, timeout time.Duration, log *logger.Logger) *Repo {
	if log == nil {
		log = logger.NewNop()
	}
	return &Repo{db: db, dialect: dialect, timeout: timeout, log: log.With("service", "progress")}
}

// DB returns the underlying pool.
func (r *Repo) DB() *sql.DB {
	return r.db
}

// Close closes the pool.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Find returns the rows matching f. Under ModeRequireFilter an empty
// filter yields no rows without touching the database.
func (r *Repo) Find(ctx context.Context, f Filter, mode Mode) ([]Record, error) {
	if mode == ModeRequireFilter && f.IsEmpty() {
		return nil, nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	q := Build(f, r.dialect)
	rows, err := r.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, mapQueryError(err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			username, course, status sql.NullString
			initiated, completed     any
		)
		if err := rows.Scan(&username, &course, &status, &initiated, &completed); err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		rec := Record{Username: username.String, Course: course.String, Status: status.String}
		rec.InitiatedOn = normalizeDate(initiated)
		rec.CompletedOn = normalizeDate(completed)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapQueryError(err)
	}

	r.log.Debug("progress query", "args", len(q.Args), "rows", len(out))
	return out, nil
}

// normalizeDate renders a driver date value as YYYY-MM-DD, or nil when the
// value is absent or unreadable.
func normalizeDate(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		s = t.Format(DateLayout)
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return nil
	}

	s = strings.TrimSpace(s)
	if len(s) < len(DateLayout) {
		return nil
	}
	if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err != nil {
		return nil
	}
	s = s[:len(DateLayout)]
	return &s
}

func mapQueryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" { // undefined_table
		return fmt.Errorf("%w: %v", ErrTableMissing, err)
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrTableMissing, err)
	}
	return fmt.Errorf("query progress: %w", err)
}
