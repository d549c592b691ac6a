package dbmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/peopledb/internal/config"
	"github.com/alexanderjulianmartinez/peopledb/pkg/types"
)

const defaultTimeout = 5 * time.Second

// Manager runs free-form SQL against a single database. It does no
// caching or batching; every call is independent.
type Manager struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
	log     logrus.FieldLogger
}

// Open opens the configured database, creating it if needed, and checks
// that it answers a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger logrus.FieldLogger) (*Manager, error) {
	dialect, err := ParseDialect(cfg.Type)
	if err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("dialect", string(dialect))

	if dialect == SQLite {
		if err := prepareSQLiteFile(cfg.DSN, cfg.Seed, logger); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// one writer at a time, and all statements see the same connection
		db.SetMaxOpenConns(1)
	}

	m := &Manager{
		db:      db,
		dialect: dialect,
		timeout: defaultTimeout,
		log:     logger,
	}
	if err := m.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("database opened")
	return m, nil
}

func (m *Manager) Dialect() Dialect {
	return m.dialect
}

func (m *Manager) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", m.dialect, err)
	}
	return nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// Query runs a statement expected to return rows and materializes all of
// them. Values are bound from args; the query text itself is not checked.
func (m *Manager) Query(ctx context.Context, query string, args ...any) (*types.QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	result := &types.QueryResult{
		Columns: cols,
		Rows:    []map[string]any{},
	}
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("query scan: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}

	m.log.WithField("rows", len(result.Rows)).Debug("query executed")
	return result, nil
}

// Exec runs a statement that returns no rows (insert, update, delete, ddl).
func (m *Manager) Exec(ctx context.Context, query string, args ...any) (types.ExecResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return types.ExecResult{}, fmt.Errorf("exec: %w", err)
	}

	var out types.ExecResult
	if out.AffectedRows, err = res.RowsAffected(); err != nil {
		return types.ExecResult{}, fmt.Errorf("exec rows affected: %w", err)
	}
	if out.LastInsertID, err = res.LastInsertId(); err != nil {
		return types.ExecResult{}, fmt.Errorf("exec last insert id: %w", err)
	}

	m.log.WithFields(logrus.Fields{
		"affected":       out.AffectedRows,
		"last_insert_id": out.LastInsertID,
	}).Debug("statement executed")
	return out, nil
}

// prepareSQLiteFile makes sure the directory for a file-backed database
// exists and, on first use, copies the seed database into place.
func prepareSQLiteFile(dsn, seed string, logger logrus.FieldLogger) error {
	path := sqliteFilePath(dsn)
	if path == "" {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	if seed == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat database %s: %w", path, err)
	}

	if err := copyFile(seed, path); err != nil {
		return fmt.Errorf("copy seed database %s: %w", seed, err)
	}
	logger.WithFields(logrus.Fields{"seed": seed, "path": path}).Info("database copied from seed")
	return nil
}

// sqliteFilePath returns the filesystem path of a sqlite dsn, or "" for
// in-memory databases.
func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
