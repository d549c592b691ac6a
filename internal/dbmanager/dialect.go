package dbmanager

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/alexanderjulianmartinez/peopledb/internal/config"
)

type Dialect string

const (
	SQLite Dialect = config.DatabaseSQLite
	MySQL  Dialect = config.DatabaseMySQL
)

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(s)) {
	case SQLite:
		return SQLite, nil
	case MySQL:
		return MySQL, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", s)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case MySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

func (d Dialect) QuoteIdent(name string) string {
	switch d {
	case MySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}
