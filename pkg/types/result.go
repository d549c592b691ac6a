package types

import (
	"fmt"
	"math"
	"strconv"
)

// QueryResult is the materialized result set of a single query.
// Columns is in the order the statement returned them and is filled
// even when Rows is empty.
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}

func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// ExecResult is what a non-query statement reports back.
type ExecResult struct {
	AffectedRows int64
	LastInsertID int64
}

// Int64 reads column col of row as an integer. Drivers disagree on how
// integers come back (mysql text protocol returns []byte), so the common
// representations are all accepted. NULL reads as 0; callers that need
// to tell NULL apart check row[col] == nil first. Values that do not fit
// an int64 exactly are an error.
func Int64(row map[string]any, col string) (int64, error) {
	v, ok := row[col]
	if !ok {
		return 0, fmt.Errorf("column %s not present", col)
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("column %s: %d overflows int64", col, n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("column %s: %v is not an int64", col, n)
		}
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("column %s: unsupported integer type %T", col, v)
	}
}

// String reads column col of row as text. NULL reads as "".
func String(row map[string]any, col string) string {
	switch s := row[col].(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}
