package dbmanager

import "strings"

type ColumnInfo struct {
	Name     string
	Type     string
	Nullable bool
}

type TableInfo struct {
	Name       string
	Exists     bool
	Columns    []ColumnInfo
	PrimaryKey []string
	RowCount   int64
}

// Column returns the named column, matched case-insensitively.
func (t *TableInfo) Column(name string) (ColumnInfo, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnInfo{}, false
}
