package dbmanager

import (
	"context"
	"fmt"
	"strings"
)

// Inspect reads the live column metadata and row count of a table. A
// table that does not exist comes back with Exists set to false.
func (m *Manager) Inspect(ctx context.Context, table string) (*TableInfo, error) {
	info, err := m.FetchSchema(ctx, table)
	if err != nil {
		return nil, err
	}
	if !info.Exists {
		return info, nil
	}

	info.RowCount, err = m.FetchRowCount(ctx, table)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (m *Manager) FetchSchema(ctx context.Context, table string) (*TableInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	info := &TableInfo{Name: table}

	switch m.dialect {
	case MySQL:
		rows, err := m.db.QueryContext(ctx, `
			SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION
		`, table)
		if err != nil {
			return nil, fmt.Errorf("fetch schema %s: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var name, dataType, nullable, key string
			if err := rows.Scan(&name, &dataType, &nullable, &key); err != nil {
				return nil, fmt.Errorf("fetch schema %s: %w", table, err)
			}
			info.Columns = append(info.Columns, ColumnInfo{
				Name:     name,
				Type:     strings.ToLower(dataType),
				Nullable: nullable == "YES",
			})
			if key == "PRI" {
				info.PrimaryKey = append(info.PrimaryKey, name)
			}
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("fetch schema %s: %w", table, err)
		}

	default:
		rows, err := m.db.QueryContext(ctx, `
			SELECT name, type, "notnull", pk
			FROM pragma_table_info(?)
			ORDER BY cid
		`, table)
		if err != nil {
			return nil, fmt.Errorf("fetch schema %s: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var name, dataType string
			var notNull, pk int64
			if err := rows.Scan(&name, &dataType, &notNull, &pk); err != nil {
				return nil, fmt.Errorf("fetch schema %s: %w", table, err)
			}
			info.Columns = append(info.Columns, ColumnInfo{
				Name:     name,
				Type:     strings.ToLower(dataType),
				Nullable: notNull == 0 && pk == 0,
			})
			if pk > 0 {
				info.PrimaryKey = append(info.PrimaryKey, name)
			}
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("fetch schema %s: %w", table, err)
		}
	}

	info.Exists = len(info.Columns) > 0
	return info, nil
}

func (m *Manager) FetchRowCount(ctx context.Context, table string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", m.dialect.QuoteIdent(table))
	if err := m.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows %s: %w", table, err)
	}
	return count, nil
}
