package drift

import (
	"strings"

	"github.com/alexanderjulianmartinez/peopledb/internal/dbmanager"
)

type Issue struct {
	Table    string
	Column   string
	Kind     string
	Severity string
	Message  string
	FromType string
	ToType   string
}

type Report struct {
	Table    string
	RowCount int64
	Issues   []Issue
}

// Blocking reports whether any issue prevents using the table.
func (r *Report) Blocking() bool {
	for _, iss := range r.Issues {
		if iss.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Validate compares the live table against the expected columns. Column
// names and types are compared case-insensitively.
func Validate(expected []dbmanager.ColumnInfo, actual *dbmanager.TableInfo) *Report {
	report := &Report{Table: actual.Name, RowCount: actual.RowCount}

	if !actual.Exists {
		report.add(Issue{Table: actual.Name, Kind: "table_missing"})
		return report
	}

	want := map[string]bool{}
	for _, exp := range expected {
		want[strings.ToLower(exp.Name)] = true

		got, ok := actual.Column(exp.Name)
		if !ok {
			report.add(Issue{Table: actual.Name, Column: exp.Name, Kind: "column_removed"})
			continue
		}
		if !strings.EqualFold(got.Type, exp.Type) {
			report.add(Issue{
				Table:    actual.Name,
				Column:   exp.Name,
				Kind:     "type_changed",
				FromType: strings.ToLower(exp.Type),
				ToType:   strings.ToLower(got.Type),
			})
		}
		if exp.Nullable && !got.Nullable {
			report.add(Issue{Table: actual.Name, Column: exp.Name, Kind: "nullable_to_notnull"})
		}
	}

	for _, col := range actual.Columns {
		if !want[strings.ToLower(col.Name)] {
			report.add(Issue{Table: actual.Name, Column: col.Name, Kind: "column_added"})
		}
	}
	return report
}

func (r *Report) add(iss Issue) {
	iss.Severity = SeverityForChange(iss.Kind)
	if iss.Message == "" {
		iss.Message = MessageForChange(iss.Kind)
	}
	r.Issues = append(r.Issues, iss)
}
