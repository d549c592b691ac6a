package drift

// Centralized severity and message helpers for schema changes.
// Rules:
// - BLOCK when the program cannot read or write the table safely
// - WARN for risky but workable differences
// - INFO for safe differences

const (
	SeverityInfo  = "INFO"
	SeverityWarn  = "WARN"
	SeverityBlock = "BLOCK"
)

// Change kinds supported:
// "table_missing", "column_added", "column_removed", "nullable_to_notnull", "type_changed"
func SeverityForChange(kind string) string {
	switch kind {
	case "table_missing", "column_removed", "nullable_to_notnull":
		return SeverityBlock
	case "type_changed":
		return SeverityWarn
	case "column_added":
		return SeverityInfo
	default:
		return SeverityInfo
	}
}

// MessageForChange returns a concise message for the given change kind.
func MessageForChange(kind string) string {
	switch kind {
	case "table_missing":
		return "table does not exist"
	case "column_added":
		return "extra column not used by peopledb"
	case "column_removed":
		return "expected column missing in database"
	case "nullable_to_notnull":
		return "nullable -> NOT NULL"
	case "type_changed":
		return "type mismatch"
	default:
		return ""
	}
}
