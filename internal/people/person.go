package people

import (
	"fmt"

	"github.com/alexanderjulianmartinez/peopledb/internal/dbmanager"
	"github.com/alexanderjulianmartinez/peopledb/pkg/types"
)

// Table and column names match the database file the app has always
// shipped with, so existing files open unchanged.
const (
	Table        = "peopleInfo"
	ColID        = "peopleInfoID"
	ColFirstName = "firstname"
	ColLastName  = "lastname"
	ColAge       = "age"
)

type Person struct {
	ID        int64
	FirstName string
	LastName  string
	Age       int64
}

func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// FromRow converts one row of a select over the people table.
func FromRow(row map[string]any) (Person, error) {
	id, err := types.Int64(row, ColID)
	if err != nil {
		return Person{}, fmt.Errorf("person row: %w", err)
	}
	age, err := types.Int64(row, ColAge)
	if err != nil {
		return Person{}, fmt.Errorf("person row: %w", err)
	}
	return Person{
		ID:        id,
		FirstName: types.String(row, ColFirstName),
		LastName:  types.String(row, ColLastName),
		Age:       age,
	}, nil
}

// FromResult converts every row of a select over the people table.
func FromResult(res *types.QueryResult) ([]Person, error) {
	out := make([]Person, 0, res.Len())
	if res == nil {
		return out, nil
	}
	for _, row := range res.Rows {
		p, err := FromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ExpectedColumns is the schema EnsureSchema creates, as Inspect reports it.
func ExpectedColumns(d dbmanager.Dialect) []dbmanager.ColumnInfo {
	switch d {
	case dbmanager.MySQL:
		return []dbmanager.ColumnInfo{
			{Name: ColID, Type: "bigint", Nullable: false},
			{Name: ColFirstName, Type: "varchar", Nullable: true},
			{Name: ColLastName, Type: "varchar", Nullable: true},
			{Name: ColAge, Type: "int", Nullable: true},
		}
	default:
		return []dbmanager.ColumnInfo{
			{Name: ColID, Type: "integer", Nullable: false},
			{Name: ColFirstName, Type: "text", Nullable: true},
			{Name: ColLastName, Type: "text", Nullable: true},
			{Name: ColAge, Type: "integer", Nullable: true},
		}
	}
}

func createTableSQL(d dbmanager.Dialect) string {
	switch d {
	case dbmanager.MySQL:
		return "CREATE TABLE IF NOT EXISTS `peopleInfo` (" +
			"`peopleInfoID` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
			"`firstname` VARCHAR(255), " +
			"`lastname` VARCHAR(255), " +
			"`age` INT)"
	default:
		return `create table if not exists peopleInfo (
			peopleInfoID integer primary key autoincrement,
			firstname text,
			lastname text,
			age integer
		)`
	}
}
