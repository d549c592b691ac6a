package people

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderjulianmartinez/peopledb/internal/dbmanager"
	"github.com/alexanderjulianmartinez/peopledb/pkg/types"
)

var ErrNotFound = errors.New("person not found")

// SelectAll is the fixed query behind the people list.
const SelectAll = "select peopleInfoID, firstname, lastname, age from peopleInfo order by peopleInfoID"

const (
	selectOne = "select peopleInfoID, firstname, lastname, age from peopleInfo where peopleInfoID = ?"
	insertOne = "insert into peopleInfo (firstname, lastname, age) values (?, ?, ?)"
	updateOne = "update peopleInfo set firstname = ?, lastname = ?, age = ? where peopleInfoID = ?"
	deleteOne = "delete from peopleInfo where peopleInfoID = ?"
	countAll  = "select count(*) as n from peopleInfo"
	existsOne = "select 1 as found from peopleInfo where peopleInfoID = ?"
)

// DB is the part of the database manager the store needs.
type DB interface {
	Query(ctx context.Context, query string, args ...any) (*types.QueryResult, error)
	Exec(ctx context.Context, query string, args ...any) (types.ExecResult, error)
	Dialect() dbmanager.Dialect
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the people table if the database does not have it.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL(s.db.Dialect())); err != nil {
		return fmt.Errorf("create %s table: %w", Table, err)
	}
	return nil
}

// AllResult runs SelectAll and returns the raw result table.
func (s *Store) AllResult(ctx context.Context) (*types.QueryResult, error) {
	res, err := s.db.Query(ctx, SelectAll)
	if err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}
	return res, nil
}

func (s *Store) All(ctx context.Context) ([]Person, error) {
	res, err := s.AllResult(ctx)
	if err != nil {
		return nil, err
	}
	return FromResult(res)
}

func (s *Store) Get(ctx context.Context, id int64) (Person, error) {
	res, err := s.db.Query(ctx, selectOne, id)
	if err != nil {
		return Person{}, fmt.Errorf("load person %d: %w", id, err)
	}
	if res.Len() == 0 {
		return Person{}, fmt.Errorf("load person %d: %w", id, ErrNotFound)
	}
	return FromRow(res.Rows[0])
}

// Insert stores p as a new record and returns it with its assigned id.
// p.ID is ignored.
func (s *Store) Insert(ctx context.Context, p Person) (Person, error) {
	out, err := s.db.Exec(ctx, insertOne, p.FirstName, p.LastName, p.Age)
	if err != nil {
		return Person{}, fmt.Errorf("insert person: %w", err)
	}
	p.ID = out.LastInsertID
	return p, nil
}

func (s *Store) Update(ctx context.Context, p Person) error {
	out, err := s.db.Exec(ctx, updateOne, p.FirstName, p.LastName, p.Age, p.ID)
	if err != nil {
		return fmt.Errorf("update person %d: %w", p.ID, err)
	}
	if out.AffectedRows > 0 {
		return nil
	}
	// mysql reports 0 affected rows when nothing changed, so tell that
	// apart from a missing record.
	exists, err := s.exists(ctx, p.ID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("update person %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	out, err := s.db.Exec(ctx, deleteOne, id)
	if err != nil {
		return fmt.Errorf("delete person %d: %w", id, err)
	}
	if out.AffectedRows == 0 {
		return fmt.Errorf("delete person %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	res, err := s.db.Query(ctx, countAll)
	if err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	if res.Len() == 0 {
		return 0, nil
	}
	return types.Int64(res.Rows[0], "n")
}

func (s *Store) exists(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.Query(ctx, existsOne, id)
	if err != nil {
		return false, fmt.Errorf("check person %d: %w", id, err)
	}
	return res.Len() > 0, nil
}
