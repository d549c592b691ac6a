package screens

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderjulianmartinez/peopledb/internal/config"
	"github.com/alexanderjulianmartinez/peopledb/internal/dbmanager"
	"github.com/alexanderjulianmartinez/peopledb/internal/events"
	"github.com/alexanderjulianmartinez/peopledb/internal/people"
	"github.com/alexanderjulianmartinez/peopledb/pkg/types"
)

type fixture struct {
	store *people.Store
	bus   *events.Bus
	list  *ListScreen
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	m, err := dbmanager.Open(ctx, config.DatabaseConfig{
		Type: config.DatabaseSQLite,
		DSN:  filepath.Join(t.TempDir(), "people.sqlite"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	store := people.NewStore(m)
	require.NoError(t, store.EnsureSchema(ctx))

	bus := events.NewBus(logger)
	list := NewListScreen(store, bus, logger)
	t.Cleanup(list.Close)
	require.NoError(t, list.Load(ctx))

	return &fixture{store: store, bus: bus, list: list}
}

func TestListScreen_LoadEmpty(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.list.People())
	assert.Equal(t, 0, f.list.Result().Len())
	assert.Len(t, f.list.Result().Columns, 4)
}

func TestEditScreen_AddReloadsList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	form := f.list.NewForm()
	assert.True(t, form.IsNew())
	form.FirstName = "  Ada "
	form.LastName = "Lovelace"
	form.Age = "36"

	saved, err := form.Save(ctx)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, saved.ID, form.RecordID)

	// the list reloaded through the bus without an explicit Load
	rows := f.list.People()
	require.Len(t, rows, 1)
	assert.Equal(t, people.Person{ID: saved.ID, FirstName: "Ada", LastName: "Lovelace", Age: 36}, rows[0])
}

func TestEditScreen_EditUpdatesOnlyTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.store.Insert(ctx, people.Person{FirstName: "Ada", LastName: "Lovelace", Age: 36})
	require.NoError(t, err)
	b, err := f.store.Insert(ctx, people.Person{FirstName: "Alan", LastName: "Turing", Age: 41})
	require.NoError(t, err)

	form, err := f.list.EditForm(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, form.IsNew())
	assert.Equal(t, "Ada", form.FirstName)
	assert.Equal(t, "36", form.Age)

	form.Age = "37"
	_, err = form.Save(ctx)
	require.NoError(t, err)

	rows := f.list.People()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(37), rows[0].Age)
	assert.Equal(t, b, rows[1])
}

func TestEditScreen_InvalidAge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var got []events.Event
	f.bus.Subscribe(func(_ context.Context, ev events.Event) { got = append(got, ev) })

	for _, age := range []string{"", "abc", "-1", "3.5"} {
		form := f.list.NewForm()
		form.FirstName = "x"
		form.Age = age
		_, err := form.Save(ctx)
		assert.ErrorIs(t, err, ErrInvalidAge, age)
	}

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Empty(t, got)
}

func TestEditScreen_MissingRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.list.EditForm(context.Background(), 42)
	assert.ErrorIs(t, err, people.ErrNotFound)
}

func TestListScreen_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var got []events.Event
	f.bus.Subscribe(func(_ context.Context, ev events.Event) { got = append(got, ev) })

	for _, name := range []string{"a", "b"} {
		form := f.list.NewForm()
		form.FirstName = name
		form.LastName = name
		form.Age = "1"
		_, err := form.Save(ctx)
		require.NoError(t, err)
	}
	rows := f.list.People()
	require.Len(t, rows, 2)

	require.NoError(t, f.list.Delete(ctx, rows[0].ID))
	after := f.list.People()
	require.Len(t, after, 1)
	assert.Equal(t, rows[1], after[0])

	require.Len(t, got, 3)
	assert.Equal(t, events.PersonCreated, got[0].Kind)
	assert.Equal(t, events.PersonDeleted, got[2].Kind)
	assert.Equal(t, rows[0].ID, got[2].PersonID)

	assert.ErrorIs(t, f.list.Delete(ctx, rows[0].ID), people.ErrNotFound)
}

func TestListScreen_CloseStopsReloading(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.list.Close()

	_, err := f.store.Insert(ctx, people.Person{FirstName: "a", LastName: "b", Age: 2})
	require.NoError(t, err)
	f.bus.Publish(ctx, events.New(events.PersonCreated, 1))

	assert.Empty(t, f.list.People())
}

// failingList fails the list query once fail is set; every other
// statement reaches the real database.
type failingList struct {
	people.DB
	fail bool
}

func (d *failingList) Query(ctx context.Context, query string, args ...any) (*types.QueryResult, error) {
	if d.fail && query == people.SelectAll {
		return nil, errors.New("disk I/O error")
	}
	return d.DB.Query(ctx, query, args...)
}

func TestListScreen_DeleteReloadFails(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()

	m, err := dbmanager.Open(ctx, config.DatabaseConfig{
		Type: config.DatabaseSQLite,
		DSN:  filepath.Join(t.TempDir(), "people.sqlite"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	db := &failingList{DB: m}
	store := people.NewStore(db)
	require.NoError(t, store.EnsureSchema(ctx))

	bus := events.NewBus(logger)
	list := NewListScreen(store, bus, logger)
	t.Cleanup(list.Close)

	p, err := store.Insert(ctx, people.Person{FirstName: "Ada", LastName: "Lovelace", Age: 36})
	require.NoError(t, err)
	require.NoError(t, list.Load(ctx))

	var got []events.Event
	bus.Subscribe(func(_ context.Context, ev events.Event) { got = append(got, ev) })

	db.fail = true
	require.NoError(t, list.Delete(ctx, p.ID))

	require.Len(t, got, 1)
	assert.Equal(t, events.PersonDeleted, got[0].Kind)
	assert.Equal(t, p.ID, got[0].PersonID)

	// the row is gone even though the screen still shows it
	_, err = store.Get(ctx, p.ID)
	assert.ErrorIs(t, err, people.ErrNotFound)
	assert.Equal(t, []people.Person{p}, list.People())

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "reload after delete failed", hook.LastEntry().Message)
}
