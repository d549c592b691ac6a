package screens

import (
	"context"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/peopledb/internal/events"
	"github.com/alexanderjulianmartinez/peopledb/internal/people"
	"github.com/alexanderjulianmartinez/peopledb/pkg/types"
)

// ListScreen shows every person. It reloads whenever an edit screen
// reports that editing finished.
type ListScreen struct {
	store *people.Store
	bus   *events.Bus
	log   logrus.FieldLogger

	mu     sync.RWMutex
	result *types.QueryResult
	people []people.Person

	unsubscribe func()
}

func NewListScreen(store *people.Store, bus *events.Bus, logger logrus.FieldLogger) *ListScreen {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	l := &ListScreen{
		store:  store,
		bus:    bus,
		log:    logger.WithField("screen", "list"),
		result: &types.QueryResult{},
	}
	l.unsubscribe = bus.Subscribe(l.editingFinished)
	return l
}

// Load runs the select-all query and replaces what the screen shows.
// On error the previous rows stay in place.
func (l *ListScreen) Load(ctx context.Context) error {
	res, err := l.store.AllResult(ctx)
	if err != nil {
		return err
	}
	rows, err := people.FromResult(res)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.result = res
	l.people = rows
	l.mu.Unlock()
	return nil
}

func (l *ListScreen) People() []people.Person {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]people.Person(nil), l.people...)
}

// Result is the raw table behind the last successful Load.
func (l *ListScreen) Result() *types.QueryResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.result
}

// Delete removes the record, announces it and reloads. Once the row is
// gone the delete has happened: a failed reload is logged and the
// previous rows stay on screen.
func (l *ListScreen) Delete(ctx context.Context, id int64) error {
	if err := l.store.Delete(ctx, id); err != nil {
		return err
	}
	l.log.WithField("person_id", id).Info("person deleted")
	l.bus.Publish(ctx, events.New(events.PersonDeleted, id))

	if err := l.Load(ctx); err != nil {
		l.log.WithError(err).WithField("person_id", id).Error("reload after delete failed")
	}
	return nil
}

// NewForm opens an empty edit screen for adding a person.
func (l *ListScreen) NewForm() *EditScreen {
	return &EditScreen{
		store: l.store,
		bus:   l.bus,
		log:   l.log.WithField("screen", "edit"),
	}
}

// EditForm opens an edit screen pre-filled with the stored record.
func (l *ListScreen) EditForm(ctx context.Context, id int64) (*EditScreen, error) {
	p, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	form := l.NewForm()
	form.RecordID = p.ID
	form.FirstName = p.FirstName
	form.LastName = p.LastName
	form.Age = strconv.FormatInt(p.Age, 10)
	return form, nil
}

func (l *ListScreen) Close() {
	l.unsubscribe()
}

func (l *ListScreen) editingFinished(ctx context.Context, ev events.Event) {
	if ev.Kind == events.PersonDeleted {
		return
	}
	if err := l.Load(ctx); err != nil {
		l.log.WithError(err).WithField("person_id", ev.PersonID).Error("reload after edit failed")
	}
}
