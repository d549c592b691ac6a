package screens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/peopledb/internal/events"
	"github.com/alexanderjulianmartinez/peopledb/internal/people"
)

var ErrInvalidAge = errors.New("age must be a whole number of years")

// EditScreen is the add/edit form. RecordID is zero when adding.
type EditScreen struct {
	RecordID  int64
	FirstName string
	LastName  string
	Age       string

	store *people.Store
	bus   *events.Bus
	log   logrus.FieldLogger
}

func (e *EditScreen) IsNew() bool {
	return e.RecordID == 0
}

// Save inserts or updates the record and then announces that editing
// finished. Nothing is written when a field does not parse.
func (e *EditScreen) Save(ctx context.Context) (people.Person, error) {
	age, err := parseAge(e.Age)
	if err != nil {
		return people.Person{}, err
	}

	p := people.Person{
		ID:        e.RecordID,
		FirstName: strings.TrimSpace(e.FirstName),
		LastName:  strings.TrimSpace(e.LastName),
		Age:       age,
	}

	kind := events.PersonUpdated
	if e.IsNew() {
		kind = events.PersonCreated
		if p, err = e.store.Insert(ctx, p); err != nil {
			return people.Person{}, err
		}
		e.RecordID = p.ID
	} else if err := e.store.Update(ctx, p); err != nil {
		return people.Person{}, err
	}

	e.log.WithFields(logrus.Fields{"person_id": p.ID, "event": kind}).Info("person saved")
	e.bus.Publish(ctx, events.New(kind, p.ID))
	return p, nil
}

func parseAge(s string) (int64, error) {
	s = strings.TrimSpace(s)
	age, err := strconv.ParseInt(s, 10, 64)
	if err != nil || age < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAge, s)
	}
	return age, nil
}
