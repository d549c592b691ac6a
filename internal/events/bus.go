package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	PersonCreated Kind = "created"
	PersonUpdated Kind = "updated"
	PersonDeleted Kind = "deleted"
)

// Event signals that editing of a person finished and was persisted.
type Event struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	PersonID int64     `json:"person_id"`
	At       time.Time `json:"at"`
}

func New(kind Kind, personID int64) Event {
	return Event{
		ID:       uuid.NewString(),
		Kind:     kind,
		PersonID: personID,
		At:       time.Now().UTC(),
	}
}

type Handler func(ctx context.Context, ev Event)

// Sink receives every published event after the in-process handlers ran.
type Sink interface {
	Name() string
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers []subscription
	sinks    []Sink
	log      logrus.FieldLogger
}

type subscription struct {
	id int
	fn Handler
}

func NewBus(logger logrus.FieldLogger, sinks ...Sink) *Bus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Bus{log: logger, sinks: sinks}
}

// Subscribe registers fn and returns a func that removes it again.
func (b *Bus) Subscribe(fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.handlers {
			if s.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish hands ev to every handler, then to every sink. A failing sink
// is logged and does not stop delivery.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.handlers))
	for i, s := range b.handlers {
		handlers[i] = s.fn
	}
	sinks := b.sinks
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(ctx, ev)
	}

	for _, sink := range sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{
				"sink":      sink.Name(),
				"event":     ev.Kind,
				"person_id": ev.PersonID,
			}).Warn("event sink publish failed")
		}
	}
}

func (b *Bus) Close() error {
	var first error
	for _, sink := range b.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
