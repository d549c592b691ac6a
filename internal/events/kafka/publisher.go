package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/alexanderjulianmartinez/peopledb/internal/config"
	"github.com/alexanderjulianmartinez/peopledb/internal/events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// publishTimeout bounds one Publish. Sinks run inline with the save that
// raised the event, so an unreachable broker must fail fast.
const publishTimeout = 2 * time.Second

// Publisher forwards person events to a Kafka topic, keyed by person id so
// every change to one person lands on the same partition.
type Publisher struct {
	topic   string
	writer  messageWriter
	timeout time.Duration
}

var _ events.Sink = (*Publisher)(nil)

func New(cfg config.EventsConfig) (*Publisher, error) {
	brokers := []string{}
	for _, b := range cfg.Brokers {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers provided")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: publishTimeout,
		MaxAttempts:  1,
	}
	return &Publisher{topic: cfg.Topic, writer: w, timeout: publishTimeout}, nil
}

func (p *Publisher) Name() string {
	return "kafka:" + p.topic
}

func (p *Publisher) Publish(ctx context.Context, ev events.Event) error {
	msg, err := Message(ev)
	if err != nil {
		return err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Message encodes ev the way it is written to the topic.
func Message(ev events.Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event %s: %w", ev.ID, err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.PersonID, 10)),
		Value: value,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	}, nil
}
