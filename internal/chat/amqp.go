package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/letsplay-client/internal/session"
)

// One topic exchange carries every reservation room; queues bind their
// own booking.<id> routing key.
const exchangeName = "letsplay.chat"

// Dialer opens chat channels against the broker. Each Open dials its
// own connection so channels stay independently closable.
type Dialer struct {
	url     string
	id      session.Identity
	history HistoryFetcher
}

func NewDialer(amqpURL string, id session.Identity, history HistoryFetcher) *Dialer {
	return &Dialer{url: amqpURL, id: id, history: history}
}

// Open subscribes to one reservation's room and returns the live
// channel. The queue is server-named, exclusive and auto-deleted, so
// closing the connection releases everything broker-side.
func (d *Dialer) Open(ctx context.Context, reservationID int64) (*Channel, error) {
	conn, err := amqp.Dial(d.url)
	if err != nil {
		return nil, fmt.Errorf("chat: dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("chat: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("chat: declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("chat: declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, Topic(reservationID), exchangeName, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("chat: bind %s: %w", Topic(reservationID), err)
	}

	deliveries, err := ch.Consume(q.Name, "letsplay-"+uuid.NewString(), true, true, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("chat: consume: %w", err)
	}

	tr := &amqpTransport{conn: conn, ch: ch}

	raw := make(chan []byte, 32)
	go func() {
		defer close(raw)
		for d := range deliveries {
			raw <- d.Body
		}
	}()

	return newChannel(reservationID, d.id, tr, raw, d.history), nil
}

type amqpTransport struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (t *amqpTransport) publish(ctx context.Context, topic string, body []byte) error {
	return t.ch.PublishWithContext(ctx,
		exchangeName,
		topic,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.NewString(),
			Timestamp:   time.Now().UTC(),
			Body:        body,
		},
	)
}

func (t *amqpTransport) closeNotify() <-chan error {
	errs := make(chan error, 1)
	closed := t.conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil {
			errs <- amqpErr
		}
		close(errs)
	}()
	return errs
}

func (t *amqpTransport) close() error {
	return t.conn.Close()
}
