package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange events are published to. The routing
// key is the event type.
const ExchangeName = "cart_catalog"

const (
	dialAttempts = 5
	dialWait     = 2 * time.Second
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes events as JSON to a topic exchange.
type RabbitPublisher struct {
	conn *amqp.Connection
	ch   channel
}

// DialRabbit connects, opens a channel and declares the exchange, retrying
// the dial a few times while the broker starts up.
func DialRabbit(url string, log *slog.Logger) (*RabbitPublisher, error) {
	var conn *amqp.Connection
	err := retry(dialAttempts, dialWait, time.Sleep, func(attempt int) error {
		var err error
		conn, err = amqp.Dial(url)
		if err != nil {
			log.Warn("rabbitmq dial failed", slog.Int("attempt", attempt), slog.Any("err", err))
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err := ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declare exchange")
	}

	return &RabbitPublisher{conn: conn, ch: ch}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	err = p.ch.PublishWithContext(ctx,
		ExchangeName,   // exchange
		string(e.Type), // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   e.At,
			Body:        body,
		},
	)
	if err != nil {
		return errors.Wrap(err, "publish event")
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// retry calls fn up to attempts times, sleeping between failed attempts but
// not after the last one.
func retry(attempts int, wait time.Duration, sleep func(time.Duration), fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt < attempts {
			sleep(wait)
		}
	}
	return err
}
