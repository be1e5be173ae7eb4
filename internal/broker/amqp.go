package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrNack = errors.New("publish NACK from broker")

// AMQPProducer publishes to a durable topic exchange with publisher confirms.
// The topic becomes the routing key.
type AMQPProducer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	acks     <-chan amqp.Confirmation
	exchange string
	mu       sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

func NewAMQPProducer(url, exchange string) (*AMQPProducer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &AMQPProducer{conn: conn, ch: ch, acks: acks, exchange: exchange}, nil
}

func (p *AMQPProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.PublishWithContext(ctx, p.exchange, topic, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    string(key),
		Timestamp:    time.Now().UTC(),
		Body:         value,
	})
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}

	select {
	case conf, ok := <-p.acks:
		if !ok {
			return errors.New("amqp channel closed before confirm")
		}
		if conf.Ack {
			return nil
		}
		return ErrNack
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the channel and connection. Later calls return the first
// result.
func (p *AMQPProducer) Close() error {
	p.closeOnce.Do(func() {
		var errs []error
		if p.ch != nil {
			errs = append(errs, p.ch.Close())
		}
		if p.conn != nil && !p.conn.IsClosed() {
			errs = append(errs, p.conn.Close())
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}
