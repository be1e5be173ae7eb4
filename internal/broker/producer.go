//go:generate mockgen -source ./producer.go -destination=./mocks/producer.go -package=mock_broker
package broker

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

type Producer interface {
	SendMessage(ctx context.Context, topic string, key []byte, value []byte) error
	Close() error
}

// ConsoleProducer writes every message to W, stdout by default.
type ConsoleProducer struct {
	W  io.Writer
	mu sync.Mutex
}

func NewConsoleProducer(w io.Writer) *ConsoleProducer {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleProducer{W: w}
}

func (p *ConsoleProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.W, "--- %s ---\nKey: %s\nValue: %s\n", topic, key, value)
	return err
}

func (p *ConsoleProducer) Close() error {
	return nil
}
