package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"go.uber.org/zap"
)

const groupID = "order-decisions-consumer-group"

func main() {
	configPath := flag.String("config", os.Getenv("ORDERDESK_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config error:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logger init error:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Broker.Brokers,
		GroupID:        groupID,
		Topic:          cfg.Broker.Topic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		log.Info("closing kafka reader")
		if err := r.Close(); err != nil {
			log.Error("error closing kafka reader", zap.Error(err))
		}
	}()

	log.Info("consumer connected",
		zap.String("topic", cfg.Broker.Topic),
		zap.Strings("brokers", cfg.Broker.Brokers),
	)

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shutdown signal received, stopping consumer")
				return
			}
			log.Error("error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		var d model.Decision
		if err := json.Unmarshal(m.Value, &d); err != nil {
			log.Warn("skipping malformed decision event",
				zap.Int64("offset", m.Offset),
				zap.ByteString("value", m.Value),
				zap.Error(err),
			)
			continue
		}

		log.Info("order decision",
			zap.String("restaurant_id", d.RestaurantID),
			zap.String("order_id", d.OrderID),
			zap.String("kind", string(d.Kind)),
			zap.Int("prep_minutes", d.PrepMinutes),
			zap.String("reason", string(d.Reason)),
			zap.Bool("automatic", d.Automatic),
			zap.Time("decided_at", d.DecidedAt),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
	}
}
