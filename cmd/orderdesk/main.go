package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/backend"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/broker"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/channel"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/console"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/control"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/desk"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/journal"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/notify"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository/postgresql"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/session"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/sound"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

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

	if err := run(cfg, log); err != nil {
		log.Error("orderdesk stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("orderdesk gracefully stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sessions, err := session.NewFileStore(cfg.Session.File)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	token, err := sessions.Token()
	if err != nil {
		return fmt.Errorf("read session token: %w", err)
	}

	api, err := backend.NewClient(cfg.Backend.URL, sessions, cfg.Backend.Timeout, log)
	if err != nil {
		return err
	}

	recent := cache.NewOrderCache(cfg.Desk.RecentOrders, log)
	recorders := []desk.DecisionRecorder{recent}
	var auditSink control.AuditSink

	var publisher *broker.Publisher
	if cfg.Journal.Enabled {
		database, err := db.NewDb(ctx, cfg.Journal.DSN)
		if err != nil {
			return fmt.Errorf("database init: %w", err)
		}
		defer database.Close()

		if err := db.EnsureSchema(ctx, database); err != nil {
			return err
		}

		outboxRepo := postgresql.NewOutboxTaskRepo(cfg.Broker.MaxAttempts)
		jrnl := journal.New(
			database,
			postgresql.NewDecisionRepo(database),
			outboxRepo,
			postgresql.NewAuditRepo(database),
			cfg.Broker.Topic,
			log,
		)
		recorders = append(recorders, jrnl)
		auditSink = jrnl

		if err := recent.LoadInitialData(ctx, jrnl); err != nil {
			log.Warn("recent orders not restored", zap.Error(err))
		}

		producer, err := newProducer(cfg.Broker)
		if err != nil {
			return err
		}
		if producer != nil {
			publisher = broker.NewPublisher(database, outboxRepo, producer, broker.PublisherConfig{
				PollInterval: cfg.Broker.PollInterval,
				BatchSize:    cfg.Broker.BatchSize,
				MaxAttempts:  cfg.Broker.MaxAttempts,
			}, log)
			// the publisher owns the producer; this only matters when startup
			// fails before the shutdown goroutine runs
			defer publisher.Shutdown(context.Background())
		}
	}

	log.Info("waiting for restaurant identity")
	identity, err := backend.ResolveIdentity(ctx, api, cfg.Backend.ProfileRetry, log)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	log.Info("restaurant identity resolved", zap.String("restaurant_id", identity))

	player := newPlayer(cfg.Sound)
	cue := sound.NewCue(player, log)
	defer cue.Close()
	alert := sound.NewLoop(player, cfg.Sound.LoopGap, log)
	defer alert.Stop()

	manager, err := channel.Connect(identity, token, channel.Config{
		BackendURL: cfg.Backend.URL,
		Namespace:  cfg.Socket.Namespace,
		Socket:     cfg.SocketOptions(),
	}, log)
	if err != nil {
		return fmt.Errorf("connect channel: %w", err)
	}
	defer manager.Close()

	receiver := notify.NewReceiver(manager, cue, recent, log)
	events, unsubscribe := receiver.Subscribe()
	defer unsubscribe()

	controller := desk.NewController(api, alert, desk.Options{
		RestaurantID:     identity,
		Window:           cfg.Desk.Window,
		PrepMinutes:      cfg.Desk.PrepMinutes,
		Policy:           cfg.TimeoutPolicy(),
		AutoRejectReason: model.RejectReason(cfg.Desk.AutoRejectReason),
		CommandTimeout:   cfg.Desk.CommandTimeout,
		Holder:           receiver,
		Recorders:        recorders,
	}, log)
	defer controller.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		controller.Run(gctx, events)
		return nil
	})

	if publisher != nil {
		g.Go(func() error {
			publisher.Run(gctx)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			publisher.Shutdown(shutdownCtx)
			return nil
		})
	}

	if cfg.Control.Enabled {
		opts := control.Options{
			Username:     cfg.Control.Username,
			PasswordHash: cfg.Control.PasswordHash,
			AuditWorkers: cfg.Control.AuditWorkers,
			AuditBatch:   cfg.Control.AuditBatch,
			AuditFlush:   cfg.Control.AuditFlush,
			AuditSink:    auditSink,
		}
		if cfg.Metrics.Enabled {
			opts.MetricsPath = cfg.Metrics.Path
		}
		srv := control.New(controller, recent, manager, opts, log)

		g.Go(func() error {
			return srv.Run(gctx, cfg.Control.Addr)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if cfg.Control.Console {
		g.Go(func() error {
			err := console.New(controller, os.Stdin, os.Stdout).Run(gctx)
			if errors.Is(err, console.ErrExit) {
				log.Info("exit requested from console")
				cancel()
				return nil
			}
			return err
		})
	}

	log.Info("orderdesk started",
		zap.String("restaurant_id", identity),
		zap.Bool("control", cfg.Control.Enabled),
		zap.Bool("journal", cfg.Journal.Enabled),
		zap.String("broker", cfg.Broker.Kind),
	)

	err = g.Wait()
	log.Info("shutting down")
	return err
}

// newProducer returns nil when no broker is configured.
func newProducer(cfg config.BrokerConfig) (broker.Producer, error) {
	switch cfg.Kind {
	case config.BrokerKafka:
		return broker.NewKafkaProducer(cfg.Brokers), nil
	case config.BrokerAMQP:
		p, err := broker.NewAMQPProducer(cfg.AMQPURL, cfg.Exchange)
		if err != nil {
			return nil, fmt.Errorf("amqp producer: %w", err)
		}
		return p, nil
	case config.BrokerConsole:
		return broker.NewConsoleProducer(os.Stdout), nil
	default:
		return nil, nil
	}
}

func newPlayer(cfg config.SoundConfig) sound.Player {
	switch {
	case len(cfg.Command) > 0:
		return sound.CommandPlayer{Command: cfg.Command}
	case cfg.Bell:
		return sound.BellPlayer{W: os.Stdout}
	default:
		return sound.NopPlayer{}
	}
}
