package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/bookingflow/config"
	"github.com/Domenick1991/bookingflow/internal/backend"
	"github.com/Domenick1991/bookingflow/internal/bootstrap"
	"github.com/Domenick1991/bookingflow/internal/draft"
	"github.com/Domenick1991/bookingflow/internal/kafka"
	"github.com/Domenick1991/bookingflow/internal/persist"
	"github.com/Domenick1991/bookingflow/internal/service/flow"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	defer cleanup()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	client := backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second, log)
	drafts := draft.NewManager(store)

	flowService := flow.NewService(
		drafts,
		client,
		producer,
		cfg.Kafka.FlowEventsTopic,
		cfg.Flow.Currency,
		log,
		flow.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		flow.WithRedirectURLs(cfg.Flow.SuccessURLBase, cfg.Flow.CancelURLBase),
	)

	if err := bootstrap.Run(ctx, cfg, flowService, log); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func newStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (persist.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		return persist.NewPGStore(pool, log), pool.Close, nil
	default:
		ttl := time.Duration(cfg.Flow.DraftTTLHours) * time.Hour
		return persist.NewRedisStore(cfg.Redis, ttl, log), func() {}, nil
	}
}
