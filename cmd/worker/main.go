package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/bookingflow/config"
	"github.com/Domenick1991/bookingflow/internal/backend"
	"github.com/Domenick1991/bookingflow/internal/draft"
	"github.com/Domenick1991/bookingflow/internal/email"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store persist.Store
	if cfg.Storage.Driver == "postgres" {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		store = persist.NewPGStore(pool, log)
	} else {
		ttl := time.Duration(cfg.Flow.DraftTTLHours) * time.Hour
		store = persist.NewRedisStore(cfg.Redis, ttl, log)
	}

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
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	sender := email.NewSender(log)

	go func() {
		if err := consumer.Consume(ctx, sender.Send); err != nil {
			log.WithField("error", err).Info("consumer stopped")
		}
	}()

	sweep := time.NewTicker(time.Duration(cfg.Worker.RefreshSweepMinutes) * time.Minute)
	defer sweep.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweep.C:
			refreshed, err := flowService.RefreshPendingSessions(ctx)
			if err != nil {
				log.WithField("error", err).Warn("refresh sweep failed")
				continue
			}
			if refreshed > 0 {
				log.WithField("count", refreshed).Info("refreshed pending bookings")
			}
		case s := <-sig:
			log.WithField("signal", s.String()).Info("shutting down")
			return
		}
	}
}
