package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/application"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/config"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/kafka"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/logging"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/memcache"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/mysql"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/quairpc"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/sqlite"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/telemetry"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if !cfg.StoreConfigured() {
		log.Fatalf("syncer requires a store: set DB_DSN or SQLITE_PATH")
	}

	shutdownTracing, err := telemetry.InitTracer(context.Background(), "quaiscan-syncer", cfg.OtelEndpoint)
	if err != nil {
		slog.Warn("tracing init failed", "err", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				slog.Warn("tracing shutdown failed", "err", err)
			}
		}()
	}

	rpcClient, err := quairpc.NewClient(quairpc.Config{
		URL:     cfg.RPCURL,
		Timeout: cfg.RPCTimeout,
	})
	if err != nil {
		log.Fatalf("rpc error: %v", err)
	}

	var store application.Store
	switch cfg.StoreDriver {
	case config.StoreDriverMySQL:
		repo, err := mysql.NewRepository(cfg.DBDSN)
		if err != nil {
			log.Fatalf("mysql error: %v", err)
		}
		cached, err := mysql.NewCachedRepository(repo, mysql.CacheConfig{Addr: cfg.RedisAddr})
		if err != nil {
			slog.Warn("redis cache disabled", "err", err)
			store = repo
		} else {
			store = cached
		}
	case config.StoreDriverSQLite:
		repo, err := sqlite.NewRepository(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite error: %v", err)
		}
		store = repo
	}

	var publisher application.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("kafka error: %v", err)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				slog.Warn("kafka close failed", "err", err)
			}
		}()
		publisher = producer
	}

	syncer, err := application.NewSyncer(application.SyncerConfig{
		Chain:           rpcClient,
		Store:           store,
		Cache:           memcache.New(),
		Publisher:       publisher,
		ReferenceWallet: cfg.ReferenceWallet,
		BlockCount:      cfg.SyncBlockCount,
	})
	if err != nil {
		log.Fatalf("syncer error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("syncer started", "interval", cfg.SyncInterval.String(), "blocks", cfg.SyncBlockCount, "wallet", cfg.ReferenceWallet)
	syncer.Run(ctx, cfg.SyncInterval)
	slog.Info("syncer stopped")
}
