package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/application"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/config"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/logging"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/memcache"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/mysql"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/quairpc"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/restapi"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/sqlite"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/telemetry"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/interfaces/httpapi"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	shutdownTracing, err := telemetry.InitTracer(context.Background(), "quaiscan-dashboard", cfg.OtelEndpoint)
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

	store, pinger := buildStore(cfg)

	var rest *restapi.Client
	if store == nil && cfg.RESTURL != "" {
		client, err := restapi.NewClient(restapi.Config{
			BaseURL: cfg.RESTURL,
			APIKey:  cfg.RESTAPIKey,
		})
		if err != nil {
			slog.Warn("rest fallback disabled", "err", err)
		} else {
			rest = client
		}
	}

	cache := memcache.New()
	metrics := httpapi.NewMetrics()

	facadeCfg := application.FacadeConfig{
		Chain:           rpcClient,
		Store:           store,
		Cache:           cache,
		ReferenceWallet: cfg.ReferenceWallet,
		Observer:        metrics,
	}
	if rest != nil {
		facadeCfg.REST = rest
	}
	facade, err := application.NewFacade(facadeCfg)
	if err != nil {
		log.Fatalf("facade error: %v", err)
	}

	httpServer, err := httpapi.NewServer(cfg, facade, pinger, rpcClient, metrics, httpapi.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	if err != nil {
		log.Fatalf("http server error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("dashboard listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver != "")
	if err := httpServer.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("http server error: %v", err)
	}
}

// buildStore constructs the configured store adapter, wrapping mysql with
// the Redis read cache when available. A nil store is a valid mode; the
// facade degrades to the remaining tiers.
func buildStore(cfg config.Config) (application.Store, httpapi.Pinger) {
	switch cfg.StoreDriver {
	case config.StoreDriverMySQL:
		repo, err := mysql.NewRepository(cfg.DBDSN)
		if err != nil {
			slog.Warn("mysql store disabled", "err", err)
			return nil, nil
		}
		cached, err := mysql.NewCachedRepository(repo, mysql.CacheConfig{Addr: cfg.RedisAddr})
		if err != nil {
			slog.Warn("redis cache disabled", "err", err)
			return repo, repo
		}
		return cached, cached
	case config.StoreDriverSQLite:
		repo, err := sqlite.NewRepository(cfg.SQLitePath)
		if err != nil {
			slog.Warn("sqlite store disabled", "err", err)
			return nil, nil
		}
		return repo, repo
	default:
		return nil, nil
	}
}
