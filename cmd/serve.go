package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ordergw/internal/audit"
	"ordergw/internal/auth"
	"ordergw/internal/config"
	"ordergw/internal/db"
	httpSrv "ordergw/internal/http"
	"ordergw/internal/logger"
	"ordergw/internal/ratelimit"
	"ordergw/internal/service"
	"ordergw/internal/store"
	"ordergw/internal/store/memstore"
	"ordergw/internal/store/sqlstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level)
		defer logger.Sync()

		// auth core
		records := make([]auth.KeyRecord, 0, len(cfg.Auth.Keys))
		for _, k := range cfg.Auth.Keys {
			records = append(records, auth.KeyRecord{Key: k.Key, Role: auth.Role(k.Role)})
		}
		registry, err := auth.NewRegistry(records)
		if err != nil {
			return fmt.Errorf("key registry: %w", err)
		}
		tracker := auth.NewTracker(cfg.Auth.MaxFailedAttempts, cfg.Auth.FailureWindow, cfg.Auth.BlockDuration)
		fp := auth.NewFingerprinter(cfg.Auth.FingerprintSecret)

		var sink *audit.Logger
		if len(cfg.Audit.Brokers) > 0 {
			sink = audit.New(logger.Log, audit.NewKafkaWriter(cfg.Audit.Brokers, cfg.Audit.Topic))
		} else {
			sink = audit.New(logger.Log, nil)
		}
		defer func() { _ = sink.Close() }()

		gate := auth.NewGate(registry, tracker, fp, sink)

		// storage backend
		factory, closeStore, err := buildStorage(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		// rate limiters
		globalLim := ratelimit.NewBucket(cfg.RateLimit.Global.RPS, cfg.RateLimit.Global.Burst)
		janitorCtx, stopJanitor := context.WithCancel(context.Background())
		defer stopJanitor()
		globalLim.StartJanitor(janitorCtx)

		var writeLim ratelimit.Limiter
		if cfg.RateLimit.Write.Backend == "redis" {
			rdb, err := db.NewRedisClient(cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis connect: %w", err)
			}
			defer func() { _ = rdb.Close() }()
			writeLim = ratelimit.NewRedisWindow(rdb, "rl:write:", cfg.RateLimit.Write.Limit, cfg.RateLimit.Write.Window)
		} else {
			writeLim = ratelimit.NewWindow(cfg.RateLimit.Write.Limit, cfg.RateLimit.Write.Window)
		}

		server := httpSrv.NewServer(httpSrv.Deps{
			Gate:      gate,
			GlobalLim: globalLim,
			WriteLim:  writeLim,
			Customers: service.NewCustomers(factory),
			Products:  service.NewProducts(factory),
			Orders:    service.NewOrders(factory),
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil {
				logger.Log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}

// buildStorage selects the unit-of-work factory once from configuration.
func buildStorage(cfg config.Config) (store.Factory, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memstore.New().Factory(), func() {}, nil
	case "mysql":
		sqlDB, err := db.NewMySQLConnection(cfg.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return sqlstore.New(sqlDB).Factory(), func() { _ = sqlDB.Close() }, nil
	case "sqlite":
		sqlDB, err := db.NewSQLiteConnection(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite open: %w", err)
		}
		// schema statements are IF NOT EXISTS, safe on every start
		if _, err := sqlDB.Exec(sqlstore.SQLiteSchema); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("sqlite schema: %w", err)
		}
		return sqlstore.New(sqlDB).Factory(), func() { _ = sqlDB.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
