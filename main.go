package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thai-travel-portal/internal/auth"
	"thai-travel-portal/internal/config"
	"thai-travel-portal/internal/database"
	"thai-travel-portal/internal/logger"
	"thai-travel-portal/internal/middleware"
	"thai-travel-portal/internal/notify"
	"thai-travel-portal/internal/router"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	// load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureDir(cfg.Backup.Dir); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	// init database
	db, err := database.Init(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := database.SeedAdmin(db, cfg.Admin, cfg.Security.BcryptCost, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if cfg.Security.EncryptionKey == "" {
		log.Warn("security.encryption_key is empty, backups use a derived empty key")
	}

	// notification view counters
	var (
		counter notify.ViewCounter = notify.NewMemoryCounter()
		rdb     *redis.Client
	)
	if cfg.Redis.Enabled {
		rdb, err = database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		counter = notify.NewRedisCounter(rdb, time.Duration(cfg.Redis.ViewTTLHours)*time.Hour)
		log.Info("view counters in redis", zap.String("address", cfg.Redis.Address))
	}

	store := auth.NewStore(db, cfg.Session.TTL(), log)
	go store.RunSweeper(ctx, time.Hour)

	limiter := middleware.NewRateLimiter(cfg.Security.LoginRate, cfg.Security.LoginBurst)
	go limiter.RunCleanup(ctx, 10*time.Minute)

	// setup router
	r := router.SetupRouter(router.Deps{
		Config:       cfg,
		DB:           db,
		Log:          log,
		Store:        store,
		Counter:      counter,
		Redis:        rdb,
		LoginLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
