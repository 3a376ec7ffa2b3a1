package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-backend/configs"
	v1 "todo-backend/internal/api/v1"
	"todo-backend/internal/auth"
	"todo-backend/internal/config"
	"todo-backend/internal/repository"
	"todo-backend/pkg/cache"
	"todo-backend/pkg/database"
	"todo-backend/pkg/logger"

	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load config
	cfg := configs.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Inisialisasi logger
	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		log.Fatal(err)
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application",
		zap.String("time", time.Now().Format(time.RFC3339)),
		zap.String("environment", cfg.AppEnv),
		zap.String("version", version),
	)

	if err := run(cfg); err != nil {
		logger.ErrorLogger.Error("Application stopped", zap.Error(err))
		logger.SyncLoggers()
		os.Exit(1)
	}
}

func run(cfg configs.Config) error {
	config.AppEnv = cfg.AppEnv
	config.Version = version
	config.Tokens = auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Inisialisasi database
	db, err := database.ConnectDB(cfg, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	config.DB = db
	logger.SystemLogger.Info("Database Connected", zap.String("database", cfg.DBName))

	if err := repository.Migrate(db); err != nil {
		return err
	}

	// Redis bersifat opsional, tanpa REDIS_HOST aplikasi berjalan tanpa cache
	if cfg.RedisHost != "" {
		rdb, err := database.ConnectRedis(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		config.Cache = cache.New(rdb, cfg.CacheTTL)
		logger.SystemLogger.Info("Redis Connected", zap.String("addr", cfg.RedisAddr()))
	}

	app := v1.NewApp(cfg.RateLimitMax)

	errCh := make(chan error, 1)
	go func() {
		logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.AppPort))
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.AppPort))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.SystemLogger.Info("Shutting down", zap.String("signal", sig.String()))
	}
	return app.ShutdownWithTimeout(10 * time.Second)
}
