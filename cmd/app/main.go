package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/db"
	"taskmanager/internal/events"
	httpServer "taskmanager/internal/http"
	"taskmanager/internal/http/handlers"
	"taskmanager/internal/logger"
	"taskmanager/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", false)
		logger.Fatal("load config", zap.Error(err))
	}

	log := logger.Init(cfg.LogLevel, cfg.LogJSON)
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	stores, err := repository.Open(ctx, cfg, log)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer stores.Close()

	checks := map[string]handlers.Checker{"store": stores.Pinger}

	// rate limiting falls back to process memory without redis
	rdb, err := db.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		logger.Warn("redis unavailable, rate limits are per process", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	var broker events.Publisher
	if cfg.AMQP.URL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			logger.Warn("amqp unavailable, task events stay local", zap.Error(err))
		} else {
			defer pub.Close()
			broker = pub
			checks["amqp"] = handlers.PingFunc(func(context.Context) error {
				if !pub.IsConnected() {
					return errors.New("connection closed")
				}
				return nil
			})
		}
	}

	r, hub := httpServer.NewRouter(httpServer.Deps{
		Config:  cfg,
		Log:     log,
		Users:   stores.Users,
		Tasks:   stores.Tasks,
		Redis:   rdb,
		Broker:  broker,
		Checks:  checks,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", zap.String("port", cfg.AppPort), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
