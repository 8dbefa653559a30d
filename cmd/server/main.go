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

	"wallet/internal/config"
	"wallet/internal/handler"
	"wallet/internal/infrastructure/cache"
	"wallet/internal/infrastructure/database"
	"wallet/internal/infrastructure/mq"
	"wallet/internal/job"
	"wallet/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := database.InitMySQL(&cfg.MySQL, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	redisClient, err := cache.InitRedis(&cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var sender job.Sender = job.NewLogSender(log)
	if cfg.Kafka.Enabled {
		producer, err := mq.NewSyncProducer(&cfg.Kafka)
		if err != nil {
			return err
		}
		receiptSender := mq.NewReceiptSender(producer, cfg.Kafka.Topic.Receipts)
		defer receiptSender.Close()
		sender = receiptSender
		log.Info("kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := job.NewDispatcher(sender, cfg.Business.NotifyWorkers, cfg.Business.NotifyQueueSize, log)
	dispatcher.Start(ctx)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.SetupRouter(db, redisClient, cfg, dispatcher, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", zap.Error(err))
	}

	// Requests have drained, so every receipt they queued is already in the dispatcher.
	dispatcher.Stop()

	log.Info("server stopped")
	return nil
}
