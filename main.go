package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"examscore/config"
	qhttp "examscore/http"
	"examscore/logging"
	"examscore/ml"
	"examscore/monitoring"
)

func main() {
	// 1. Load config
	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load model artifact
	metrics := monitoring.NewMetrics()
	store := ml.NewArtifactStore(cfg.Model.Path, logger)
	store.OnSwap(metrics.ObserveArtifact)
	if err := store.Load(); err != nil {
		if !cfg.Model.Watch {
			logger.Fatal("failed to load model artifact", zap.String("path", cfg.Model.Path), zap.Error(err))
		}
		logger.Error("model artifact not loaded, waiting for it to appear",
			zap.String("path", cfg.Model.Path), zap.Error(err))
	}
	if cfg.Model.Watch {
		if err := store.Watch(ctx); err != nil {
			logger.Fatal("failed to watch model artifact", zap.Error(err))
		}
	}

	predictor, err := ml.NewPredictor(store,
		ml.WithLogger(logger),
		ml.WithObserver(metrics),
		ml.WithCacheSize(cfg.Model.CacheSize))
	if err != nil {
		logger.Fatal("failed to create predictor", zap.Error(err))
	}
	qhttp.SetPredictor(predictor)

	// 3. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		Metrics:        metrics.Handler(),
	}, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
