package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"webinar-counter-backend/config"
	"webinar-counter-backend/internal/api"
	"webinar-counter-backend/internal/job"
	"webinar-counter-backend/internal/metrics"
	"webinar-counter-backend/internal/report"
	"webinar-counter-backend/internal/timeline"
)

func main() {
	logger := log.New(os.Stdout, "counter-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded (timezone %s, %d timeline points)",
		cfg.Timeline.Timezone, len(cfg.Timeline.Points))

	settings := timeline.NewStore(timeline.Config{
		Points:      cfg.Timeline.Points,
		Annotations: cfg.Timeline.Annotations,
	})

	writer, err := report.NewWriter(cfg.Report.OutputDir, cfg.Report.FilenamePrefix)
	if err != nil {
		logger.Fatalf("failed to initialize report writer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline := job.New(job.Options{
		Store:     settings,
		Writer:    writer,
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
		Location:  cfg.Timeline.Location,
		Workers:   cfg.Jobs.WorkerPoolSize,
		QueueSize: cfg.Jobs.QueueSize,
		LogBuffer: cfg.Jobs.LogBuffer,
		ResultTTL: cfg.Jobs.ResultTTL,
	})
	pipeline.Start(ctx)
	logger.Printf("job pipeline started with %d workers", cfg.Jobs.WorkerPoolSize)

	handler := api.NewHandler(pipeline, settings, writer, cfg.Server.MaxUploadBytes)
	router := api.NewRouter(handler, rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
