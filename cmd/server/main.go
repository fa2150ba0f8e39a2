// Package main is the entry point for the captureplane server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"captureplane/internal/camera"
	"captureplane/internal/capture"
	"captureplane/internal/config"
	"captureplane/internal/logger"
	"captureplane/internal/observability"
	"captureplane/internal/server"
	"captureplane/internal/session"
)

func main() {
	// Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg := logger.New()
	ctx := context.Background()

	// Camera driver
	driver, err := buildDriver(cfg.CameraDriver)
	if err != nil {
		log.Fatalf("Failed to build camera driver: %v", err)
	}
	gateway := camera.NewGateway(driver, logg)
	defer gateway.Disconnect()

	// Session storage
	sessions, err := session.NewFSStore(cfg.SessionDir)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}

	// Capture job registry
	registry := capture.NewRegistry(gateway, sessions, nil, logg, capture.RegistryOptions{
		Retention:      cfg.JobRetention,
		PausePoll:      cfg.PausePollInterval,
		CaptureDir:     cfg.CaptureDir,
		CalibrationDir: cfg.CalibrationDir,
	})

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "captureplane-server", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	if err := observability.RegisterActiveJobsGauge(registry.Active); err != nil {
		log.Printf("Failed to register active jobs metric: %v", err)
	}

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := server.New(addr, logg, registry, gateway, sessions, server.Options{
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
		MetricsHandler: metricsHandler,
	})

	go func() {
		log.Printf("CapturePlane server starting on %s", addr)
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited properly")
}

func buildDriver(name string) (camera.Driver, error) {
	switch name {
	case "sim":
		return camera.NewSimDriver(), nil
	default:
		return nil, fmt.Errorf("unknown camera driver %q", name)
	}
}
