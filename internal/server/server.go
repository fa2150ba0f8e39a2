// Package server contains the HTTP surface of the capture engine.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"captureplane/internal/server/handlers"
	"captureplane/internal/server/middleware"
)

// Options tune the server beyond its dependencies.
type Options struct {
	// RateLimit is requests per second per client. 0 disables throttling.
	RateLimit float64

	// RateLimitBurst is the burst size allowed on top of RateLimit.
	RateLimitBurst int

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
}

// Server is the HTTP server for the capture API.
type Server struct {
	httpServer *http.Server
}

// New creates a new capture API server.
func New(addr string, logger *slog.Logger, captures handlers.CaptureController, camera handlers.Camera, sessions handlers.Sessions, opts Options) *Server {
	h := handlers.New(captures, camera, sessions)
	requestMW := middleware.RequestID(logger)
	limitMW := middleware.RateLimit(opts.RateLimit, opts.RateLimitBurst)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	mux.HandleFunc("POST /api/captures", h.StartCapture)
	mux.HandleFunc("GET /api/captures", h.ListCaptures)
	mux.HandleFunc("GET /api/captures/{id}", h.GetCapture)
	mux.HandleFunc("POST /api/captures/{id}/pause", h.PauseCapture)
	mux.HandleFunc("POST /api/captures/{id}/resume", h.ResumeCapture)
	mux.HandleFunc("POST /api/captures/{id}/cancel", h.CancelCapture)
	mux.HandleFunc("DELETE /api/captures/{id}", h.DeleteCapture)
	mux.HandleFunc("GET /api/captures/{id}/events", h.CaptureEvents)

	mux.HandleFunc("POST /api/camera/connect", h.ConnectCamera)
	mux.HandleFunc("POST /api/camera/disconnect", h.DisconnectCamera)
	mux.HandleFunc("GET /api/camera/status", h.CameraStatus)
	mux.HandleFunc("POST /api/camera/capture", h.CaptureFrame)
	mux.HandleFunc("PUT /api/camera/settings", h.UpdateCameraSettings)

	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/sessions", h.ListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.GetSession)

	mux.HandleFunc("GET /api/calibration/presets", h.ListPresets)

	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     requestMW(limitMW(mux)),
			ReadTimeout: 10 * time.Second,
			// No WriteTimeout: status event streams outlive any fixed
			// deadline. Handlers are all short except the websocket.
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
