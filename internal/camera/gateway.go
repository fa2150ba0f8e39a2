package camera

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Result describes one completed capture.
type Result struct {
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
}

// Status is the gateway's externally visible state.
type Status struct {
	Connected   bool     `json:"connected"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// SettingsReport lists the outcome of a best-effort settings batch.
// Application is optimistic per key: keys that fail are reported, keys that
// succeed stay applied. The caller decides whether that is acceptable.
type SettingsReport struct {
	Applied []string          `json:"applied"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Gateway owns the camera driver and enforces the single-operation-at-a-time
// invariant. All device calls serialize through one mutex held for the
// duration of the operation.
type Gateway struct {
	mu        sync.Mutex
	driver    Driver
	logger    *slog.Logger
	connected atomic.Bool
}

// NewGateway creates a gateway around the given driver.
func NewGateway(driver Driver, logger *slog.Logger) *Gateway {
	return &Gateway{
		driver: driver,
		logger: logger.With("component", "camera"),
	}
}

// Connect claims the device. Calling it when already connected is a no-op.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.connected.Load() {
		return nil
	}

	if err := g.driver.Open(ctx); err != nil {
		g.logger.Error("connect failed", "error", err)
		return err
	}

	g.connected.Store(true)
	g.logger.Info("camera connected")
	return nil
}

// Disconnect releases the device. Calling it when already disconnected is a no-op.
func (g *Gateway) Disconnect() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.connected.Load() {
		return nil
	}

	if err := g.driver.Close(); err != nil {
		g.logger.Error("disconnect failed", "error", err)
		return err
	}

	g.connected.Store(false)
	g.logger.Info("camera disconnected")
	return nil
}

// IsConnected reports connectivity without blocking on the device lock.
func (g *Gateway) IsConnected() bool {
	return g.connected.Load()
}

// Capture exposes one frame and writes it to destDir under the given name
// (extension comes from the camera). An empty name falls back to a timestamp.
// The destination directory is created if absent.
func (g *Gateway) Capture(ctx context.Context, destDir, name string) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.connected.Load() {
		return Result{}, ErrNotConnected
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, mapStorageError(err)
	}

	if name == "" {
		name = "capture_" + time.Now().Format("20060102_150405")
	}

	frame, err := g.driver.Capture(ctx)
	if err != nil {
		if IsFatal(err) {
			g.connected.Store(false)
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	ext := frame.Ext
	if ext == "" {
		ext = "jpg"
	}
	filename := name + "." + ext
	fullPath := filepath.Join(destDir, filename)

	if err := os.WriteFile(fullPath, frame.Data, 0o644); err != nil {
		return Result{}, mapStorageError(err)
	}

	result := Result{
		Path:      fullPath,
		Filename:  filename,
		Timestamp: time.Now(),
	}
	g.logger.Info("image captured", "path", fullPath)
	return result, nil
}

// Status queries device health. It never fails: a driver error degrades to
// a connected/disconnected answer.
func (g *Gateway) Status(ctx context.Context) Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.connected.Load() {
		return Status{Connected: false}
	}

	st, err := g.driver.Status(ctx)
	if err != nil {
		g.logger.Warn("status query failed", "error", err)
		if IsFatal(err) {
			g.connected.Store(false)
			return Status{Connected: false}
		}
		return Status{Connected: true}
	}

	return Status{Connected: true, Temperature: st.Temperature}
}

// UpdateSettings applies a settings batch optimistically per key and reports
// which keys were applied and which failed.
func (g *Gateway) UpdateSettings(ctx context.Context, settings map[string]string) (SettingsReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.connected.Load() {
		return SettingsReport{}, ErrNotConnected
	}

	report := SettingsReport{Failed: map[string]string{}}
	for name, value := range settings {
		if err := g.driver.ApplySetting(ctx, name, value); err != nil {
			g.logger.Warn("setting rejected", "setting", name, "value", value, "error", err)
			report.Failed[name] = err.Error()
			continue
		}
		report.Applied = append(report.Applied, name)
	}

	if len(report.Failed) == 0 {
		report.Failed = nil
	}
	return report, nil
}

// ShortestExposure returns the fastest shutter speed the camera offers,
// used for bias frames.
func (g *Gateway) ShortestExposure(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.connected.Load() {
		return "", ErrNotConnected
	}

	return g.driver.ShortestExposure(ctx)
}

// mapStorageError classifies filesystem failures into the gateway taxonomy.
func mapStorageError(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %w", ErrInsufficientStorage, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %w", ErrCaptureFailed, err)
}
