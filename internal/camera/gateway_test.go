package camera

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"captureplane/internal/logger"
)

func newTestGateway(t *testing.T, driver Driver) *Gateway {
	t.Helper()
	return NewGateway(driver, logger.New())
}

func TestConnect_Idempotent(t *testing.T) {
	sim := NewSimDriver()
	gw := newTestGateway(t, sim)
	ctx := context.Background()

	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("first Connect() error: %v", err)
	}
	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("second Connect() error: %v", err)
	}
	if !gw.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
}

func TestDisconnect_Idempotent(t *testing.T) {
	sim := NewSimDriver()
	gw := newTestGateway(t, sim)

	// Disconnecting while already disconnected succeeds.
	if err := gw.Disconnect(); err != nil {
		t.Fatalf("Disconnect() on fresh gateway error: %v", err)
	}

	if err := gw.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := gw.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if gw.IsConnected() {
		t.Error("IsConnected() = true after Disconnect")
	}
}

func TestCapture_NotConnected(t *testing.T) {
	gw := newTestGateway(t, NewSimDriver())

	_, err := gw.Capture(context.Background(), t.TempDir(), "x")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Capture() error = %v, want ErrNotConnected", err)
	}
}

func TestCapture_WritesOneFile(t *testing.T) {
	sim := NewSimDriver()
	gw := newTestGateway(t, sim)
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	// Destination dir does not exist yet; Capture must create it.
	dest := filepath.Join(t.TempDir(), "out", "nested")
	result, err := gw.Capture(ctx, dest, "frame_001")
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}

	if result.Filename != "frame_001.jpg" {
		t.Errorf("Filename = %q, want frame_001.jpg", result.Filename)
	}
	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("reading captured file: %v", err)
	}
	if !strings.HasPrefix(string(data), "SIMFRAME 1") {
		t.Errorf("unexpected payload: %q", data)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("reading dest dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dest dir has %d entries, want 1", len(entries))
	}
}

func TestCapture_FallbackName(t *testing.T) {
	sim := NewSimDriver()
	gw := newTestGateway(t, sim)
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	result, err := gw.Capture(ctx, t.TempDir(), "")
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if !strings.HasPrefix(result.Filename, "capture_") {
		t.Errorf("Filename = %q, want capture_<timestamp> fallback", result.Filename)
	}
}

func TestCapture_DriverFailure(t *testing.T) {
	sim := NewSimDriver()
	sim.FailCapture = func(n int) error {
		return errors.New("shutter jammed")
	}
	gw := newTestGateway(t, sim)
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	_, err := gw.Capture(ctx, t.TempDir(), "x")
	if !errors.Is(err, ErrCaptureFailed) {
		t.Errorf("Capture() error = %v, want ErrCaptureFailed", err)
	}
	// Single capture failure does not flip connectivity.
	if !gw.IsConnected() {
		t.Error("IsConnected() = false after non-fatal capture failure")
	}
}

func TestCapture_FatalFailureDropsConnection(t *testing.T) {
	sim := NewSimDriver()
	sim.FailCapture = func(n int) error {
		return ErrNotConnected
	}
	gw := newTestGateway(t, sim)
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	_, err := gw.Capture(ctx, t.TempDir(), "x")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Capture() error = %v, want ErrNotConnected", err)
	}
	if gw.IsConnected() {
		t.Error("IsConnected() = true after fatal capture failure")
	}
}

// countingDriver asserts the gateway never issues two concurrent captures.
type countingDriver struct {
	SimDriver
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (d *countingDriver) Capture(ctx context.Context) (Frame, error) {
	cur := d.inFlight.Add(1)
	defer d.inFlight.Add(-1)
	for {
		prev := d.maxSeen.Load()
		if cur <= prev || d.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	return d.SimDriver.Capture(ctx)
}

func TestCapture_MutualExclusion(t *testing.T) {
	driver := &countingDriver{}
	gw := newTestGateway(t, driver)
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	dest := t.TempDir()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := gw.Capture(ctx, dest, ""); err != nil {
				t.Errorf("Capture() error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if peak := driver.maxSeen.Load(); peak > 1 {
		t.Errorf("observed %d concurrent captures, want at most 1", peak)
	}
}

func TestUpdateSettings_BestEffort(t *testing.T) {
	sim := NewSimDriver()
	gw := newTestGateway(t, sim)
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	report, err := gw.UpdateSettings(ctx, map[string]string{
		"shutter_speed": "1/60",
		"white_balance": "daylight", // unsupported by the sim
	})
	if err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}

	if len(report.Applied) != 1 || report.Applied[0] != "shutter_speed" {
		t.Errorf("Applied = %v, want [shutter_speed]", report.Applied)
	}
	if _, ok := report.Failed["white_balance"]; !ok {
		t.Errorf("Failed = %v, want white_balance entry", report.Failed)
	}
}

func TestStatus_ReportsTemperature(t *testing.T) {
	sim := NewSimDriver()
	sim.Temperature = -4.2
	gw := newTestGateway(t, sim)
	ctx := context.Background()

	if st := gw.Status(ctx); st.Connected {
		t.Error("Status().Connected = true before Connect")
	}

	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	st := gw.Status(ctx)
	if !st.Connected {
		t.Error("Status().Connected = false after Connect")
	}
	if st.Temperature == nil || *st.Temperature != -4.2 {
		t.Errorf("Status().Temperature = %v, want -4.2", st.Temperature)
	}
}
