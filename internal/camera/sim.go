package camera

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// simSettings are the setting names the simulated camera accepts.
var simSettings = map[string]bool{
	"shutter_speed": true,
	"iso":           true,
	"image_format":  true,
}

// SimDriver is an in-process camera used for development and tests.
// It produces small deterministic payloads and can be scripted to fail.
type SimDriver struct {
	// ExposureDelay is how long one capture takes. Zero means instant.
	ExposureDelay time.Duration

	// FailCapture, when non-nil, is consulted before each capture with the
	// 1-based capture count; a returned error fails that capture.
	FailCapture func(n int) error

	// Temperature is reported by Status. Defaults to a plausible sensor temp.
	Temperature float64

	mu       sync.Mutex
	open     bool
	captures int
	settings map[string]string
}

// NewSimDriver creates a simulated camera.
func NewSimDriver() *SimDriver {
	return &SimDriver{
		Temperature: 12.5,
		settings:    map[string]string{"shutter_speed": "1/125", "iso": "800"},
	}
}

// Open implements Driver.
func (d *SimDriver) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	return nil
}

// Close implements Driver.
func (d *SimDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}

// Capture implements Driver. The payload embeds the capture count and active
// shutter speed so tests can assert on file contents.
func (d *SimDriver) Capture(ctx context.Context) (Frame, error) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return Frame{}, ErrNotConnected
	}
	d.captures++
	n := d.captures
	shutter := d.settings["shutter_speed"]
	fail := d.FailCapture
	delay := d.ExposureDelay
	d.mu.Unlock()

	if fail != nil {
		if err := fail(n); err != nil {
			return Frame{}, err
		}
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Frame{}, fmt.Errorf("%w: %w", ErrCaptureFailed, ctx.Err())
		}
	}

	payload := fmt.Sprintf("SIMFRAME %d shutter=%s\n", n, shutter)
	return Frame{Data: []byte(payload), Ext: "jpg"}, nil
}

// Status implements Driver.
func (d *SimDriver) Status(ctx context.Context) (DriverStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return DriverStatus{}, ErrNotConnected
	}
	temp := d.Temperature
	return DriverStatus{Temperature: &temp}, nil
}

// ApplySetting implements Driver.
func (d *SimDriver) ApplySetting(ctx context.Context, name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrNotConnected
	}
	if !simSettings[name] {
		return fmt.Errorf("%w: %s", ErrUnsupportedSetting, name)
	}
	if value == "" {
		return fmt.Errorf("%w: %s", ErrInvalidValue, name)
	}
	d.settings[name] = value
	return nil
}

// ShortestExposure implements Driver.
func (d *SimDriver) ShortestExposure(ctx context.Context) (string, error) {
	return "1/4000", nil
}

// Captures returns how many frames have been taken, for tests.
func (d *SimDriver) Captures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.captures
}
