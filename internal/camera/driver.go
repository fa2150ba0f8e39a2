// Package camera wraps the vendor camera protocol behind a gateway that
// serializes all device access. The device handle is not reentrant: exactly
// one operation may be in flight at a time, process-wide.
package camera

import "context"

// Driver is the interface a vendor protocol backend implements.
// Implementations do not need to be safe for concurrent use; the Gateway
// guarantees single-threaded access.
type Driver interface {
	// Open claims the device. Returns ErrDeviceNotFound if nothing is
	// discoverable, ErrDeviceBusy if another process holds it.
	Open(ctx context.Context) error

	// Close releases the device. Must tolerate being called when not open.
	Close() error

	// Capture exposes one frame and transfers it off the device.
	// The returned frame is the raw image payload plus its file extension.
	Capture(ctx context.Context) (Frame, error)

	// Status queries device health without side effects.
	Status(ctx context.Context) (DriverStatus, error)

	// ApplySetting sets a single named setting. Returns ErrUnsupportedSetting
	// or ErrInvalidValue per key.
	ApplySetting(ctx context.Context, name, value string) error

	// ShortestExposure returns the fastest shutter speed the camera offers.
	ShortestExposure(ctx context.Context) (string, error)
}

// Frame is one image as transferred from the device.
type Frame struct {
	Data []byte
	Ext  string // file extension as reported by the camera, without dot
}

// DriverStatus reports device health.
type DriverStatus struct {
	// Temperature is the sensor temperature in Celsius, if the camera reports one.
	Temperature *float64
}
