package capture

import (
	"context"

	"captureplane/internal/camera"
)

// Device is the slice of the camera gateway the job engine consumes.
// *camera.Gateway satisfies it; tests substitute fakes.
type Device interface {
	// IsConnected reports connectivity without blocking.
	IsConnected() bool

	// Capture takes one frame into destDir under the given name.
	Capture(ctx context.Context, destDir, name string) (camera.Result, error)

	// UpdateSettings applies a best-effort settings batch.
	UpdateSettings(ctx context.Context, settings map[string]string) (camera.SettingsReport, error)

	// ShortestExposure returns the fastest available shutter speed.
	ShortestExposure(ctx context.Context) (string, error)

	// Status queries device health.
	Status(ctx context.Context) camera.Status
}

// FlatMeter measures the brightness of a captured flat frame. It is an
// optional collaborator; without one, flat exposure falls back to a default
// and ADU levels are not tracked.
type FlatMeter interface {
	// MeasureADU returns the mean ADU level of the image at path.
	MeasureADU(ctx context.Context, path string) (float64, error)
}
