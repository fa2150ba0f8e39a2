package camera

import "errors"

// Domain errors reported by the gateway. Handlers and the job engine match on
// these with errors.Is; drivers wrap their own failures around them.
var (
	// ErrNotConnected is returned when an operation requires a connected camera.
	ErrNotConnected = errors.New("camera not connected")

	// ErrDeviceNotFound is returned by Connect when no camera is discoverable.
	ErrDeviceNotFound = errors.New("no camera device found")

	// ErrDeviceBusy is returned when the device is claimed by another process.
	ErrDeviceBusy = errors.New("camera device busy")

	// ErrTransport is returned for lower-level I/O failures talking to the device.
	ErrTransport = errors.New("camera transport error")

	// ErrCaptureFailed is returned when an image capture or transfer fails.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrInsufficientStorage is returned when persisting the image runs out of space.
	ErrInsufficientStorage = errors.New("insufficient storage")

	// ErrPermissionDenied is returned for write-permission failures on the destination.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnsupportedSetting is returned for settings the camera does not expose.
	ErrUnsupportedSetting = errors.New("unsupported setting")

	// ErrInvalidValue is returned when a setting value is rejected by the camera.
	ErrInvalidValue = errors.New("invalid setting value")
)

// IsFatal reports whether an error indicates the camera is gone for good,
// as opposed to a single capture having failed. Jobs abort on fatal errors
// and keep going on everything else.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNotConnected) || errors.Is(err, ErrDeviceNotFound)
}
