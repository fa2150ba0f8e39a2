// Package capture implements the capture-job engine: sequence specs, the
// pausable job state machine, the registry that tracks jobs, and the
// progress/naming helpers shared by all frame families.
package capture

import (
	"errors"
	"fmt"
	"time"
)

// FrameKind selects the capture family of a sequence.
type FrameKind string

const (
	// KindBulk is a plain multi-frame capture run.
	KindBulk FrameKind = "bulk"

	// Calibration families. Each has its own required settings.
	KindDark     FrameKind = "dark"
	KindBias     FrameKind = "bias"
	KindFlat     FrameKind = "flat"
	KindFlatDark FrameKind = "flat_dark"
)

// MaxFrameCount bounds a single sequence.
const MaxFrameCount = 500

// Target ADU bounds for flat frames.
const (
	MinTargetADU = 10000
	MaxTargetADU = 50000
)

// ErrInvalidSpec is wrapped by all spec validation failures.
var ErrInvalidSpec = errors.New("invalid capture spec")

// SequenceSpec describes one capture sequence. It is immutable once a job
// has been created from it.
type SequenceSpec struct {
	Kind       FrameKind     `json:"kind"`
	FrameCount int           `json:"frame_count"`
	Interval   time.Duration `json:"interval"`
	StartDelay time.Duration `json:"start_delay"`

	// SessionID routes output into a session's captures directory and
	// registers each file against the session. Optional.
	SessionID string `json:"session_id,omitempty"`

	// BaseName overrides the filename prefix. Optional.
	BaseName string `json:"base_name,omitempty"`

	// SavePath overrides the output directory. Optional, ignored when
	// SessionID is set.
	SavePath string `json:"save_path,omitempty"`

	// ExposureTime is the shutter speed, e.g. "30s" or "1/60".
	// Required for dark and flat_dark frames.
	ExposureTime string `json:"exposure_time,omitempty"`

	// ISO sensitivity. Optional.
	ISO string `json:"iso,omitempty"`

	// TargetADU is the brightness level flat frames aim for. When set, the
	// flat exposure is computed instead of taken from ExposureTime.
	TargetADU int `json:"target_adu,omitempty"`
}

// Validate rejects malformed specs before a job is created. A spec that
// passes here never fails validation inside the running task.
func (s SequenceSpec) Validate() error {
	switch s.Kind {
	case KindBulk, KindDark, KindBias, KindFlat, KindFlatDark:
	default:
		return fmt.Errorf("%w: unknown frame kind %q", ErrInvalidSpec, s.Kind)
	}

	if s.FrameCount <= 0 {
		return fmt.Errorf("%w: frame count must be positive", ErrInvalidSpec)
	}
	if s.FrameCount > MaxFrameCount {
		return fmt.Errorf("%w: frame count exceeds %d", ErrInvalidSpec, MaxFrameCount)
	}
	if s.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidSpec)
	}
	if s.StartDelay < 0 {
		return fmt.Errorf("%w: start delay must not be negative", ErrInvalidSpec)
	}

	switch s.Kind {
	case KindDark:
		if s.ExposureTime == "" {
			return fmt.Errorf("%w: exposure time required for dark frames", ErrInvalidSpec)
		}
	case KindFlatDark:
		if s.ExposureTime == "" {
			return fmt.Errorf("%w: exposure time required for flat dark frames", ErrInvalidSpec)
		}
	case KindFlat:
		if s.ExposureTime == "" && s.TargetADU == 0 {
			return fmt.Errorf("%w: either target_adu or exposure_time required for flat frames", ErrInvalidSpec)
		}
	}

	if s.TargetADU != 0 && (s.TargetADU < MinTargetADU || s.TargetADU > MaxTargetADU) {
		return fmt.Errorf("%w: target_adu must be between %d and %d", ErrInvalidSpec, MinTargetADU, MaxTargetADU)
	}

	return nil
}

// IsCalibration reports whether the spec captures calibration frames,
// which get a kind-specific settings pre-flight before the loop starts.
func (s SequenceSpec) IsCalibration() bool {
	return s.Kind != KindBulk
}
