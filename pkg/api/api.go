// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the server.
package api

import "time"

// StartCaptureRequest is the request body for starting a capture sequence.
// Kind selects the frame family: bulk, dark, bias, flat or flat_dark.
type StartCaptureRequest struct {
	Kind            string  `json:"kind"`
	FrameCount      int     `json:"frame_count"`
	IntervalSeconds float64 `json:"interval_seconds,omitempty"`
	DelaySeconds    float64 `json:"delay_seconds,omitempty"`
	SessionID       string  `json:"session_id,omitempty"`
	BaseName        string  `json:"base_name,omitempty"`
	SavePath        string  `json:"save_path,omitempty"`
	ExposureTime    string  `json:"exposure_time,omitempty"`
	ISO             string  `json:"iso,omitempty"`
	TargetADU       int     `json:"target_adu,omitempty"`
}

// JobStatusResponse is the status snapshot of one capture job.
type JobStatusResponse struct {
	JobID         string     `json:"job_id"`
	Kind          string     `json:"kind"`
	State         string     `json:"state"`
	TotalFrames   int        `json:"total_frames"`
	Completed     int        `json:"completed_frames"`
	Succeeded     int        `json:"successful_frames"`
	Failed        int        `json:"failed_frames"`
	Remaining     int        `json:"remaining_frames"`
	Percentage    float64    `json:"percentage"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	LastCaptureAt *time.Time `json:"last_capture_at,omitempty"`
	ETA           *time.Time `json:"estimated_completion,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	OutputDir     string     `json:"output_directory"`
	CapturedFiles []string   `json:"captured_files"`
	SessionID     string     `json:"session_id,omitempty"`
	Temperature   *float64   `json:"current_temperature,omitempty"`
	AverageADU    *float64   `json:"average_adu,omitempty"`
}

// StartCaptureResponse is the response body after starting a capture job.
type StartCaptureResponse struct {
	JobID  string            `json:"job_id"`
	Status JobStatusResponse `json:"status"`
}

// ListJobsResponse wraps the job list.
type ListJobsResponse struct {
	Jobs []JobStatusResponse `json:"jobs"`
}

// MessageResponse is a minimal acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// CameraStatusResponse reports camera connectivity and sensor temperature.
type CameraStatusResponse struct {
	Connected   bool     `json:"connected"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// CaptureFrameRequest asks for one frame outside of any job. SavePath is
// relative to the captures root; an empty Name falls back to a timestamp.
type CaptureFrameRequest struct {
	SavePath string `json:"save_path,omitempty"`
	Name     string `json:"name,omitempty"`
}

// CaptureFrameResponse reports a completed single-shot capture.
type CaptureFrameResponse struct {
	Status    string    `json:"status"`
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// UpdateSettingsRequest carries a camera settings batch.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// UpdateSettingsResponse reports the per-key outcome of a settings batch.
type UpdateSettingsResponse struct {
	Applied []string          `json:"applied"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// CreateSessionRequest is the request body for creating an imaging session.
type CreateSessionRequest struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// SessionResponse is the metadata of one imaging session.
type SessionResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Target    string         `json:"target"`
	CreatedAt time.Time      `json:"created_at"`
	Images    []SessionImage `json:"images"`
}

// SessionImage is one image registered against a session.
type SessionImage struct {
	Filename   string   `json:"filename"`
	SizeBytes  int64    `json:"size_bytes"`
	FocusScore *float64 `json:"focus_score,omitempty"`
	AddedAt    string   `json:"added_at"`
}

// ListSessionsResponse wraps the session list.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// CalibrationPreset is a suggested calibration frame set.
type CalibrationPreset struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	FrameType     string   `json:"frame_type"`
	Count         int      `json:"count"`
	TargetADU     int      `json:"target_adu,omitempty"`
	ExposureTimes []string `json:"exposure_times,omitempty"`
}

// ListPresetsResponse wraps the calibration preset list.
type ListPresetsResponse struct {
	Presets []CalibrationPreset `json:"presets"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
