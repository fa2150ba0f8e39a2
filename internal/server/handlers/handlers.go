// Package handlers contains HTTP handlers for the capture control API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"captureplane/internal/camera"
	"captureplane/internal/capture"
	"captureplane/internal/session"
	"captureplane/pkg/api"
)

// CaptureController is the slice of the job registry the handlers need.
type CaptureController interface {
	Start(ctx context.Context, spec capture.SequenceSpec) (capture.JobStatus, error)
	Get(id string) (capture.JobStatus, error)
	List() []capture.JobStatus
	Pause(id string) error
	Resume(id string) error
	Cancel(id string) error
	Delete(id string) error
}

// Camera is the slice of the device gateway the handlers need.
type Camera interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Status(ctx context.Context) camera.Status
	Capture(ctx context.Context, destDir, name string) (camera.Result, error)
	UpdateSettings(ctx context.Context, settings map[string]string) (camera.SettingsReport, error)
}

// Sessions is the session store surface exposed over HTTP.
type Sessions interface {
	Create(name, target string) (*session.Info, error)
	Get(id string) (*session.Info, error)
	List() ([]*session.Info, error)
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	captures CaptureController
	camera   Camera
	sessions Sessions
}

// New creates a new Handlers instance.
func New(captures CaptureController, cam Camera, sessions Sessions) *Handlers {
	return &Handlers{captures: captures, camera: cam, sessions: sessions}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// domainError maps engine errors to HTTP responses.
func (h *Handlers) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, capture.ErrInvalidSpec):
		h.httpError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, capture.ErrJobNotFound):
		h.httpError(w, "Capture job not found", http.StatusNotFound)
	case errors.Is(err, capture.ErrInvalidTransition):
		h.httpError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, capture.ErrDeviceUnavailable), errors.Is(err, camera.ErrNotConnected):
		h.httpError(w, "Camera unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, camera.ErrPermissionDenied):
		h.httpError(w, "Permission denied writing capture output", http.StatusForbidden)
	case errors.Is(err, camera.ErrInsufficientStorage):
		h.httpError(w, "Insufficient storage for capture output", http.StatusInsufficientStorage)
	case errors.Is(err, session.ErrNotFound):
		h.httpError(w, "Session not found", http.StatusNotFound)
	default:
		h.httpError(w, "Internal error", http.StatusInternalServerError)
	}
}

// Healthz is a liveness probe.
// It returns 200 OK if the server is running.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJson(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Readyz is a readiness probe: ready when the camera is connected.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	st := h.camera.Status(r.Context())
	if !st.Connected {
		h.httpError(w, "Camera not connected", http.StatusServiceUnavailable)
		return
	}
	h.respondJson(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusResponse converts an engine snapshot to its API shape.
func statusResponse(st capture.JobStatus) api.JobStatusResponse {
	return api.JobStatusResponse{
		JobID:         st.JobID,
		Kind:          string(st.Kind),
		State:         string(st.State),
		TotalFrames:   st.TotalFrames,
		Completed:     st.Completed,
		Succeeded:     st.Succeeded,
		Failed:        st.Failed,
		Remaining:     st.Remaining,
		Percentage:    st.Percentage,
		CreatedAt:     st.CreatedAt,
		StartedAt:     st.StartedAt,
		CompletedAt:   st.CompletedAt,
		LastCaptureAt: st.LastCaptureAt,
		ETA:           st.ETA,
		ErrorMessage:  st.ErrorMessage,
		OutputDir:     st.OutputDir,
		CapturedFiles: st.CapturedFiles,
		SessionID:     st.SessionID,
		Temperature:   st.Temperature,
		AverageADU:    st.AverageADU,
	}
}
