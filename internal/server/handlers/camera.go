package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"captureplane/pkg/api"
)

// singleShotRoot is where ad hoc frames land, mirroring the job capture
// layout but outside any job directory.
const singleShotRoot = "captures"

// ConnectCamera handles POST /api/camera/connect.
func (h *Handlers) ConnectCamera(w http.ResponseWriter, r *http.Request) {
	if err := h.camera.Connect(r.Context()); err != nil {
		h.httpError(w, "Failed to connect to camera", http.StatusServiceUnavailable)
		return
	}
	h.respondJson(w, http.StatusOK, api.MessageResponse{Message: "Camera connected"})
}

// DisconnectCamera handles POST /api/camera/disconnect.
func (h *Handlers) DisconnectCamera(w http.ResponseWriter, r *http.Request) {
	if err := h.camera.Disconnect(); err != nil {
		h.httpError(w, "Failed to disconnect camera", http.StatusInternalServerError)
		return
	}
	h.respondJson(w, http.StatusOK, api.MessageResponse{Message: "Camera disconnected"})
}

// CameraStatus handles GET /api/camera/status.
func (h *Handlers) CameraStatus(w http.ResponseWriter, r *http.Request) {
	st := h.camera.Status(r.Context())
	h.respondJson(w, http.StatusOK, api.CameraStatusResponse{
		Connected:   st.Connected,
		Temperature: st.Temperature,
	})
}

// CaptureFrame handles POST /api/camera/capture.
// It takes one frame immediately, without creating a job. An empty body is
// allowed and captures into the default location with a timestamp name.
func (h *Handlers) CaptureFrame(w http.ResponseWriter, r *http.Request) {
	var req api.CaptureFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	destDir := filepath.Join(singleShotRoot, filepath.Clean("/"+req.SavePath))
	result, err := h.camera.Capture(r.Context(), destDir, req.Name)
	if err != nil {
		h.domainError(w, err)
		return
	}

	var size int64
	if fi, statErr := os.Stat(result.Path); statErr == nil {
		size = fi.Size()
	}

	h.respondJson(w, http.StatusOK, api.CaptureFrameResponse{
		Status:    "captured",
		Path:      result.Path,
		Filename:  result.Filename,
		Timestamp: result.Timestamp,
		SizeBytes: size,
	})
}

// UpdateCameraSettings handles PUT /api/camera/settings.
// Settings apply best-effort per key; the response reports which keys
// were accepted and which the camera rejected.
func (h *Handlers) UpdateCameraSettings(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Settings) == 0 {
		h.httpError(w, "Settings are required", http.StatusBadRequest)
		return
	}

	report, err := h.camera.UpdateSettings(r.Context(), req.Settings)
	if err != nil {
		h.domainError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.UpdateSettingsResponse{
		Applied: report.Applied,
		Failed:  report.Failed,
	})
}
