package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"captureplane/internal/capture"
	"captureplane/pkg/api"
)

// StartCapture handles POST /api/captures.
// It validates the requested sequence and starts a background capture job.
func (h *Handlers) StartCapture(w http.ResponseWriter, r *http.Request) {
	var req api.StartCaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	spec := capture.SequenceSpec{
		Kind:         capture.FrameKind(req.Kind),
		FrameCount:   req.FrameCount,
		Interval:     time.Duration(req.IntervalSeconds * float64(time.Second)),
		StartDelay:   time.Duration(req.DelaySeconds * float64(time.Second)),
		SessionID:    req.SessionID,
		BaseName:     req.BaseName,
		SavePath:     req.SavePath,
		ExposureTime: req.ExposureTime,
		ISO:          req.ISO,
		TargetADU:    req.TargetADU,
	}
	if spec.Kind == "" {
		spec.Kind = capture.KindBulk
	}

	status, err := h.captures.Start(r.Context(), spec)
	if err != nil {
		h.domainError(w, err)
		return
	}

	resp := api.StartCaptureResponse{
		JobID:  status.JobID,
		Status: statusResponse(status),
	}
	h.respondJson(w, http.StatusAccepted, resp)
}

// GetCapture handles GET /api/captures/{id}.
func (h *Handlers) GetCapture(w http.ResponseWriter, r *http.Request) {
	status, err := h.captures.Get(r.PathValue("id"))
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, statusResponse(status))
}

// ListCaptures handles GET /api/captures.
func (h *Handlers) ListCaptures(w http.ResponseWriter, r *http.Request) {
	statuses := h.captures.List()

	resp := api.ListJobsResponse{Jobs: make([]api.JobStatusResponse, 0, len(statuses))}
	for _, st := range statuses {
		resp.Jobs = append(resp.Jobs, statusResponse(st))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// PauseCapture handles POST /api/captures/{id}/pause.
func (h *Handlers) PauseCapture(w http.ResponseWriter, r *http.Request) {
	if err := h.captures.Pause(r.PathValue("id")); err != nil {
		h.domainError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.MessageResponse{Message: "Capture paused"})
}

// ResumeCapture handles POST /api/captures/{id}/resume.
func (h *Handlers) ResumeCapture(w http.ResponseWriter, r *http.Request) {
	if err := h.captures.Resume(r.PathValue("id")); err != nil {
		h.domainError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.MessageResponse{Message: "Capture resumed"})
}

// CancelCapture handles POST /api/captures/{id}/cancel.
func (h *Handlers) CancelCapture(w http.ResponseWriter, r *http.Request) {
	if err := h.captures.Cancel(r.PathValue("id")); err != nil {
		h.domainError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.MessageResponse{Message: "Capture cancelled"})
}

// DeleteCapture handles DELETE /api/captures/{id}.
// Only jobs that already reached a terminal state can be removed.
func (h *Handlers) DeleteCapture(w http.ResponseWriter, r *http.Request) {
	if err := h.captures.Delete(r.PathValue("id")); err != nil {
		h.domainError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.MessageResponse{Message: "Capture deleted"})
}
