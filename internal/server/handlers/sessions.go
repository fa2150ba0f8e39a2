package handlers

import (
	"encoding/json"
	"net/http"

	"captureplane/internal/session"
	"captureplane/pkg/api"
)

// CreateSession handles POST /api/sessions.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		h.httpError(w, "Name is required", http.StatusBadRequest)
		return
	}

	info, err := h.sessions.Create(req.Name, req.Target)
	if err != nil {
		h.httpError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	h.respondJson(w, http.StatusCreated, sessionResponse(info))
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, sessionResponse(info))
}

// ListSessions handles GET /api/sessions.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	infos, err := h.sessions.List()
	if err != nil {
		h.httpError(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}

	resp := api.ListSessionsResponse{Sessions: make([]api.SessionResponse, 0, len(infos))}
	for _, info := range infos {
		resp.Sessions = append(resp.Sessions, sessionResponse(info))
	}
	h.respondJson(w, http.StatusOK, resp)
}

func sessionResponse(info *session.Info) api.SessionResponse {
	resp := api.SessionResponse{
		ID:        info.ID,
		Name:      info.Name,
		Target:    info.Target,
		CreatedAt: info.CreatedAt,
		Images:    make([]api.SessionImage, 0, len(info.Images)),
	}
	for _, img := range info.Images {
		resp.Images = append(resp.Images, api.SessionImage{
			Filename:   img.Filename,
			SizeBytes:  img.SizeBytes,
			FocusScore: img.FocusScore,
			AddedAt:    img.AddedAt,
		})
	}
	return resp
}
