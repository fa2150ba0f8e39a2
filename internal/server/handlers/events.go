package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"captureplane/internal/capture"
)

// eventPollInterval is how often the event stream re-checks job progress.
const eventPollInterval = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CaptureEvents handles GET /api/captures/{id}/events.
// It upgrades to a websocket and streams job status snapshots whenever
// progress changes, closing once the job reaches a terminal state.
func (h *Handlers) CaptureEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.captures.Get(id); err != nil {
		h.domainError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventPollInterval)
	defer ticker.Stop()

	var last capture.JobStatus
	first := true
	for {
		status, err := h.captures.Get(id)
		if err != nil {
			// Evicted while streaming.
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job evicted"),
				time.Now().Add(time.Second))
			return
		}

		if first || statusChanged(last, status) {
			if err := conn.WriteJSON(statusResponse(status)); err != nil {
				return
			}
			last = status
			first = false
		}

		if status.State.Terminal() {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(status.State)),
				time.Now().Add(time.Second))
			return
		}

		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}

func statusChanged(a, b capture.JobStatus) bool {
	return a.State != b.State || a.Completed != b.Completed
}
