package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"captureplane/internal/capture"
	"captureplane/pkg/api"
)

func TestCaptureEvents_UnknownJobRejectedBeforeUpgrade(t *testing.T) {
	mock := &mockRegistry{getErr: capture.ErrJobNotFound}
	h := newTestHandlers(mock, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/captures/nope/events", nil)
	req.SetPathValue("id", "nope")
	rr := httptest.NewRecorder()
	h.CaptureEvents(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCaptureEvents_StreamsUntilTerminal(t *testing.T) {
	mock := &mockRegistry{
		getStatus: capture.JobStatus{
			JobID:     "job-ws",
			Kind:      capture.KindBulk,
			State:     capture.StateCompleted,
			Completed: 3,
		},
	}
	h := newTestHandlers(mock, nil, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/captures/{id}/events", h.CaptureEvents)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/captures/job-ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var got api.JobStatusResponse
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading status frame: %v", err)
	}
	if got.JobID != "job-ws" || got.State != string(capture.StateCompleted) {
		t.Errorf("unexpected snapshot: %+v", got)
	}

	// Terminal state closes the stream.
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to close after terminal snapshot")
	}
}
