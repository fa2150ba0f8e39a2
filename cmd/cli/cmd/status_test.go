package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"captureplane/pkg/api"
)

func TestStatusCommand_Running(t *testing.T) {
	resetViper()

	startTime := time.Now().Add(-5 * time.Minute)
	eta := time.Now().Add(3 * time.Minute)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Method != http.MethodGet {
			t.Errorf("expected GET method, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/api/captures/job-123") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		resp := api.JobStatusResponse{
			JobID:       "job-123",
			Kind:        "bulk",
			State:       "running",
			TotalFrames: 50,
			Completed:   30,
			Succeeded:   30,
			Remaining:   20,
			Percentage:  60.0,
			StartedAt:   &startTime,
			ETA:         &eta,
			OutputDir:   "captures/default",
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "job-123"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "job-123") {
		t.Errorf("expected job ID in output, got: %s", output)
	}
	if !strings.Contains(output, "running") {
		t.Errorf("expected running state, got: %s", output)
	}
	if !strings.Contains(output, "30/50") {
		t.Errorf("expected frame progress, got: %s", output)
	}
	if !strings.Contains(output, "ETA") {
		t.Errorf("expected ETA line for a running job, got: %s", output)
	}
}

func TestStatusCommand_Failed(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := api.JobStatusResponse{
			JobID:        "job-456",
			Kind:         "dark",
			State:        "failed",
			TotalFrames:  20,
			Completed:    7,
			ErrorMessage: "camera disconnected during capture sequence",
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "job-456"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "failed") {
		t.Errorf("expected failed state, got: %s", output)
	}
	if !strings.Contains(output, "camera disconnected") {
		t.Errorf("expected error message, got: %s", output)
	}
}

func TestStatusCommand_NotFound(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Capture job not found", Code: "404"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "missing-job"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "Error (404)") {
		t.Errorf("expected API error in output, got: %s", stdout.String())
	}
}
