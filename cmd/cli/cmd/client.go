package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"captureplane/pkg/api"
)

// CaptureClient handles API calls to the captureplane server.
type CaptureClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewCaptureClient creates a new client with the given base URL.
func NewCaptureClient(baseURL string) *CaptureClient {
	return &CaptureClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// do runs one request/response round trip and decodes into out when set.
func (c *CaptureClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// StartCapture sends POST /api/captures to start a new capture job.
func (c *CaptureClient) StartCapture(req api.StartCaptureRequest) (*api.StartCaptureResponse, error) {
	var result api.StartCaptureResponse
	if err := c.do(http.MethodPost, "/api/captures", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCapture sends GET /api/captures/{id} to retrieve job status.
func (c *CaptureClient) GetCapture(jobID string) (*api.JobStatusResponse, error) {
	var result api.JobStatusResponse
	if err := c.do(http.MethodGet, "/api/captures/"+jobID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListCaptures sends GET /api/captures to list all tracked jobs.
func (c *CaptureClient) ListCaptures() ([]api.JobStatusResponse, error) {
	var result api.ListJobsResponse
	if err := c.do(http.MethodGet, "/api/captures", nil, &result); err != nil {
		return nil, err
	}
	return result.Jobs, nil
}

// PauseCapture sends POST /api/captures/{id}/pause.
func (c *CaptureClient) PauseCapture(jobID string) error {
	return c.do(http.MethodPost, "/api/captures/"+jobID+"/pause", nil, nil)
}

// ResumeCapture sends POST /api/captures/{id}/resume.
func (c *CaptureClient) ResumeCapture(jobID string) error {
	return c.do(http.MethodPost, "/api/captures/"+jobID+"/resume", nil, nil)
}

// CancelCapture sends POST /api/captures/{id}/cancel.
func (c *CaptureClient) CancelCapture(jobID string) error {
	return c.do(http.MethodPost, "/api/captures/"+jobID+"/cancel", nil, nil)
}

// CameraStatus sends GET /api/camera/status.
func (c *CaptureClient) CameraStatus() (*api.CameraStatusResponse, error) {
	var result api.CameraStatusResponse
	if err := c.do(http.MethodGet, "/api/camera/status", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConnectCamera sends POST /api/camera/connect.
func (c *CaptureClient) ConnectCamera() error {
	return c.do(http.MethodPost, "/api/camera/connect", nil, nil)
}

// DisconnectCamera sends POST /api/camera/disconnect.
func (c *CaptureClient) DisconnectCamera() error {
	return c.do(http.MethodPost, "/api/camera/disconnect", nil, nil)
}
