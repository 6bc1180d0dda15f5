// Package client talks to the ytsummary HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// Sentinel errors for API client failures.
var (
	ErrServerUnreachable  = errors.New("api server unreachable")
	ErrTimeout            = errors.New("api request timeout")
	ErrUnexpectedResponse = errors.New("unexpected api response")
	ErrNotFound           = errors.New("analysis not found")
)

// Client is the interface for the ytsummary API.
type Client interface {
	FetchTranscript(ctx context.Context, videoURL string) ([]models.TranscriptItem, error)
	Analyze(ctx context.Context, items []models.TranscriptItem) (*models.Analysis, error)
	Save(ctx context.Context, videoID, videoURL string, a models.Analysis) (string, error)
	List(ctx context.Context) ([]*models.SavedAnalysis, error)
	Get(ctx context.Context, id string) (*models.SavedAnalysis, error)
	Update(ctx context.Context, id string, a models.Analysis) (*models.SavedAnalysis, error)
	Delete(ctx context.Context, id string) error
	Health(ctx context.Context) error
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Details string
	VideoID string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// UserMessage returns the server's user-facing message.
func (e *APIError) UserMessage() string { return e.Message }

// Is matches ErrNotFound for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the API at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) FetchTranscript(ctx context.Context, videoURL string) ([]models.TranscriptItem, error) {
	var out struct {
		Transcript []models.TranscriptItem `json:"transcript"`
	}
	if err := c.do(ctx, http.MethodPost, "/transcript", map[string]string{"url": videoURL}, &out); err != nil {
		return nil, err
	}
	return out.Transcript, nil
}

func (c *HTTPClient) Analyze(ctx context.Context, items []models.TranscriptItem) (*models.Analysis, error) {
	var out struct {
		Analysis *models.Analysis `json:"analysis"`
	}
	req := map[string]any{"transcript": items}
	if err := c.do(ctx, http.MethodPost, "/analyze", req, &out); err != nil {
		return nil, err
	}
	if out.Analysis == nil {
		return nil, fmt.Errorf("%w: analysis missing from response", ErrUnexpectedResponse)
	}
	return out.Analysis, nil
}

func (c *HTTPClient) Save(ctx context.Context, videoID, videoURL string, a models.Analysis) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	req := map[string]any{"videoId": videoID, "videoUrl": videoURL, "analysis": a}
	if err := c.do(ctx, http.MethodPost, "/save-analysis", req, &out); err != nil {
		return "", err
	}
	if !out.Success || out.ID == "" {
		return "", fmt.Errorf("%w: save returned no id", ErrUnexpectedResponse)
	}
	return out.ID, nil
}

func (c *HTTPClient) List(ctx context.Context) ([]*models.SavedAnalysis, error) {
	var out struct {
		Analyses []*models.SavedAnalysis `json:"analyses"`
	}
	if err := c.do(ctx, http.MethodGet, "/saved-analyses", nil, &out); err != nil {
		return nil, err
	}
	if out.Analyses == nil {
		return []*models.SavedAnalysis{}, nil
	}
	return out.Analyses, nil
}

func (c *HTTPClient) Get(ctx context.Context, id string) (*models.SavedAnalysis, error) {
	var out struct {
		Analysis *models.SavedAnalysis `json:"analysis"`
	}
	if err := c.do(ctx, http.MethodGet, savedPath(id), nil, &out); err != nil {
		return nil, err
	}
	if out.Analysis == nil {
		return nil, fmt.Errorf("%w: analysis missing from response", ErrUnexpectedResponse)
	}
	return out.Analysis, nil
}

func (c *HTTPClient) Update(ctx context.Context, id string, a models.Analysis) (*models.SavedAnalysis, error) {
	var out struct {
		Success  bool                  `json:"success"`
		Analysis *models.SavedAnalysis `json:"analysis"`
	}
	if err := c.do(ctx, http.MethodPut, savedPath(id), map[string]any{"analysis": a}, &out); err != nil {
		return nil, err
	}
	if out.Analysis == nil {
		return nil, fmt.Errorf("%w: analysis missing from response", ErrUnexpectedResponse)
	}
	return out.Analysis, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, savedPath(id), nil, nil)
}

// Health returns nil when the server reports every dependency ok.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func savedPath(id string) string {
	return "/saved-analyses/" + url.PathEscape(id)
}

// do sends body as JSON and decodes a 2xx response into out (when non-nil).
// Non-2xx responses become *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %v", ErrUnexpectedResponse, method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
		VideoID string `json:"videoId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		apiErr.VideoID = body.VideoID
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrServerUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
