package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client delivers dispatch requests to worker endpoints.
type Client interface {
	Dispatch(ctx context.Context, req DispatchRequest) error
}

// HTTPClient posts dispatch requests to per-kind worker URLs.
type HTTPClient struct {
	endpoints map[string]string
	client    *http.Client
}

// NewHTTPClient creates a worker client from a kind-to-URL map.
func NewHTTPClient(endpoints map[string]string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
	}
}

// Dispatch posts the request as JSON to the endpoint registered for its kind.
func (c *HTTPClient) Dispatch(ctx context.Context, req DispatchRequest) error {
	endpoint, ok := c.endpoints[req.Kind]
	if !ok || endpoint == "" {
		return fmt.Errorf("%w: no endpoint configured for kind %q", ErrValidation, req.Kind)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal dispatch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create dispatch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("deliver job %s: %w", req.JobHandle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("worker endpoint %s returned %d", endpoint, resp.StatusCode)
	}

	return nil
}
