// Package tools is the action-submission boundary: it hands finalized request
// payloads to the downstream domain services over HTTP.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Runner submits a finalized payload to a named domain service.
type Runner interface {
	Call(ctx context.Context, service, method, path string, payload map[string]any) (map[string]any, error)
}

// HTTPRunner posts JSON to the configured per-domain service URLs. With tools
// disabled every call short-circuits to status "skipped" so the rest of the
// pipeline can be exercised without live backends.
type HTTPRunner struct {
	client      *http.Client
	serviceURLs map[string]string
	authToken   string
	enabled     bool
}

func NewHTTPRunner(serviceURLs map[string]string, authToken string, enabled bool, timeout time.Duration) *HTTPRunner {
	return &HTTPRunner{
		client:      &http.Client{Timeout: timeout},
		serviceURLs: serviceURLs,
		authToken:   authToken,
		enabled:     enabled,
	}
}

func (r *HTTPRunner) Call(ctx context.Context, service, method, path string, payload map[string]any) (map[string]any, error) {
	if !r.enabled {
		return map[string]any{"status": "skipped", "service": service, "reason": "tools disabled"}, nil
	}

	baseURL, ok := r.serviceURLs[service]
	if !ok {
		return nil, fmt.Errorf("unknown service: %s", service)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.authToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call to %s%s failed: %w", service, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s%s returned status %d", service, path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s%s: %w", service, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{"status": "ok"}, nil
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid response from %s%s: %w", service, path, err)
	}
	return result, nil
}
