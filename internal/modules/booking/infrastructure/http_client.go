package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBackendTimeout = 10 * time.Second

// RESTClient builds JSON requests against the booking API base URL.
type RESTClient struct {
	baseURL string
	client  *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration, client *http.Client) *RESTClient {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = "http://localhost:8000"
	}
	if client == nil {
		client = &http.Client{Timeout: timeoutOrDefault(timeout)}
	}
	return &RESTClient{baseURL: trimmed, client: client}
}

func (c *RESTClient) BaseURL() string { return c.baseURL }

// NewJSONRequest joins endpoint to the base URL, encodes query and marshals payload as the
// body when it is not nil.
func (c *RESTClient) NewJSONRequest(ctx context.Context, method, endpoint string, query url.Values, payload any) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *RESTClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value <= 0 {
		return defaultBackendTimeout
	}
	return value
}
