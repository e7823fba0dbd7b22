package garage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"frontdesk/pkg/config"
	"frontdesk/pkg/session"
)

// Client talks to the garage backend REST APIs. Every call carries the
// caller's bearer credential explicitly; nothing is read from ambient state.
type Client struct {
	HTTPClient *http.Client
	Endpoints  config.BackendConfig
	Log        *logrus.Logger
}

func New(endpoints config.BackendConfig, log *logrus.Logger) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Endpoints:  endpoints,
		Log:        log,
	}
}

func (c *Client) doJSON(ctx context.Context, cred session.Credential, method, rawURL string, reqBody any, respBody any) (int, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if cred != "" {
		req.Header.Set("Authorization", "Bearer "+string(cred))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, readErr
	}

	// Surface the backend error body for non-2xx, so callers can see what it rejected.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(b) > 0 {
			return resp.StatusCode, fmt.Errorf("garage api error: status=%d body=%s", resp.StatusCode, string(b))
		}
		return resp.StatusCode, fmt.Errorf("garage api error: status=%d", resp.StatusCode)
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return resp.StatusCode, fmt.Errorf("decode garage response failed: %w body=%s", err, string(b))
		}
	}

	return resp.StatusCode, nil
}

func withQuery(endpoint string, q url.Values) string {
	if len(q) == 0 {
		return endpoint
	}
	return endpoint + "?" + q.Encode()
}
