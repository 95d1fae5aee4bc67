package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Dispatcher sends a payload to a URL once.
type Dispatcher interface {
	Dispatch(ctx context.Context, url string, p Payload) error
}

// Client posts payloads over HTTP without looking at the response.
type Client struct {
	HTTP *http.Client
}

// NewClient creates a client with the given dispatch timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		HTTP: &http.Client{Timeout: timeout},
	}
}

// Dispatch POSTs p as JSON. It only fails when the request cannot be built
// or sent; the response status and body are discarded unread.
func (c *Client) Dispatch(ctx context.Context, url string, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}
