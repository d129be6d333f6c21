package bazaar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "bazaar-flipper/1.0 (github.com)"

// Client is a timeout-bounded HTTP client for upstream snapshot fetches.
// The semaphore caps concurrent upstream requests; the shared result cache
// already bounds call frequency, this bounds bursts.
type Client struct {
	http *http.Client
	sem  chan struct{}
}

// NewClient creates a client whose every request waits at most timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		sem:  make(chan struct{}, 4),
	}
}

// GetJSON fetches a URL and decodes JSON into dst.
// Network errors, timeouts and non-200 statuses all surface as ErrUnavailable.
func (c *Client) GetJSON(ctx context.Context, url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: upstream %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}
