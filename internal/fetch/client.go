// Package fetch provides the HTTP client used to materialize remote source
// videos: plain GETs with redirect following and streamed bodies.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const userAgent = "clipdex-agent"

// Client wraps an http.Client configured for large media downloads. No
// overall timeout is applied; an in-flight download runs to completion or
// failure and is bounded by the caller's context, if any.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{}}
}

// DownloadTo streams the body of a GET request into w and returns the number
// of bytes written. Non-2xx responses are errors; whatever was already
// written to w is the caller's to discard.
func (c *Client) DownloadTo(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.Copy(w, resp.Body)
}
