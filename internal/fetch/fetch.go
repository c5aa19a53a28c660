// Package fetch downloads external images so they can be re-uploaded to
// the object store. Downloads are size-capped; nothing is cached.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notepress/notepress/internal/common"
)

// DefaultMaxBytes is the download ceiling applied when the caller
// passes no limit.
const DefaultMaxBytes = 50 << 20

// Client downloads remote assets.
type Client struct {
	hc       *http.Client
	maxBytes int64
}

func NewClient(timeout time.Duration, maxBytes int64) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{hc: &http.Client{Timeout: timeout}, maxBytes: maxBytes}
}

// Fetch downloads url and returns the body bytes and the declared content
// type. The size ceiling is enforced twice: against the Content-Length
// header before reading, and against the bytes actually accumulated,
// whichever triggers first (common.ErrSizeLimit).
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: get %s: %v", common.ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &common.HTTPStatusError{Code: resp.StatusCode}
	}

	if resp.ContentLength > c.maxBytes {
		return nil, "", fmt.Errorf("%w: declared %d bytes, limit %d",
			common.ErrSizeLimit, resp.ContentLength, c.maxBytes)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %v", common.ErrNetwork, url, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, "", fmt.Errorf("%w: body exceeds %d bytes", common.ErrSizeLimit, c.maxBytes)
	}

	ct := resp.Header.Get("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return body, ct, nil
}
