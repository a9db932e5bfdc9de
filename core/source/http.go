package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxBody caps the size of a single upstream response.
const maxBody = 64 << 20

// Client performs GET requests against upstream sources.
type Client struct {
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates an HTTP client with strict timeouts.
func NewClient(timeoutSeconds int, logger *zap.Logger) *Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &Client{
		http:   &http.Client{Transport: transport, Timeout: timeout},
		logger: logger,
	}
}

// Get fetches url and returns the body of a 2xx response. Any other outcome
// is a *Error.
func (c *Client) Get(ctx context.Context, src, entity, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Source: src, Entity: entity, URL: url, Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Source: src, Entity: entity, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &Error{Source: src, Entity: entity, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("Upstream request failed",
			zap.String("source", src),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return nil, &Error{Source: src, Entity: entity, URL: url, StatusCode: resp.StatusCode}
	}
	return body, nil
}
