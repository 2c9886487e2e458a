// Package httputil provides a security-hardened HTTP client and input sanitization utilities.
package httputil

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxBodySize caps every response body read by the application.
const MaxBodySize = 10 * 1024 * 1024

// ErrBodyTooLarge is returned by ReadBody when a body exceeds MaxBodySize.
var ErrBodyTooLarge = errors.New("response body too large")

// BrowserUserAgent is sent on requests that do not carry a client-specific agent.
const BrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"

// NewClient creates a hardened HTTP client with secure defaults.
// Per-call deadlines come from the request context; Timeout is only a backstop.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}

// NewRequest builds a context-bound request after validating the URL.
// Browser-like defaults are set; callers override them as needed.
func NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	if err := ValidateURL(url); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", BrowserUserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	return req, nil
}

// ReadBody reads a whole body of at most MaxBodySize bytes. Larger bodies
// fail with ErrBodyTooLarge rather than being cut short.
func ReadBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, MaxBodySize)
	}
	return body, nil
}
