package httpclient

import (
	"net/http"
	"time"
)

// New builds the shared HTTP client for upstream calls. The per-call
// timeout is independent of the rate-budget spacing enforced by the
// fetcher; gzip decoding is handled by the default transport.
func New(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
