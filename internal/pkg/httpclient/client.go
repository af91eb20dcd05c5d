package httpclient

import (
	"net/http"
	"time"
)

// DefaultTimeout applies when a caller passes a zero timeout
const DefaultTimeout = 30 * time.Second

// New creates an HTTP client with pooled keep-alive connections.
// Provider and diagram clients share this transport setup.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
