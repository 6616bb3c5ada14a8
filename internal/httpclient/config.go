package httpclient

import (
	"time"
)

// HTTPClientConfig holds configuration for the discovery HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration     // Request timeout, 0 leaves it to the request context
	FollowRedirects       bool              // Whether to follow redirects
	MaxRedirects          int               // Maximum number of redirects to follow
	CustomHeaders         map[string]string // Headers added to all requests
	UserAgent             string            // User-Agent header
	MaxContentSize        int               // Response body limit in bytes, 0 for no limit
	MaxIdleConns          int               // Maximum idle connections
	MaxIdleConnsPerHost   int               // Maximum idle connections per host
	IdleConnTimeout       time.Duration     // Idle connection timeout
	ExpectContinueTimeout time.Duration     // Expect 100-continue timeout
	DialTimeout           time.Duration     // Connection dial timeout, 0 leaves it to the request context
	KeepAlive             time.Duration     // Keep-alive duration
	EnableHTTP2           bool              // Enable HTTP/2 support
}

// DefaultHTTPClientConfig returns the default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               0,
		FollowRedirects:       true,
		MaxRedirects:          5,
		UserAgent:             "devtargets/1.0",
		MaxContentSize:        8 * 1024 * 1024,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           0,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
		CustomHeaders: map[string]string{
			"Accept":        "application/json",
			"Cache-Control": "no-cache",
		},
	}
}
