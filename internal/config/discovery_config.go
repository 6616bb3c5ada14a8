package config

import "time"

// DiscoveryConfig controls how debug servers are probed for targets
type DiscoveryConfig struct {
	TimeoutSecs int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
	UserAgent   string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	EnableHTTP2 bool   `json:"enable_http2" yaml:"enable_http2"`
	ScanPorts   []int  `json:"scan_ports,omitempty" yaml:"scan_ports,omitempty" validate:"omitempty,dive,min=1,max=65535"`
}

// NewDefaultDiscoveryConfig creates default discovery configuration
func NewDefaultDiscoveryConfig() DiscoveryConfig {
	ports := make([]int, len(DefaultDiscoveryScanPorts))
	copy(ports, DefaultDiscoveryScanPorts)
	return DiscoveryConfig{
		TimeoutSecs: DefaultDiscoveryTimeoutSecs,
		UserAgent:   DefaultDiscoveryUserAgent,
		EnableHTTP2: DefaultDiscoveryEnableHTTP2,
		ScanPorts:   ports,
	}
}

// Timeout returns the session deadline, falling back to the default for unset values.
func (c DiscoveryConfig) Timeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return DefaultDiscoveryTimeoutSecs * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}
