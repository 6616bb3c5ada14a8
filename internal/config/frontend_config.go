package config

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FrontendConfig locates the embedded and hosted inspector frontends
type FrontendConfig struct {
	Entry           string `json:"entry,omitempty" yaml:"entry,omitempty"`
	AssetsDir       string `json:"assets_dir,omitempty" yaml:"assets_dir,omitempty"`
	EmbeddedBaseURL string `json:"embedded_base_url,omitempty" yaml:"embedded_base_url,omitempty" validate:"omitempty,url"`
	HostedPath      string `json:"hosted_path,omitempty" yaml:"hosted_path,omitempty" validate:"omitempty,startswith=/"`
}

// NewDefaultFrontendConfig creates default frontend configuration
func NewDefaultFrontendConfig() FrontendConfig {
	return FrontendConfig{
		Entry:      DefaultFrontendEntry,
		AssetsDir:  DefaultFrontendAssetsDir,
		HostedPath: DefaultFrontendHostedPath,
	}
}

// ResolveEmbeddedBaseURL returns EmbeddedBaseURL when set, otherwise a file
// URL for AssetsDir.
func (c FrontendConfig) ResolveEmbeddedBaseURL() string {
	if c.EmbeddedBaseURL != "" {
		return strings.TrimRight(c.EmbeddedBaseURL, "/")
	}
	dir := c.AssetsDir
	if dir == "" {
		dir = DefaultFrontendAssetsDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}
	return u.String()
}
