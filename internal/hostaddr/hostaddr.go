// Package hostaddr validates and normalizes the host:port strings users type in
// to register a development server.
package hostaddr

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/aleister1102/devtargets/internal/common"
)

// DefaultPort is appended to host addresses entered without a port.
const DefaultPort = "8081"

// InvalidHostMessage is the user-facing text for any rejected address.
const InvalidHostMessage = "Invalid host address"

var (
	// ErrEmptyHost is returned for blank input; callers usually ignore it silently.
	ErrEmptyHost = errors.New("host address is empty")
	// ErrInvalidHost is wrapped by every validation failure other than ErrEmptyHost.
	ErrInvalidHost = errors.New("invalid host address")
)

var (
	leadingSchemeRegex   = regexp.MustCompile(`^https?://`)
	remainingSchemeRegex = regexp.MustCompile(`(?i)^https?://`)
	trailingSlashRegex   = regexp.MustCompile(`/+$`)
)

// Normalize turns user input into a canonical "hostname:port" string.
//
// One leading http:// or https:// and any trailing slashes are stripped; a scheme
// that is still present afterwards is rejected rather than silently removed. A
// missing port becomes DefaultPort. The result must be a bare authority: no
// userinfo, path, query or fragment.
func Normalize(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	host = leadingSchemeRegex.ReplaceAllString(host, "")
	host = trailingSlashRegex.ReplaceAllString(host, "")
	if host == "" {
		return "", ErrEmptyHost
	}

	if remainingSchemeRegex.MatchString(host) {
		return "", invalid(raw, "scheme prefix is not allowed")
	}

	if !strings.Contains(host, ":") {
		host += ":" + DefaultPort
	}

	if err := validateAuthority(host); err != nil {
		return "", invalid(raw, err.Error())
	}
	return host, nil
}

// validateAuthority checks that host parses as the authority of a synthetic
// http:// URL and nothing else.
func validateAuthority(host string) error {
	parsed, err := url.Parse("http://" + host)
	if err != nil {
		return err
	}
	if parsed.User != nil {
		return errors.New("credentials are not allowed")
	}
	if parsed.Path != "" || parsed.RawPath != "" {
		return errors.New("path is not allowed")
	}
	if parsed.RawQuery != "" || parsed.ForceQuery {
		return errors.New("query is not allowed")
	}
	if parsed.Fragment != "" || strings.Contains(host, "#") {
		return errors.New("fragment is not allowed")
	}

	hostname, port, err := net.SplitHostPort(parsed.Host)
	if err != nil {
		return err
	}
	if hostname == "" {
		return errors.New("hostname is empty")
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return errors.New("port must be a number between 1 and 65535")
	}
	return nil
}

func invalid(raw, reason string) error {
	return &common.ValidationError{
		Field:   "host",
		Value:   raw,
		Message: InvalidHostMessage,
		Wrapped: common.WrapError(ErrInvalidHost, reason),
	}
}

// IsKnownDuplicate reports whether addr is already registered. Both sides are
// expected to be normalized, so this is exact string matching.
func IsKnownDuplicate(hosts []string, addr string) bool {
	return slices.Contains(hosts, addr)
}

// Hostname returns the hostname part of a normalized address, without port.
// IPv6 literals are returned without brackets.
func Hostname(addr string) string {
	hostname, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return hostname
}

// DiscoveryURL is the endpoint a host publishes its debug targets on.
func DiscoveryURL(addr string) string {
	return "http://" + addr + "/json"
}
