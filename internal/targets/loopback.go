package targets

import (
	"net"
	"net/url"
	"slices"
	"strings"
)

// loopbackHostnames are only meaningful on the debug server's own machine.
var loopbackHostnames = []string{"0.0.0.0", "localhost", "127.0.0.1"}

// IsLoopback reports whether hostname is one of the literal loopback forms a
// debug server advertises its sockets on. Hostnames compare case-insensitively.
func IsLoopback(hostname string) bool {
	return slices.Contains(loopbackHostnames, strings.ToLower(hostname))
}

// RewriteLoopback replaces a loopback hostname in socket with actualHostname,
// keeping the port. Other hostnames are left alone. socket is modified in place.
func RewriteLoopback(socket *url.URL, actualHostname string) {
	if socket == nil || actualHostname == "" || !IsLoopback(socket.Hostname()) {
		return
	}

	port := socket.Port()
	if port != "" {
		socket.Host = net.JoinHostPort(actualHostname, port)
		return
	}
	if strings.Contains(actualHostname, ":") {
		socket.Host = "[" + actualHostname + "]"
		return
	}
	socket.Host = actualHostname
}
