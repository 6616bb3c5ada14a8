package targets

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/aleister1102/devtargets/internal/hostaddr"
)

const (
	DefaultFrontendEntry = "rn_fusebox.html"
	DefaultHostedPath    = "/debugger-frontend"
)

var (
	frontendSocketParamRegex = regexp.MustCompile(`[?&](wss?)=([^&]+)`)
	socketSchemeRegex        = regexp.MustCompile(`^wss?://`)

	// url.QueryEscape output, corrected to what encodeURIComponent produces.
	componentEscaper = strings.NewReplacer(
		"+", "%20",
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	)
)

// LaunchURLs are the two ways to open an inspector on one target. Both carry
// the same ws= or wss= parameter built from SocketAddress.
type LaunchURLs struct {
	// SocketAddress is host[:port] followed by path and query, without scheme.
	SocketAddress string
	Secure        bool
	// Degraded is set when the advertised socket URL could not be parsed and
	// SocketAddress is the raw reference with its scheme stripped.
	Degraded bool
	// Embedded opens the locally bundled frontend.
	Embedded string
	// Hosted opens the frontend served by the debug server itself.
	Hosted string
}

// ParamName is the query parameter the frontend reads the socket address from.
func (l LaunchURLs) ParamName() string {
	if l.Secure {
		return "wss"
	}
	return "ws"
}

// FrontendOptions locates the inspector frontends.
type FrontendOptions struct {
	// EmbeddedBaseURL is the directory URL of the locally bundled frontend.
	EmbeddedBaseURL string
	// Entry is the frontend HTML file, shared by both frontends.
	Entry string
	// HostedPath is where the debug server serves its copy of the frontend.
	HostedPath string
}

// Resolver derives launch URLs for target descriptors.
type Resolver struct {
	embeddedBase string
	entry        string
	hostedPath   string
}

// NewResolver creates a resolver, filling in defaults for empty options.
func NewResolver(opts FrontendOptions) *Resolver {
	entry := strings.TrimLeft(opts.Entry, "/")
	if entry == "" {
		entry = DefaultFrontendEntry
	}
	hostedPath := strings.TrimRight(opts.HostedPath, "/")
	if hostedPath == "" {
		hostedPath = DefaultHostedPath
	}
	if !strings.HasPrefix(hostedPath, "/") {
		hostedPath = "/" + hostedPath
	}
	return &Resolver{
		embeddedBase: strings.TrimRight(opts.EmbeddedBaseURL, "/"),
		entry:        entry,
		hostedPath:   hostedPath,
	}
}

// Resolve returns the launch URLs for d as seen from host, or nil when the
// descriptor carries no usable debug socket. It never fails otherwise: an
// unparseable socket URL yields a degraded result instead.
func (r *Resolver) Resolve(host string, d Descriptor) *LaunchURLs {
	ref, ok := socketReference(d)
	if !ok {
		return nil
	}

	sock := ref.parse(hostaddr.Hostname(host))
	address := sock.address()
	if address == "" {
		return nil
	}

	result := &LaunchURLs{
		SocketAddress: address,
		Secure:        sock.secure(),
	}
	_, result.Degraded = sock.(degradedSocket)

	query := "?" + result.ParamName() + "=" + encodeURIComponent(address)
	result.Embedded = r.embeddedBase + "/" + r.entry + query
	result.Hosted = "http://" + host + r.hostedPath + "/" + r.entry + query
	return result
}

// socketRef is the raw debug socket reference found in a descriptor.
type socketRef struct {
	raw string
	// bare references come from a frontend URL parameter and have no scheme;
	// the parameter name decides the transport.
	bare       bool
	secureHint bool
}

func socketReference(d Descriptor) (socketRef, bool) {
	if d.WebSocketDebuggerURL != "" {
		return socketRef{raw: d.WebSocketDebuggerURL}, true
	}
	if d.DevtoolsFrontendURL == "" {
		return socketRef{}, false
	}

	match := frontendSocketParamRegex.FindStringSubmatch(d.DevtoolsFrontendURL)
	if match == nil {
		return socketRef{}, false
	}
	decoded, err := url.PathUnescape(match[2])
	if err != nil {
		decoded = match[2]
	}
	return socketRef{raw: decoded, bare: true, secureHint: match[1] == "wss"}, true
}

// socket is either a parsedSocket or a degradedSocket.
type socket interface {
	address() string
	secure() bool
}

type parsedSocket struct {
	u        *url.URL
	isSecure bool
}

func (p parsedSocket) address() string {
	path := p.u.EscapedPath()
	if path == "" {
		path = "/"
	}
	address := p.u.Host + path
	if p.u.RawQuery != "" {
		address += "?" + p.u.RawQuery
	}
	return address
}

func (p parsedSocket) secure() bool { return p.isSecure }

type degradedSocket struct {
	raw      string
	isSecure bool
}

func (d degradedSocket) address() string { return d.raw }

func (d degradedSocket) secure() bool { return d.isSecure }

// parse tries a structured parse and falls back to string surgery.
func (ref socketRef) parse(actualHostname string) socket {
	candidate := ref.raw
	if ref.bare {
		candidate = "ws://" + ref.raw
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ref.degrade()
	}

	isSecure := strings.EqualFold(u.Scheme, "wss")
	if ref.bare {
		isSecure = ref.secureHint
	}
	u.Host = strings.ToLower(u.Host)
	RewriteLoopback(u, actualHostname)
	dropDefaultPort(u)
	return parsedSocket{u: u, isSecure: isSecure}
}

var defaultPorts = map[string]string{
	"ws":    "80",
	"wss":   "443",
	"http":  "80",
	"https": "443",
}

// dropDefaultPort removes a port equal to the scheme's default, so
// ws://host:80/x and ws://host/x yield the same socket address.
func dropDefaultPort(u *url.URL) {
	port := u.Port()
	if port == "" || defaultPorts[strings.ToLower(u.Scheme)] != port {
		return
	}
	hostname := u.Hostname()
	if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	}
	u.Host = hostname
}

func (ref socketRef) degrade() degradedSocket {
	if ref.bare {
		return degradedSocket{raw: ref.raw, isSecure: ref.secureHint}
	}
	return degradedSocket{
		raw:      socketSchemeRegex.ReplaceAllString(ref.raw, ""),
		isSecure: strings.HasPrefix(ref.raw, "wss://"),
	}
}

func encodeURIComponent(s string) string {
	return componentEscaper.Replace(url.QueryEscape(s))
}
