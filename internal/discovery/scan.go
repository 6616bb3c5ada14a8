package discovery

import (
	"context"
	"net"
	"slices"
	"strconv"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/rs/zerolog"
	gopsnet "github.com/shirou/gopsutil/v3/net"
)

// DefaultScanPorts are the ports development servers listen on out of the box.
var DefaultScanPorts = []int{8081, 8082, 19000, 19001}

// ConnectionLister returns the socket table for kind ("tcp", "tcp4", ...).
type ConnectionLister func(ctx context.Context, kind string) ([]gopsnet.ConnectionStat, error)

// Scanner finds local development servers by their listening sockets.
type Scanner struct {
	list   ConnectionLister
	ports  []int
	logger zerolog.Logger
}

// NewScanner creates a scanner over the system socket table. Empty ports
// selects DefaultScanPorts.
func NewScanner(ports []int, logger zerolog.Logger) *Scanner {
	return NewScannerWithLister(gopsnet.ConnectionsWithContext, ports, logger)
}

// NewScannerWithLister creates a scanner over a custom socket table source.
func NewScannerWithLister(list ConnectionLister, ports []int, logger zerolog.Logger) *Scanner {
	if len(ports) == 0 {
		ports = DefaultScanPorts
	}
	return &Scanner{
		list:   list,
		ports:  slices.Clone(ports),
		logger: logger.With().Str("component", "Scanner").Logger(),
	}
}

// ScanLocal returns host candidates for every TCP socket listening on one of
// the scanner's ports, sorted and without duplicates. Wildcard and loopback
// listeners are reported as localhost.
func (s *Scanner) ScanLocal(ctx context.Context) ([]string, error) {
	conns, err := s.list(ctx, "tcp")
	if err != nil {
		return nil, common.WrapError(err, "failed to list listening sockets")
	}

	candidates := make([]string, 0)
	for _, conn := range conns {
		if conn.Status != "LISTEN" {
			continue
		}
		port := int(conn.Laddr.Port)
		if !slices.Contains(s.ports, port) {
			continue
		}

		candidate := net.JoinHostPort(listenHostname(conn.Laddr.IP), strconv.Itoa(port))
		if !slices.Contains(candidates, candidate) {
			candidates = append(candidates, candidate)
		}
	}
	slices.Sort(candidates)

	s.logger.Debug().
		Ints("ports", s.ports).
		Int("listening_sockets", len(conns)).
		Strs("candidates", candidates).
		Msg("Local scan completed")

	return candidates, nil
}

func listenHostname(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsUnspecified() || parsed.IsLoopback() {
		return "localhost"
	}
	return parsed.String()
}
