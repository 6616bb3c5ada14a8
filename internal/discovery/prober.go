package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/aleister1102/devtargets/internal/hostaddr"
	"github.com/aleister1102/devtargets/internal/httpclient"
	"github.com/aleister1102/devtargets/internal/targets"
	"github.com/rs/zerolog"
)

// User-facing failure messages.
const (
	TimeoutMessage         = "Request timed out"
	InvalidResponseMessage = "Invalid response from server"
)

var (
	// ErrSuperseded is the cancellation cause of a session replaced by a newer one.
	ErrSuperseded = errors.New("superseded by a newer discovery session")
	// ErrDeadlineExceeded is the cancellation cause of a session that ran out of time.
	ErrDeadlineExceeded = errors.New("discovery deadline exceeded")
)

// Fetcher performs the discovery GET.
type Fetcher interface {
	Get(ctx context.Context, url string) (*httpclient.HTTPResponse, error)
}

// Prober fetches and classifies one host's target listing.
type Prober struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewProber creates a prober on top of fetcher.
func NewProber(fetcher Fetcher, logger zerolog.Logger) *Prober {
	return &Prober{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "Prober").Logger(),
	}
}

// Probe requests http://<host>/json. On success it returns the object entries
// of the array body. Failures are classified as *common.TimeoutError when ctx
// was cancelled with ErrDeadlineExceeded or the transport gave up waiting,
// *common.HTTPError for non-2xx
// status, *common.ProtocolError for a body that is not a JSON array and
// *common.NetworkError for everything else. Cancellation for any other cause
// returns that cause.
func (p *Prober) Probe(ctx context.Context, host string) ([]targets.Descriptor, error) {
	discoveryURL := hostaddr.DiscoveryURL(host)

	resp, err := p.fetcher.Get(ctx, discoveryURL)
	if err != nil {
		return nil, p.classifyTransportError(ctx, discoveryURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Debug().Str("url", discoveryURL).Int("status_code", resp.StatusCode).Msg("Discovery endpoint returned non-success status")
		return nil, common.NewHTTPErrorWithURL(resp.StatusCode, fmt.Sprintf("HTTP %d", resp.StatusCode), discoveryURL)
	}

	items, err := decodeArray(resp.Body)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", discoveryURL).Msg("Discovery endpoint returned an unusable body")
		return nil, common.NewProtocolError(discoveryURL, InvalidResponseMessage, err)
	}

	return targets.ParseDescriptors(items), nil
}

func (p *Prober) classifyTransportError(ctx context.Context, discoveryURL string, err error) error {
	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		var expired *deadlineError
		if errors.As(cause, &expired) {
			return common.NewTimeoutError(discoveryURL, expired.timeout)
		}
		if errors.Is(cause, ErrDeadlineExceeded) {
			return common.NewTimeoutError(discoveryURL, 0)
		}
		return cause
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return common.NewTimeoutError(discoveryURL, 0)
	}

	reason := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		reason = urlErr.Err.Error()
	}
	return common.NewNetworkError(discoveryURL, reason, err)
}

// deadlineError is the cancellation cause armed by a session deadline.
type deadlineError struct {
	timeout time.Duration
}

func (e *deadlineError) Error() string {
	return fmt.Sprintf("%v after %s", ErrDeadlineExceeded, e.timeout)
}

func (e *deadlineError) Is(target error) bool {
	return target == ErrDeadlineExceeded
}

func decodeArray(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, common.NewError("body is not valid JSON")
		}
		return nil, common.NewError("body is not a JSON array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, common.WrapError(err, "failed to decode target list")
	}
	return items, nil
}

// Message is the text shown to the user for a probe failure.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var timeoutErr *common.TimeoutError
	if errors.As(err, &timeoutErr) {
		return TimeoutMessage
	}
	var httpErr *common.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	var protocolErr *common.ProtocolError
	if errors.As(err, &protocolErr) {
		return protocolErr.Reason
	}
	var networkErr *common.NetworkError
	if errors.As(err, &networkErr) {
		return networkErr.Reason
	}
	return err.Error()
}
