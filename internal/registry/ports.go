package registry

import (
	"context"
	"encoding/json"

	"github.com/aleister1102/devtargets/internal/models"
)

// Store keys holding the registry state.
const (
	HostsKey      = "rn-devtools-hosts"
	ActiveHostKey = "rn-devtools-active-host"
)

// Store is the persistent key-value collaborator. Values are JSON documents.
// Keys missing from the store are absent from the map returned by Get.
type Store interface {
	Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error)
	Set(ctx context.Context, values map[string]json.RawMessage) error
}

// Renderer draws registry state. Calls are serialized by the controller.
type Renderer interface {
	// RenderHosts is called after every host list or status change.
	RenderHosts(view HostsView)
	// RenderLoading is called when a discovery session begins for host.
	RenderLoading(host string)
	// RenderTargets shows the targets of an authoritative successful session.
	RenderTargets(view TargetsView)
	// RenderError shows the failure of an authoritative session.
	RenderError(view ErrorView)
	// RenderEmpty shows the no-selection view.
	RenderEmpty()
	// RenderInputError shows message next to the host input; "" clears it.
	RenderInputError(message string)
}

// LaunchAction opens inspector frontends.
type LaunchAction interface {
	// OpenEmbedded opens the locally bundled frontend in a browser.
	OpenEmbedded(ctx context.Context, url string) error
	// CopyHosted puts the debug server's frontend URL on the clipboard.
	CopyHosted(ctx context.Context, url string) error
}

// HistoryRecorder receives the outcome of every authoritative session.
type HistoryRecorder interface {
	RecordProbe(ctx context.Context, record models.ProbeRecord) error
}
