package registry

import (
	"fmt"

	"github.com/aleister1102/devtargets/internal/targets"
)

// EmptyTargetsMessage is shown for a reachable host with no targets.
const EmptyTargetsMessage = "No debug targets found on this host."

// HostEntry is one row of the host list.
type HostEntry struct {
	Host   string
	Status string
	Active bool
}

// HostsView is the ordered host list with the active selection.
type HostsView struct {
	Hosts  []HostEntry
	Active string
}

// TargetCard is the display data of one debug target.
type TargetCard struct {
	Index   int
	Title   string
	PageURL string
	Type    string
	ShortID string
	// Launch is nil when the target has no usable debug socket.
	Launch *targets.LaunchURLs
}

// TargetsView lists the targets of one host.
type TargetsView struct {
	Host  string
	Cards []TargetCard
}

// CountLabel is the "(N targets)" toolbar text.
func (v TargetsView) CountLabel() string {
	if len(v.Cards) == 1 {
		return "(1 target)"
	}
	return fmt.Sprintf("(%d targets)", len(v.Cards))
}

// ErrorView describes a failed probe.
type ErrorView struct {
	Host    string
	URL     string
	Message string
}

// Headline is the first banner line.
func (v ErrorView) Headline() string {
	return "Failed to fetch " + v.URL
}

func buildCards(resolver *targets.Resolver, host string, descriptors []targets.Descriptor) []TargetCard {
	cards := make([]TargetCard, 0, len(descriptors))
	for i, d := range descriptors {
		cards = append(cards, TargetCard{
			Index:   i,
			Title:   d.DisplayTitle(),
			PageURL: d.URL,
			Type:    d.DisplayType(),
			ShortID: d.ShortID(),
			Launch:  resolver.Resolve(host, d),
		})
	}
	return cards
}
