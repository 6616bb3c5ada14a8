package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aleister1102/devtargets/internal/models"
	"github.com/aleister1102/devtargets/internal/registry"
	"github.com/charmbracelet/lipgloss"
)

const (
	LoadingMessage   = "Loading debug targets…"
	EmptyViewMessage = "No host selected. Add a Metro host to list its debug targets."
	NoDebugURLBadge  = "no debug URL"
)

// ConsoleOptions selects which views a Console prints.
type ConsoleOptions struct {
	// HideHosts skips the host list, for commands that only show targets.
	HideHosts bool
	// HideLoading skips the loading line.
	HideLoading bool
}

type consoleStyles struct {
	title     lipgloss.Style
	active    lipgloss.Style
	reachable lipgloss.Style
	failed    lipgloss.Style
	unknown   lipgloss.Style
	muted     lipgloss.Style
	badge     lipgloss.Style
	banner    lipgloss.Style
	inputErr  lipgloss.Style
}

// Console renders registry views as styled text. Colors are only emitted when
// out is a terminal.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	opts    ConsoleOptions
	styles  consoleStyles
	current string
}

// NewConsole creates a console renderer writing to out.
func NewConsole(out io.Writer, opts ConsoleOptions) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:  out,
		opts: opts,
		styles: consoleStyles{
			title:     r.NewStyle().Bold(true),
			active:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			reachable: r.NewStyle().Foreground(lipgloss.Color("42")),
			failed:    r.NewStyle().Foreground(lipgloss.Color("196")),
			unknown:   r.NewStyle().Foreground(lipgloss.Color("245")),
			muted:     r.NewStyle().Foreground(lipgloss.Color("245")),
			badge:     r.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")).Padding(0, 1),
			banner: r.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("196")).
				Padding(0, 1),
			inputErr: r.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

func (c *Console) RenderHosts(view registry.HostsView) {
	if c.opts.HideHosts {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.WriteString(c.styles.title.Render(fmt.Sprintf("Hosts (%d)", len(view.Hosts))))
	b.WriteString("\n")
	if len(view.Hosts) == 0 {
		b.WriteString("  " + c.styles.muted.Render("none") + "\n")
	}
	for _, entry := range view.Hosts {
		marker := "  "
		name := entry.Host
		if entry.Active {
			marker = "> "
			name = c.styles.active.Render(name)
		}
		b.WriteString(marker + c.statusDot(entry.Status) + " " + name + "\n")
	}
	c.write(b.String())
}

func (c *Console) statusDot(status string) string {
	switch status {
	case models.HostStatusReachable:
		return c.styles.reachable.Render("●")
	case models.HostStatusError:
		return c.styles.failed.Render("●")
	default:
		return c.styles.unknown.Render("○")
	}
}

func (c *Console) RenderLoading(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = host
	if c.opts.HideLoading {
		return
	}
	c.write(c.styles.title.Render(host) + " " + c.styles.muted.Render(LoadingMessage) + "\n")
}

func (c *Console) RenderTargets(view registry.TargetsView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = view.Host

	var b strings.Builder
	b.WriteString(c.styles.title.Render(view.Host) + " " + c.styles.muted.Render(view.CountLabel()) + "\n")
	if len(view.Cards) == 0 {
		b.WriteString("  " + c.styles.muted.Render(registry.EmptyTargetsMessage) + "\n")
		c.write(b.String())
		return
	}

	for _, card := range view.Cards {
		fmt.Fprintf(&b, "  [%d] %s\n", card.Index, c.styles.title.Render(card.Title))
		if card.PageURL != "" {
			b.WriteString("      " + c.styles.muted.Render(card.PageURL) + "\n")
		}

		badges := []string{c.styles.badge.Render(card.Type)}
		if card.ShortID != "" {
			badges = append(badges, c.styles.badge.Render("id: "+card.ShortID))
		}
		if card.Launch == nil {
			badges = append(badges, c.styles.badge.Render(NoDebugURLBadge))
		}
		b.WriteString("      " + strings.Join(badges, " ") + "\n")

		if card.Launch != nil {
			b.WriteString("      open: " + card.Launch.Embedded + "\n")
			b.WriteString("      copy: " + card.Launch.Hosted + "\n")
		}
	}
	c.write(b.String())
}

func (c *Console) RenderError(view registry.ErrorView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = view.Host

	body := view.Headline() + "\n" + c.styles.failed.Render(view.Message)
	c.write(c.styles.banner.Render(body) + "\n")
}

func (c *Console) RenderEmpty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = ""
	c.write(c.styles.muted.Render(EmptyViewMessage) + "\n")
}

// RenderInputError prints message. Clearing is a no-op on a line-oriented console.
func (c *Console) RenderInputError(message string) {
	if message == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(c.styles.inputErr.Render("✗ "+message) + "\n")
}

// CurrentHost is the host whose targets, error or loading state was last shown.
func (c *Console) CurrentHost() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Console) write(s string) {
	_, _ = io.WriteString(c.out, s)
}
