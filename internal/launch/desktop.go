package launch

import (
	"context"
	"fmt"
	"io"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/atotto/clipboard"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog"
)

// Desktop opens inspector URLs in the user's browser and copies them to the
// system clipboard. Both actions report their result on Feedback.
type Desktop struct {
	logger   zerolog.Logger
	feedback io.Writer
	open     func(url string)
	copy     func(text string) error
}

// DesktopBuilder provides a fluent interface for creating Desktop
type DesktopBuilder struct {
	logger   zerolog.Logger
	feedback io.Writer
	open     func(url string)
	copy     func(text string) error
}

// NewDesktopBuilder creates a builder wired to the real browser and clipboard
func NewDesktopBuilder(logger zerolog.Logger) *DesktopBuilder {
	return &DesktopBuilder{
		logger:   logger.With().Str("component", "Desktop").Logger(),
		feedback: io.Discard,
		open:     launcher.Open,
		copy:     clipboard.WriteAll,
	}
}

// WithFeedback sets where short confirmations are written
func (b *DesktopBuilder) WithFeedback(w io.Writer) *DesktopBuilder {
	if w != nil {
		b.feedback = w
	}
	return b
}

// WithOpener replaces the browser opener
func (b *DesktopBuilder) WithOpener(open func(url string)) *DesktopBuilder {
	b.open = open
	return b
}

// WithClipboard replaces the clipboard writer
func (b *DesktopBuilder) WithClipboard(write func(text string) error) *DesktopBuilder {
	b.copy = write
	return b
}

// Build creates a new Desktop instance
func (b *DesktopBuilder) Build() (*Desktop, error) {
	if b.open == nil {
		return nil, common.NewValidationError("opener", nil, "browser opener cannot be nil")
	}
	if b.copy == nil {
		return nil, common.NewValidationError("clipboard", nil, "clipboard writer cannot be nil")
	}
	return &Desktop{
		logger:   b.logger,
		feedback: b.feedback,
		open:     b.open,
		copy:     b.copy,
	}, nil
}

// OpenEmbedded opens url in the default browser.
func (d *Desktop) OpenEmbedded(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if url == "" {
		return common.NewValidationError("url", url, "nothing to open")
	}

	if bin, found := launcher.LookPath(); found {
		d.logger.Debug().Str("browser", bin).Msg("Browser found")
	}
	d.open(url)
	d.logger.Info().Str("url", url).Msg("Opened embedded frontend")
	fmt.Fprintf(d.feedback, "Opened %s\n", url)
	return nil
}

// CopyHosted writes url to the system clipboard.
func (d *Desktop) CopyHosted(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if url == "" {
		return common.NewValidationError("url", url, "nothing to copy")
	}

	if err := d.copy(url); err != nil {
		d.logger.Error().Err(err).Msg("Failed to copy to clipboard")
		return common.WrapError(err, "failed to copy to clipboard")
	}
	d.logger.Info().Str("url", url).Msg("Copied hosted frontend URL")
	fmt.Fprintln(d.feedback, "Copied!")
	return nil
}
