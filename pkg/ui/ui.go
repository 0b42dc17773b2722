// Package ui renders command results in terminal, text or JSON form.
package ui

import (
	"io"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/ui/json"
	"github.com/arthur-debert/lumina-project/pkg/ui/terminal"
	"github.com/arthur-debert/lumina-project/pkg/ui/text"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderResult renders a result from the display package
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// FormatAuto is resolved against output first.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch Resolve(format, output) {
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}
