// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/ui/display"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	output  io.Writer
	encoder *json.Encoder
	stream  *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{
		output:  output,
		encoder: encoder,
		stream:  json.NewEncoder(output),
	}, nil
}

// RenderResult renders any result type as JSON. Progress events are written
// one per line so they can be consumed as a stream.
func (r *Renderer) RenderResult(result interface{}) error {
	if p, ok := result.(*display.Progress); ok {
		return r.stream.Encode(p)
	}
	return r.encoder.Encode(result)
}

// RenderError renders an error as JSON
func (r *Renderer) RenderError(err error) error {
	errorObj := map[string]interface{}{
		"error": err.Error(),
		"code":  string(errors.GetErrorCode(err)),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		errorObj["details"] = details
	}
	return r.encoder.Encode(errorObj)
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	messageObj := map[string]string{
		"message": msg,
	}
	return r.encoder.Encode(messageObj)
}
