package ui

import (
	"os"
	"strings"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format represents the output format type
type Format int

const (
	// FormatAuto picks terminal or text output from the writer's capabilities
	FormatAuto Format = iota
	// FormatTerminal renders rich terminal output with colors and styling
	FormatTerminal
	// FormatText renders plain text output without any styling
	FormatText
	// FormatJSON renders machine-readable JSON output
	FormatJSON
)

var formatNames = map[Format]string{
	FormatAuto:     "auto",
	FormatTerminal: "term",
	FormatText:     "text",
	FormatJSON:     "json",
}

// String returns the string representation of the format
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// FormatNames lists the accepted format names, in flag help order.
func FormatNames() []string {
	return []string{"auto", "term", "text", "json"}
}

// ParseFormat parses a format name. Matching is case-insensitive and accepts
// "terminal" and "plain" as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format: %s (want one of %s)",
			s, strings.Join(FormatNames(), ", "))
	}
}

// DetectFormat determines the output format for a file from the
// environment and its terminal capabilities
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}

	// Piped or redirected
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}

	if termenv.NewOutput(output).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// Resolve turns FormatAuto into a concrete format for output. Writers that
// are not files resolve to text.
func Resolve(format Format, output interface{}) Format {
	if format != FormatAuto {
		return format
	}
	if file, ok := output.(*os.File); ok {
		return DetectFormat(file)
	}
	return FormatText
}
