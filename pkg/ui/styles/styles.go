// Package styles holds the semantic styles of the terminal renderer.
//
// Styles are defined in an embedded YAML sheet of adaptive colors and named
// styles. A Sheet binds them to a lipgloss renderer so color detection
// follows the writer output goes to, not the process stdout.
package styles

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultSheet []byte

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	Width        int    `yaml:"width,omitempty"`
	Align        string `yaml:"align,omitempty"`
	MarginLeft   int    `yaml:"marginLeft,omitempty"`
	MarginTop    int    `yaml:"marginTop,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
	PaddingRight int    `yaml:"paddingRight,omitempty"`
}

// Config represents the complete styles configuration
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Parse reads a styles configuration. Styles may only reference colors the
// configuration declares.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}
	for name, def := range cfg.Styles {
		for _, ref := range []string{def.Foreground, def.Background} {
			if ref == "" {
				continue
			}
			if _, ok := cfg.Colors[ref]; !ok {
				return nil, fmt.Errorf("style %s references unknown color %q", name, ref)
			}
		}
	}
	return &cfg, nil
}

// LoadFile reads a styles configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read styles file %s: %w", path, err)
	}
	return Parse(data)
}

// DefaultConfig returns the embedded styles configuration.
func DefaultConfig() *Config {
	cfg, err := Parse(defaultSheet)
	if err != nil {
		panic(fmt.Sprintf("embedded styles are invalid: %v", err))
	}
	return cfg
}

// Sheet maps semantic names to lipgloss styles.
type Sheet struct {
	styles map[string]lipgloss.Style
}

// NewSheet builds the styles of cfg for renderer. A nil renderer means the
// lipgloss default renderer.
func NewSheet(renderer *lipgloss.Renderer, cfg *Config) *Sheet {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}
	sheet := &Sheet{styles: make(map[string]lipgloss.Style, len(cfg.Styles))}
	for name, def := range cfg.Styles {
		sheet.styles[name] = buildStyle(renderer.NewStyle(), def, colors)
	}
	return sheet
}

// Default builds the embedded sheet for renderer.
func Default(renderer *lipgloss.Renderer) *Sheet {
	return NewSheet(renderer, DefaultConfig())
}

// Get returns the named style, or a plain style for unknown names.
func (s *Sheet) Get(name string) lipgloss.Style {
	if style, ok := s.styles[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Render applies the named style to text.
func (s *Sheet) Render(name, text string) string {
	return s.Get(name).Render(text)
}

// Names lists the styles of the sheet in order.
func (s *Sheet) Names() []string {
	names := make([]string, 0, len(s.styles))
	for name := range s.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildStyle(style lipgloss.Style, def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}

	if color, ok := colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if color, ok := colors[def.Background]; ok {
		style = style.Background(color)
	}

	if def.Width > 0 {
		style = style.Width(def.Width)
	}
	switch def.Align {
	case "left":
		style = style.Align(lipgloss.Left)
	case "center":
		style = style.Align(lipgloss.Center)
	case "right":
		style = style.Align(lipgloss.Right)
	}

	if def.MarginLeft > 0 {
		style = style.MarginLeft(def.MarginLeft)
	}
	if def.MarginTop > 0 {
		style = style.MarginTop(def.MarginTop)
	}
	if def.MarginBottom > 0 {
		style = style.MarginBottom(def.MarginBottom)
	}
	if def.PaddingLeft > 0 || def.PaddingRight > 0 {
		style = style.Padding(0, def.PaddingRight, 0, def.PaddingLeft)
	}
	return style
}
