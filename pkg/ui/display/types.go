// Package display holds the view models renderers work from. Each renderer
// receives these types and decides how much of them to show.
package display

import (
	"github.com/arthur-debert/lumina-project/pkg/types"
)

// Project is the outcome of a generation, ready for rendering.
type Project struct {
	Name        string `json:"name"`
	Template    string `json:"template"`
	Destination string `json:"destination"`

	Directories int `json:"directories"`
	TextFiles   int `json:"textFiles"`
	BinaryFiles int `json:"binaryFiles"`
	Fallbacks   int `json:"fallbacks"`
	Excluded    int `json:"excluded"`

	Hooks    []Hook    `json:"hooks,omitempty"`
	Warnings []Warning `json:"warnings,omitempty"`

	// Tree is the rendered layout of the created project, when requested.
	Tree string `json:"tree,omitempty"`

	Events []types.Event `json:"events,omitempty"`
}

// Hook is one post-generation step of a Project.
type Hook struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Warning  bool   `json:"warning"`
	Duration string `json:"duration"`
}

// Warning is a recoverable problem of a run.
type Warning struct {
	Source  string `json:"source"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// TemplateList is the result of listing installed templates.
type TemplateList struct {
	Root      string           `json:"root"`
	Templates []types.Template `json:"templates"`
}

// TemplateDetail describes one template, with its README if it has one.
type TemplateDetail struct {
	Template types.Template `json:"template"`
	Readme   string         `json:"readme,omitempty"`
}

// TokenList shows the bindings a project name produces.
type TokenList struct {
	ProjectName string        `json:"projectName"`
	Tokens      []types.Token `json:"tokens"`
}

// Progress reports one event of a running generation.
type Progress struct {
	Event types.Event `json:"event"`
	Total int         `json:"total,omitempty"`
}

// Percent returns how far the run is, from 0 to 100. Without a known total
// it returns -1.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return -1
	}
	pct := p.Event.Seq * 100 / p.Total
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Describe returns a short human label for an event.
func Describe(e types.Event) string {
	switch e.Kind {
	case types.EventDirectory:
		return "directory"
	case types.EventText:
		return "text"
	case types.EventBinary:
		return "binary"
	case types.EventSkipped:
		return "skipped"
	case types.EventHook:
		return "hook"
	case types.EventWarning:
		return "warning"
	default:
		return string(e.Kind)
	}
}
