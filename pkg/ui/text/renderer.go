// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.Project:
		return r.project(v)
	case *display.TemplateList:
		return r.templates(v)
	case *display.TemplateDetail:
		return r.template(v)
	case *display.TokenList:
		return r.tokens(v)
	case *display.Progress:
		return r.progress(v)
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v\n", err)
	if p := errors.Path(err); p != "" {
		fmt.Fprintf(&b, "  path: %s\n", p)
	}
	_, werr := io.WriteString(r.output, b.String())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

func (r *Renderer) project(p *display.Project) error {
	if p == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Created %s from template %s\n", p.Name, p.Template)
	fmt.Fprintf(&b, "  destination: %s\n", p.Destination)
	fmt.Fprintf(&b, "  directories: %d, text files: %d, binary files: %d, excluded: %d\n",
		p.Directories, p.TextFiles, p.BinaryFiles, p.Excluded)
	if p.Fallbacks > 0 {
		fmt.Fprintf(&b, "  copied verbatim: %d\n", p.Fallbacks)
	}

	if len(p.Hooks) > 0 {
		b.WriteString("Hooks:\n")
		for _, h := range p.Hooks {
			fmt.Fprintf(&b, "  %s: %s (%s)", h.Name, h.Status, h.Duration)
			if h.Message != "" {
				fmt.Fprintf(&b, " %s", h.Message)
			}
			b.WriteString("\n")
		}
	}

	if len(p.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range p.Warnings {
			b.WriteString("  " + w.Source)
			if w.Code != "" {
				fmt.Fprintf(&b, " [%s]", w.Code)
			}
			if w.Message != "" {
				b.WriteString(": " + w.Message)
			}
			b.WriteString("\n")
		}
	}

	if p.Tree != "" {
		b.WriteString("\n" + p.Tree)
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) templates(l *display.TemplateList) error {
	if len(l.Templates) == 0 {
		_, err := fmt.Fprintf(r.output, "No templates found in %s\n", l.Root)
		return err
	}
	var b strings.Builder
	for _, t := range l.Templates {
		fmt.Fprintf(&b, "%s\t%s\n", t.Name, t.Description)
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) template(d *display.TemplateDetail) error {
	var b strings.Builder
	t := d.Template
	fmt.Fprintf(&b, "%s\n", t.Name)
	if t.Title != "" && t.Title != t.Name {
		fmt.Fprintf(&b, "  title: %s\n", t.Title)
	}
	fmt.Fprintf(&b, "  description: %s\n", t.Description)
	fmt.Fprintf(&b, "  path: %s\n", t.Path)
	if len(t.Exclude) > 0 {
		fmt.Fprintf(&b, "  exclude: %s\n", strings.Join(t.Exclude, ", "))
	}
	if d.Readme != "" {
		b.WriteString("\n" + d.Readme)
		if !strings.HasSuffix(d.Readme, "\n") {
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) tokens(l *display.TokenList) error {
	var b strings.Builder
	for _, tok := range l.Tokens {
		fmt.Fprintf(&b, "${%s}\t%s\n", tok.Name, tok.Value)
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) progress(p *display.Progress) error {
	e := p.Event
	target := e.Source
	if target == "" {
		target = e.Target
	}
	var err error
	if pct := p.Percent(); pct >= 0 {
		_, err = fmt.Fprintf(r.output, "[%3d%%] %s %s %s\n", pct, display.Describe(e), e.Outcome, target)
	} else {
		_, err = fmt.Fprintf(r.output, "%s %s %s\n", display.Describe(e), e.Outcome, target)
	}
	return err
}
