// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/ui/display"
	"github.com/arthur-debert/lumina-project/pkg/ui/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

// DefaultWordWrap is the width READMEs are wrapped at.
const DefaultWordWrap = 80

const barWidth = 20

// Renderer provides rich terminal output with a lipgloss style sheet, pterm
// status prefixes and glamour markdown rendering.
type Renderer struct {
	output   io.Writer
	lip      *lipgloss.Renderer
	sheet    *styles.Sheet
	wordWrap int
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	lip := lipgloss.NewRenderer(w)
	logger := logging.GetLogger("ui.terminal")
	logger.Debug().
		Str("colorProfile", fmt.Sprintf("%v", lip.ColorProfile())).
		Bool("darkBackground", lip.HasDarkBackground()).
		Msg("Terminal renderer created")
	return NewWithRenderer(w, lip), nil
}

// NewWithRenderer creates a terminal renderer styled for lip.
func NewWithRenderer(w io.Writer, lip *lipgloss.Renderer) *Renderer {
	return &Renderer{
		output:   w,
		lip:      lip,
		sheet:    styles.Default(lip),
		wordWrap: DefaultWordWrap,
	}
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.Project:
		return r.write(r.project(v))
	case *display.TemplateList:
		return r.write(r.templates(v))
	case *display.TemplateDetail:
		return r.write(r.template(v))
	case *display.TokenList:
		return r.write(r.tokens(v))
	case *display.Progress:
		return r.write(r.progress(v))
	default:
		return r.write(fmt.Sprintf("%+v\n", result))
	}
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	var b strings.Builder
	code := errors.GetErrorCode(err)
	if code != errors.ErrUnknown {
		fmt.Fprintf(&b, "%s %s %s\n",
			pterm.Error.Prefix.Style.Sprint(" "+pterm.Error.Prefix.Text+" "),
			pterm.Error.MessageStyle.Sprint(string(code)),
			err.Error())
	} else {
		fmt.Fprintf(&b, "%s %s\n",
			pterm.Error.Prefix.Style.Sprint(" "+pterm.Error.Prefix.Text+" "),
			pterm.Error.MessageStyle.Sprint(err.Error()))
	}
	if p := errors.Path(err); p != "" {
		fmt.Fprintf(&b, "  %s %s\n", r.sheet.Render("Muted", "path"), r.sheet.Render("Path", p))
	}
	return r.write(b.String())
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.write(pterm.Info.Sprintln(msg))
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.output, s)
	return err
}

func (r *Renderer) project(p *display.Project) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	status := pterm.Success
	if len(p.Warnings) > 0 {
		status = pterm.Warning
	}
	b.WriteString(status.Sprintln(fmt.Sprintf("Created %s from template %s",
		r.sheet.Render("Title", p.Name), r.sheet.Render("Title", p.Template))))

	r.field(&b, "Destination", r.sheet.Render("Path", p.Destination))
	r.field(&b, "Directories", r.sheet.Render("Count", fmt.Sprint(p.Directories)))
	r.field(&b, "Text files", r.sheet.Render("Count", fmt.Sprint(p.TextFiles)))
	r.field(&b, "Binary files", r.sheet.Render("Count", fmt.Sprint(p.BinaryFiles)))
	if p.Excluded > 0 {
		r.field(&b, "Excluded", r.sheet.Render("Muted", fmt.Sprint(p.Excluded)))
	}
	if p.Fallbacks > 0 {
		r.field(&b, "Verbatim", r.sheet.Render("Warning", fmt.Sprint(p.Fallbacks)))
	}

	if len(p.Hooks) > 0 {
		b.WriteString("\n" + r.sheet.Render("Heading", "Hooks") + "\n")
		for _, h := range p.Hooks {
			style := "Success"
			if h.Warning {
				style = "Warning"
			} else if h.Status == "skipped" {
				style = "Muted"
			}
			fmt.Fprintf(&b, "  %s %s %s", r.sheet.Get("Template").Render(h.Name),
				r.sheet.Render(style, h.Status), r.sheet.Render("Muted", h.Duration))
			if h.Message != "" {
				b.WriteString(" " + h.Message)
			}
			b.WriteString("\n")
		}
	}

	if len(p.Warnings) > 0 {
		b.WriteString("\n" + r.sheet.Render("Heading", "Warnings") + "\n")
		for _, w := range p.Warnings {
			line := r.sheet.Render("Path", w.Source)
			if w.Code != "" {
				line += " " + r.sheet.Render("Muted", "["+w.Code+"]")
			}
			if w.Message != "" {
				line += " " + w.Message
			}
			b.WriteString(pterm.Warning.Sprintln(line))
		}
	}

	if p.Tree != "" {
		b.WriteString("\n" + r.sheet.Render("Tree", strings.TrimRight(p.Tree, "\n")) + "\n")
	}
	return b.String()
}

func (r *Renderer) field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s%s\n", r.sheet.Render("Label", label), value)
}

func (r *Renderer) templates(l *display.TemplateList) string {
	if len(l.Templates) == 0 {
		return pterm.Warning.Sprintln("No templates found in " + r.sheet.Render("Path", l.Root))
	}
	var b strings.Builder
	b.WriteString(r.sheet.Render("Heading", "Templates") + " " + r.sheet.Render("Muted", l.Root) + "\n")
	for _, t := range l.Templates {
		fmt.Fprintf(&b, "  %s%s\n", r.sheet.Render("Template", t.Name), r.sheet.Render("Description", t.Description))
	}
	return b.String()
}

func (r *Renderer) template(d *display.TemplateDetail) string {
	var b strings.Builder
	t := d.Template
	title := t.Name
	if t.Title != "" && t.Title != t.Name {
		title = t.Title + " " + r.sheet.Render("Muted", "("+t.Name+")")
	}
	b.WriteString(r.sheet.Render("Title", title) + "\n")
	b.WriteString("  " + r.sheet.Render("Description", t.Description) + "\n")
	r.field(&b, "Path", r.sheet.Render("Path", t.Path))
	if len(t.Exclude) > 0 {
		r.field(&b, "Exclude", strings.Join(t.Exclude, ", "))
	}
	if d.Readme != "" {
		b.WriteString(r.markdown(d.Readme))
	}
	return b.String()
}

// markdown renders md with glamour, falling back to the raw text.
func (r *Renderer) markdown(md string) string {
	style := "light"
	if r.lip.HasDarkBackground() {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithColorProfile(r.lip.ColorProfile()),
		glamour.WithWordWrap(r.wordWrap),
	)
	if err != nil {
		return "\n" + md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return "\n" + md
	}
	return rendered
}

func (r *Renderer) tokens(l *display.TokenList) string {
	var b strings.Builder
	b.WriteString(r.sheet.Render("Heading", "Tokens for "+l.ProjectName) + "\n")
	width := 0
	for _, tok := range l.Tokens {
		if n := len(tok.Name) + 3; n > width {
			width = n
		}
	}
	for _, tok := range l.Tokens {
		name := "${" + tok.Name + "}"
		fmt.Fprintf(&b, "  %s%s %s\n", r.sheet.Render("Token", name),
			strings.Repeat(" ", width-len(name)), tok.Value)
	}
	return b.String()
}

func (r *Renderer) progress(p *display.Progress) string {
	e := p.Event
	source := e.Source
	if source == "" {
		source = e.Target
	}
	label := r.sheet.Render("Muted", display.Describe(e))
	if e.IsWarning() {
		label = r.sheet.Render("Warning", display.Describe(e))
	}

	pct := p.Percent()
	if pct < 0 {
		return fmt.Sprintf("%s %s\n", label, r.sheet.Render("Path", source))
	}
	filled := pct * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%s %3d%% %s %s\n",
		pterm.Info.MessageStyle.Sprint(bar), pct, label, r.sheet.Render("Path", source))
}
