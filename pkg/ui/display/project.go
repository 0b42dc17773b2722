package display

import (
	"time"

	"github.com/arthur-debert/lumina-project/pkg/scaffold"
	"github.com/arthur-debert/lumina-project/pkg/types"
)

// FromResult builds the view of a generation. withTree renders the created
// layout; an error rendering it leaves Tree empty.
func FromResult(result *scaffold.Result, withTree bool) *Project {
	if result == nil {
		return nil
	}
	p := &Project{
		Name:        result.Request.ProjectName,
		Template:    result.Template.Name,
		Destination: result.Destination,
		Events:      result.Events,
	}
	if inst := result.Instantiation; inst != nil {
		p.Directories = inst.Directories
		p.TextFiles = inst.TextFiles
		p.BinaryFiles = inst.BinaryFiles
		p.Fallbacks = inst.Fallbacks
		p.Excluded = inst.Excluded
	}

	for _, report := range result.Hooks {
		p.Hooks = append(p.Hooks, Hook{
			Name:     report.Hook,
			Status:   string(report.Status),
			Message:  report.Message,
			Stderr:   report.Stderr,
			Warning:  report.IsWarning(),
			Duration: report.Duration.Round(time.Millisecond).String(),
		})
	}
	for _, e := range result.Warnings() {
		p.Warnings = append(p.Warnings, warningOf(e))
	}

	if withTree {
		if tree, err := Tree(p.Name, p.Destination, result.Events); err == nil {
			p.Tree = tree
		}
	}
	return p
}

func warningOf(e types.Event) Warning {
	source := e.Source
	if source == "" {
		source = e.Target
	}
	return Warning{Source: source, Code: e.Code, Message: e.Message}
}
