package scaffold

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/lumina-project/pkg/classify"
	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/filesystem"
	"github.com/arthur-debert/lumina-project/pkg/hooks"
	"github.com/arthur-debert/lumina-project/pkg/instantiate"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/templates"
	"github.com/arthur-debert/lumina-project/pkg/tokens"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/go-playground/validator/v10"
)

// Options configure a generation.
type Options struct {
	Request types.Request

	// TemplatesRoot holds one directory per template.
	TemplatesRoot string

	// EngineDir is handed to hooks.
	EngineDir string

	MetadataFile   string
	Ignore         []string
	TextExtensions []string

	// Stage builds the project in a staging directory first.
	Stage bool

	// Hooks run after instantiation, in order.
	Hooks []hooks.Hook

	// FS defaults to the OS filesystem.
	FS types.FS

	// OnEvent receives every event of the run, hooks included.
	OnEvent types.EventHandler

	// OnPlan, when set, is told how many events the run is expected to
	// record before the first one is emitted.
	OnPlan func(total int)
}

// Result describes a finished generation.
type Result struct {
	Request       types.Request       `json:"request"`
	Template      types.Template      `json:"template"`
	Destination   string              `json:"destination"`
	Instantiation *instantiate.Result `json:"instantiation"`
	Hooks         []types.HookReport  `json:"hooks"`
	Events        []types.Event       `json:"events"`
	Tokens        []types.Token       `json:"tokens"`
}

// Warnings returns the recoverable problems of the run.
func (r *Result) Warnings() []types.Event {
	var out []types.Event
	for _, e := range r.Events {
		if e.IsWarning() {
			out = append(out, e)
		}
	}
	return out
}

var validate = validator.New()

// ValidateRequest checks a request's fields.
func ValidateRequest(req types.Request) error {
	if err := validate.Struct(req); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid generation request")
	}
	return nil
}

// Table builds the token table of a request: the standard project tokens
// followed by the request's extra tokens.
func Table(req types.Request) (*tokens.Table, error) {
	table := tokens.ProjectTable(req.ProjectName)
	for _, tok := range req.Tokens {
		if err := table.Add(tok.Name, tok.Value); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Generate runs the whole pipeline for opts.Request.
//
// On a fatal error after the destination was claimed the returned Result is
// still non-nil and describes what was written.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("scaffold")
	req := opts.Request

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	table, err := Table(req)
	if err != nil {
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	destination, err := filepath.Abs(req.Destination)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid destination").
			WithDetail("path", req.Destination)
	}

	registry := templates.NewRegistry(fsys, opts.TemplatesRoot, templates.Options{
		MetadataFile: opts.MetadataFile,
		Ignore:       opts.Ignore,
	})
	tmpl, err := registry.Describe(req.Template)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Request:     req,
		Template:    tmpl,
		Destination: destination,
		Tokens:      table.Bindings(),
	}
	emit := func(e types.Event) {
		e.Seq = len(result.Events) + 1
		result.Events = append(result.Events, e)
		if opts.OnEvent != nil {
			opts.OnEvent(e)
		}
	}

	logger.Info().
		Str("template", tmpl.Name).
		Str("project", req.ProjectName).
		Str("destination", destination).
		Msg("Generating project")

	classifier := classify.Default()
	if opts.TextExtensions != nil {
		classifier = classify.New(opts.TextExtensions)
	}
	instantiator := instantiate.New(fsys, classifier)
	instOpts := instantiate.Options{
		MetadataFile: registry.MetadataFile(),
		Exclude:      tmpl.Exclude,
		Stage:        opts.Stage,
		OnEvent:      emit,
	}
	if opts.OnPlan != nil {
		if total, err := instantiator.Count(tmpl.Path, instOpts); err == nil {
			opts.OnPlan(total + len(opts.Hooks))
		} else {
			logger.Debug().Err(err).Msg("Cannot count template entries")
		}
	}
	inst, err := instantiator.Instantiate(ctx, tmpl.Path, destination, table, instOpts)
	result.Instantiation = inst
	if err != nil {
		if inst == nil {
			return nil, err
		}
		return result, err
	}

	if len(opts.Hooks) > 0 {
		result.Hooks = hooks.NewRunner(emit).Run(ctx, hooks.Env{
			ProjectName: req.ProjectName,
			ProjectDir:  destination,
			EngineDir:   opts.EngineDir,
			FS:          fsys,
		}, opts.Hooks...)
	}

	logger.Info().
		Int("events", len(result.Events)).
		Int("warnings", len(result.Warnings())).
		Msg("Project generated")
	return result, nil
}
