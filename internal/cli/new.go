package cli

import (
	"io"

	"github.com/arthur-debert/lumina-project/pkg/config"
	"github.com/arthur-debert/lumina-project/pkg/hooks"
	"github.com/arthur-debert/lumina-project/pkg/paths"
	"github.com/arthur-debert/lumina-project/pkg/scaffold"
	"github.com/arthur-debert/lumina-project/pkg/tokens"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/arthur-debert/lumina-project/pkg/ui"
	"github.com/arthur-debert/lumina-project/pkg/ui/display"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type newOptions struct {
	template       string
	path           string
	atomic         bool
	overwriteTools bool
	noHooks        bool
	tree           bool
	noProgress     bool
	sets           []string
}

func newNewCmd(a *app) *cobra.Command {
	opts := &newOptions{}
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: MsgNewShort,
		Long:  MsgNewLong,
		Args:  cobra.ExactArgs(1),
		Example: `  # Create ./MyGame from the Blank template
  lumina-project new MyGame

  # Pick a template and a parent directory, bind an extra token
  lumina-project new MyGame --template Sandbox --path ~/Projects --set COMPANY=Acme

  # Build in a staging directory and show the created tree
  lumina-project new MyGame --atomic --tree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, a, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.template, "template", "t", scaffold.DefaultTemplate, "Template to instantiate")
	f.StringVarP(&opts.path, "path", "p", "", "Parent directory of the new project (default current directory)")
	f.BoolVar(&opts.atomic, "atomic", false, "Build in a staging directory and move it into place when complete")
	f.BoolVar(&opts.overwriteTools, "overwrite-tools", false, "Replace an existing Tools directory in the project")
	f.BoolVar(&opts.noHooks, "no-hooks", false, "Skip post-generation hooks")
	f.BoolVar(&opts.tree, "tree", false, "Show the created project tree")
	f.BoolVar(&opts.noProgress, "no-progress", false, "Do not report progress while generating")
	f.StringArrayVar(&opts.sets, "set", nil, "Bind an extra token, NAME=VALUE (repeatable)")

	return cmd
}

// overrides maps the flags the user set onto configuration keys.
func (o *newOptions) overrides(cmd *cobra.Command) map[string]interface{} {
	out := make(map[string]interface{})
	if cmd.Flags().Changed("atomic") {
		out["instantiate.atomic"] = o.atomic
	}
	if cmd.Flags().Changed("overwrite-tools") {
		out["hooks.tools.overwrite"] = o.overwriteTools
	}
	if o.noHooks {
		out["hooks.enabled"] = false
	}
	if cmd.Flags().Changed("tree") {
		out["output.tree"] = o.tree
	}
	return out
}

func runNew(cmd *cobra.Command, a *app, opts *newOptions, name string) error {
	cfg, err := a.loadConfig(opts.overrides(cmd))
	if err != nil {
		return err
	}
	p, err := cfg.Paths()
	if err != nil {
		return err
	}
	if err := paths.CheckEngineDir(p); err != nil {
		return err
	}

	assignments, err := mergeTokens(cfg.ExtraTokens(), opts.sets)
	if err != nil {
		return err
	}
	req, err := scaffold.NewRequest(name, opts.template, paths.ExpandHome(opts.path), assignments)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer, err := a.renderer(cfg, out)
	if err != nil {
		return err
	}

	genOpts := scaffold.Options{
		Request:        req,
		TemplatesRoot:  p.TemplatesRoot(),
		EngineDir:      p.EngineDir(),
		MetadataFile:   cfg.Templates.MetadataFile,
		Ignore:         cfg.Templates.Ignore,
		TextExtensions: cfg.Classify.TextExtensions,
		Stage:          cfg.Instantiate.Atomic,
		Hooks:          buildHooks(cfg, p, a.hookOutput(cmd)),
	}
	if !opts.noProgress && a.resolvedFormat(cfg, out) == ui.FormatTerminal {
		attachProgress(&genOpts, cmd.ErrOrStderr())
	}

	log.Info().
		Str("project", req.ProjectName).
		Str("template", req.Template).
		Str("destination", req.Destination).
		Msg("Creating project")

	result, err := scaffold.Generate(cmd.Context(), genOpts)
	if result != nil {
		if rerr := renderer.RenderResult(display.FromResult(result, cfg.Output.Tree)); rerr != nil && err == nil {
			return rerr
		}
	}
	return err
}

// buildHooks composes the configured hooks: the tools copy first, then the
// generate script.
func buildHooks(cfg *config.Config, p paths.Paths, scriptOutput io.Writer) []hooks.Hook {
	if !cfg.Hooks.Enabled {
		return nil
	}
	var out []hooks.Hook
	if t := cfg.Hooks.Tools; t.Enabled {
		tools := hooks.NewToolsHook(t.Overwrite)
		tools.Source = p.ToolsDir()
		tools.Timeout = t.Timeout
		out = append(out, tools)
	}
	if g := cfg.Hooks.Generate; g.Enabled {
		script := hooks.NewScriptHook()
		script.Entrypoint = g.Entrypoint
		script.Interpreter = g.Interpreter
		if g.Timeout > 0 {
			script.Timeout = g.Timeout
		}
		script.Output = scriptOutput
		out = append(out, script)
	}
	return out
}

// hookOutput streams hook script output to stderr at -v and above.
func (a *app) hookOutput(cmd *cobra.Command) io.Writer {
	if a.verbosity > 0 {
		return cmd.ErrOrStderr()
	}
	return nil
}

// attachProgress reports every event of the run on w.
func attachProgress(opts *scaffold.Options, w io.Writer) {
	progress, err := ui.NewRenderer(ui.FormatTerminal, w)
	if err != nil {
		return
	}
	total := 0
	opts.OnPlan = func(n int) { total = n }
	opts.OnEvent = func(e types.Event) {
		_ = progress.RenderResult(&display.Progress{Event: e, Total: total})
	}
}

// mergeTokens combines the configured tokens with --set assignments. A flag
// replaces a configured token of the same name.
func mergeTokens(configured []types.Token, sets []string) ([]string, error) {
	values := make(map[string]string, len(configured)+len(sets))
	var order []string
	bind := func(tok types.Token) {
		if _, seen := values[tok.Name]; !seen {
			order = append(order, tok.Name)
		}
		values[tok.Name] = tok.Value
	}

	for _, tok := range configured {
		bind(tok)
	}
	for _, s := range sets {
		tok, err := tokens.ParseAssignment(s)
		if err != nil {
			return nil, err
		}
		bind(tok)
	}

	out := make([]string, 0, len(order))
	for _, name := range order {
		out = append(out, name+"="+values[name])
	}
	return out, nil
}
