// Package cli wires the lumina-project command line.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/lumina-project/internal/version"
	"github.com/arthur-debert/lumina-project/pkg/config"
	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/logging"
	"github.com/arthur-debert/lumina-project/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app holds the global flags shared by every command.
type app struct {
	verbosity  int
	configFile string
	engineDir  string
	format     string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "lumina-project",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(a.verbosity)
			logging.LogCommand(cmd.CommandPath(), args)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	flags.StringVar(&a.configFile, "config", "", "User config file (default $XDG_CONFIG_HOME/lumina-project/config.toml)")
	flags.StringVar(&a.engineDir, "engine-dir", "", "Engine checkout (overrides LUMINA_DIR)")
	flags.StringVarP(&a.format, "format", "f", "", "Output format: auto, term, text or json")

	rootCmd.AddCommand(newNewCmd(a))
	rootCmd.AddCommand(newTemplatesCmd(a))
	rootCmd.AddCommand(newTokensCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// Execute runs the command line and returns the process exit code: 0 on
// success, warnings included, and 1 on any fatal error.
func Execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Debug().Err(err).Str("code", string(errors.GetErrorCode(err))).Msg("Command failed")
		reportError(rootCmd, err)
		return 1
	}
	return 0
}

// reportError renders err on stderr in the requested format. Flag errors
// happen before any config is loaded, so only the flag is consulted.
func reportError(rootCmd *cobra.Command, err error) {
	format, perr := ui.ParseFormat(flagString(rootCmd, "format"))
	if perr != nil {
		format = ui.FormatAuto
	}
	renderer, rerr := ui.NewRenderer(format, rootCmd.ErrOrStderr())
	if rerr != nil {
		return
	}
	_ = renderer.RenderError(err)
}

func flagString(cmd *cobra.Command, name string) string {
	f := cmd.PersistentFlags().Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// loadConfig builds the effective configuration with the global flags and
// the command's own overrides on top.
func (a *app) loadConfig(overrides map[string]interface{}) (*config.Config, error) {
	if overrides == nil {
		overrides = make(map[string]interface{})
	}
	if a.engineDir != "" {
		overrides["engine_dir"] = a.engineDir
	}
	if a.format != "" {
		format, err := ui.ParseFormat(a.format)
		if err != nil {
			return nil, err
		}
		overrides["output.format"] = format.String()
	}
	return config.Load(config.LoadOptions{
		UserFile:  a.configFile,
		Overrides: overrides,
	})
}

// renderer returns a renderer for cfg's output format writing to w.
func (a *app) renderer(cfg *config.Config, w io.Writer) (ui.Renderer, error) {
	name := a.format
	if name == "" && cfg != nil {
		name = cfg.Output.Format
	}
	format, err := ui.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, w)
}

// resolvedFormat is the concrete format output to w ends up in.
func (a *app) resolvedFormat(cfg *config.Config, w io.Writer) ui.Format {
	name := a.format
	if name == "" && cfg != nil {
		name = cfg.Output.Format
	}
	format, err := ui.ParseFormat(name)
	if err != nil {
		return ui.FormatText
	}
	return ui.Resolve(format, w)
}
