package cli

import (
	"fmt"

	"github.com/arthur-debert/lumina-project/pkg/config"
	"github.com/arthur-debert/lumina-project/pkg/filesystem"
	"github.com/arthur-debert/lumina-project/pkg/paths"
	"github.com/arthur-debert/lumina-project/pkg/templates"
	"github.com/arthur-debert/lumina-project/pkg/ui"
	"github.com/arthur-debert/lumina-project/pkg/ui/display"
	"github.com/spf13/cobra"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template"},
		Short:   MsgTemplatesShort,
		Long:    MsgTemplatesLong,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesList(cmd, a)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgTemplatesShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesList(cmd, a)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: MsgShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesShow(cmd, a, args[0])
		},
	})
	return cmd
}

func (a *app) registry() (*config.Config, *templates.Registry, error) {
	cfg, err := a.loadConfig(nil)
	if err != nil {
		return nil, nil, err
	}
	p, err := cfg.Paths()
	if err != nil {
		return nil, nil, err
	}
	if err := paths.CheckEngineDir(p); err != nil {
		return nil, nil, err
	}
	reg := templates.NewRegistry(filesystem.NewOS(), p.TemplatesRoot(), templates.Options{
		MetadataFile: cfg.Templates.MetadataFile,
		Ignore:       cfg.Templates.Ignore,
	})
	return cfg, reg, nil
}

func runTemplatesList(cmd *cobra.Command, a *app) error {
	cfg, reg, err := a.registry()
	if err != nil {
		return err
	}
	list, err := reg.Templates()
	if err != nil {
		return err
	}
	renderer, err := a.renderer(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return renderer.RenderResult(&display.TemplateList{Root: reg.Root(), Templates: list})
}

func runTemplatesShow(cmd *cobra.Command, a *app, name string) error {
	cfg, reg, err := a.registry()
	if err != nil {
		return err
	}
	tmpl, err := reg.Describe(name)
	if err != nil {
		return err
	}
	readme, err := reg.Readme(name)
	if err != nil {
		return err
	}
	renderer, err := a.renderer(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := renderer.RenderResult(&display.TemplateDetail{Template: tmpl, Readme: readme}); err != nil {
		return err
	}
	if readme == "" && a.resolvedFormat(cfg, cmd.OutOrStdout()) != ui.FormatJSON {
		return renderer.RenderMessage(fmt.Sprintf(MsgNoReadme, tmpl.Name))
	}
	return nil
}
