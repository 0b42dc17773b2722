package cli

import (
	"github.com/arthur-debert/lumina-project/pkg/scaffold"
	"github.com/arthur-debert/lumina-project/pkg/ui/display"
	"github.com/spf13/cobra"
)

func newTokensCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "tokens <name>",
		Short: MsgTokensShort,
		Long: `Tokens prints the bindings a project name produces, in substitution order:
the PROJECT_NAME family, then tokens from the configuration and --set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(nil)
			if err != nil {
				return err
			}
			assignments, err := mergeTokens(cfg.ExtraTokens(), sets)
			if err != nil {
				return err
			}
			req, err := scaffold.NewRequest(args[0], "", "", assignments)
			if err != nil {
				return err
			}
			table, err := scaffold.Table(req)
			if err != nil {
				return err
			}
			renderer, err := a.renderer(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return renderer.RenderResult(&display.TokenList{ProjectName: req.ProjectName, Tokens: table.Bindings()})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Bind an extra token, NAME=VALUE (repeatable)")
	return cmd
}
