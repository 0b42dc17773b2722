package cli

import (
	"fmt"

	"github.com/arthur-debert/lumina-project/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if a.format == "json" {
				renderer, err := a.renderer(nil, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				return renderer.RenderResult(info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return err
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  MsgManShort,
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "LUMINA-PROJECT",
				Section: "1",
				Source:  "lumina-project " + version.Version,
				Manual:  "lumina-project manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
