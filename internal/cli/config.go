package cli

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/lumina-project/pkg/config"
	"github.com/arthur-debert/lumina-project/pkg/paths"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	var (
		write    bool
		target   string
		defaults bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.NoArgs,
		Example: `  # Print the effective configuration
  lumina-project config

  # Save it as the user config file
  lumina-project config --write`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if defaults {
				_, err := fmt.Fprint(out, config.DefaultsContent())
				return err
			}

			cfg, err := a.loadConfig(nil)
			if err != nil {
				return err
			}

			if !write {
				data, err := cfg.TOML()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			path := target
			if path == "" {
				path = a.configFile
			}
			if path == "" {
				path = filepath.Join(paths.ConfigDir(), paths.ConfigFileName)
			}
			path = paths.ExpandHome(path)
			if err := cfg.Write(path); err != nil {
				return err
			}
			renderer, err := a.renderer(cfg, out)
			if err != nil {
				return err
			}
			return renderer.RenderMessage(fmt.Sprintf(MsgConfigWritten, path))
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Write the effective configuration to the user config file")
	cmd.Flags().StringVarP(&target, "output", "o", "", "File to write with --write (default the user config file)")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print the built-in defaults instead")
	return cmd
}
