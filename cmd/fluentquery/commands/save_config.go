package commands

import (
	"github.com/satishbabariya/fluent-query-go/cmd/fluentquery/internal/ui"
	"github.com/satishbabariya/fluent-query-go/internal/config"
	"github.com/spf13/cobra"
)

func newSaveConfigCommand(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "save-config",
		Short: "Save the current settings as the default configuration",
		Long: `Save driver and connection settings from flags, environment and the
current config file. The password is not saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" {
				if err := config.SaveConfigAs(a.cfg, path); err != nil {
					return err
				}
				ui.PrintSuccess(out(cmd), "configuration saved to %s", path)
				return nil
			}

			saved, err := config.SaveConfig(a.cfg)
			if err != nil {
				return err
			}
			ui.PrintSuccess(out(cmd), "configuration saved to %s", saved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "output", "o", "", "write to this file instead of ~/.config/fluentquery")
	return cmd
}
