package commands

import (
	"errors"

	"github.com/satishbabariya/fluent-query-go/cmd/fluentquery/internal/ui"
	"github.com/satishbabariya/fluent-query-go/runtime/client"
	"github.com/spf13/cobra"
)

func newPingCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Connect and print the server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.driver()
			if err != nil {
				return err
			}
			defer d.Close()

			v, err := d.CheckServerVersion(cmd.Context())
			if errors.Is(err, client.ErrServerTooOld) {
				ui.PrintWarning(out(cmd), "%v", err)
				return nil
			}
			if err != nil {
				return err
			}

			ui.PrintSuccess(out(cmd), "%s %s", d.Backend().DriverName(), v.Original())
			return nil
		},
	}
}
