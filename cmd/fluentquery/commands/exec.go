package commands

import (
	"github.com/satishbabariya/fluent-query-go/cmd/fluentquery/internal/ui"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/spf13/cobra"
)

func newExecCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a SQL statement and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}

			d, err := a.driver()
			if err != nil {
				return err
			}
			defer d.Close()

			cursor, err := d.Execute(cmd.Context(), domain.NewQuery(domain.NewRaw(args[0])))
			if err != nil {
				return err
			}
			defer cursor.Free()

			columns, err := cursor.Columns()
			if err != nil {
				return err
			}
			if len(columns) == 0 {
				ui.PrintSuccess(out(cmd), "statement executed")
				return nil
			}

			rows, err := cursor.All()
			if err != nil {
				return err
			}
			return writeRows(out(cmd), f, columns, rows)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json, yaml)")
	return cmd
}
