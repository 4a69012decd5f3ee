package commands

import (
	"fmt"

	"github.com/satishbabariya/fluent-query-go/cmd/fluentquery/internal/ui"
	"github.com/satishbabariya/fluent-query-go/internal/core/dispatch"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/spf13/cobra"
)

func newInsertCommand(a *app) *cobra.Command {
	var prepare bool

	cmd := &cobra.Command{
		Use:   "insert <table> <column=value>...",
		Short: "Insert a row",
		Long: `Insert a row built from column=value pairs. Values that parse as
integers, floats or booleans are bound with that type, "null" is NULL and
anything else is a string.

With --prepare the row is inserted through a prepared statement and the
prepared SQL is printed.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := parseColumns(args[1:])
			if err != nil {
				return err
			}
			q := domain.NewQuery(domain.NewInsert(domain.Table(args[0]), cols))

			d, err := a.driver()
			if err != nil {
				return err
			}
			defer d.Close()

			op := dispatch.Execute
			if prepare {
				op = dispatch.Prepare
			}

			outcome, err := d.ExecuteConditionally(cmd.Context(), q, op)
			if err != nil {
				return err
			}

			switch outcome.Action {
			case dispatch.Executed:
				ui.PrintSuccess(out(cmd), "inserted %d row(s) into %s", outcome.RowsAffected, args[0])
				return nil

			case dispatch.Prepared:
				stmt := outcome.Statement
				defer stmt.Close()

				text, err := stmt.PreparedText()
				if err != nil {
					return err
				}
				ui.PrintInfo(out(cmd), "%s", text)

				compiled, err := stmt.Compiled()
				if err != nil {
					return err
				}
				cursor, err := stmt.Execute(cmd.Context(), compiled.Values()...)
				if err != nil {
					return err
				}
				if err := cursor.Free(); err != nil {
					return err
				}
				ui.PrintSuccess(out(cmd), "inserted 1 row into %s", args[0])
				return nil
			}

			return fmt.Errorf("insert into %s was not dispatched", args[0])
		},
	}

	cmd.Flags().BoolVar(&prepare, "prepare", false, "insert through a prepared statement")
	return cmd
}
