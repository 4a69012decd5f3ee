package commands

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/fluent-query-go/cmd/fluentquery/internal/ui"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/compiler"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/spf13/cobra"
)

func newCompileCommand(a *app) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "compile <table> <column=value>...",
		Short: "Print the SQL an insert compiles to",
		Long: `Print the direct and prepared SQL of an insert for the configured
driver. No connection is made.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := parseColumns(args[1:])
			if err != nil {
				return err
			}
			q := domain.NewQuery(domain.NewInsert(domain.Table(args[0]), cols))

			backend, err := database.Lookup(a.cfg.Driver)
			if err != nil {
				return err
			}
			comp := compiler.NewCompiler(backend)

			direct, err := comp.Text(q)
			if err != nil {
				return err
			}
			compiled, err := comp.Compile(q, domain.Prepare)
			if err != nil {
				return err
			}
			prepared := compiled.Render(backend.PlaceholderToken)

			if pretty {
				return ui.PrintMarkdown(out(cmd), report(backend.DriverName(), direct, prepared, compiled))
			}

			ui.PrintSection(out(cmd), backend.DriverName())
			fmt.Fprintf(out(cmd), "direct:  %s\nprepare: %s\n", direct, prepared)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "render a formatted report")
	return cmd
}

func report(driver, direct, prepared string, compiled *domain.CompiledQuery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", driver)
	b.WriteString("## Direct\n\n")
	b.WriteString(ui.CodeBlock(direct))
	b.WriteString("\n## Prepared\n\n")
	b.WriteString(ui.CodeBlock(prepared))
	b.WriteString("\n| # | directive | value |\n|---|---|---|\n")

	values := compiled.Values()
	for _, tok := range compiled.Tokens() {
		if tok.Kind != domain.Placeholder {
			continue
		}
		fmt.Fprintf(&b, "| %d | `%s` | %s |\n", tok.Ordinal, tok.Directive, formatCell(values[tok.Ordinal-1]))
	}
	return b.String()
}
