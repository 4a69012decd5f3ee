package compiler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
)

// render is the first pass: it turns the clause list into SQL text carrying
// one directive per dynamic value, and collects the values in order.
func (c *Compiler) render(q *domain.Query) (string, []any, error) {
	var parts []string
	var values []any
	var prev domain.ClauseType

	for i, clause := range q.Clauses() {
		text, vals, err := c.renderClause(clause, prev)
		if err != nil {
			return "", nil, fmt.Errorf("clause %d (%s): %w", i, clause.Type, err)
		}
		parts = append(parts, text)
		values = append(values, vals...)
		prev = clause.Type
	}

	return strings.Join(parts, " "), values, nil
}

func (c *Compiler) renderClause(clause domain.Clause, prev domain.ClauseType) (string, []any, error) {
	args := clause.Args

	switch clause.Type {
	case domain.Insert:
		if len(args) != 2 {
			return "", nil, fmt.Errorf("%w: insert takes table and columns", ErrInvalidClause)
		}
		table, err := c.table(args[0])
		if err != nil {
			return "", nil, err
		}
		cols, err := columnsArg(args[1])
		if err != nil {
			return "", nil, err
		}
		if len(cols) == 0 {
			return "", nil, fmt.Errorf("%w: insert without columns", ErrInvalidClause)
		}

		names := sortedKeys(cols)
		quoted := make([]string, len(names))
		directives := make([]string, len(names))
		values := make([]any, len(names))
		for i, name := range names {
			if quoted[i], err = c.quote(name); err != nil {
				return "", nil, err
			}
			directives[i] = string(directiveFor(cols[name]))
			values[i] = cols[name]
		}
		text := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table,
			strings.Join(quoted, ", "),
			strings.Join(directives, ", "))
		return text, values, nil

	case domain.Truncate:
		if len(args) != 1 {
			return "", nil, fmt.Errorf("%w: truncate takes a table", ErrInvalidClause)
		}
		table, err := c.table(args[0])
		if err != nil {
			return "", nil, err
		}
		if tr, ok := c.dialect.(TruncateRenderer); ok {
			return tr.RenderTruncate(table), nil, nil
		}
		return "TRUNCATE TABLE " + table, nil, nil

	case domain.Select:
		if len(args) == 0 {
			return "SELECT *", nil, nil
		}
		cols, err := c.identifiers(args)
		if err != nil {
			return "", nil, err
		}
		return "SELECT " + strings.Join(cols, ", "), nil, nil

	case domain.From, domain.Update, domain.Delete:
		if len(args) != 1 {
			return "", nil, fmt.Errorf("%w: %s takes a table", ErrInvalidClause, clause.Type)
		}
		table, err := c.table(args[0])
		if err != nil {
			return "", nil, err
		}
		keyword := map[domain.ClauseType]string{
			domain.From:   "FROM",
			domain.Update: "UPDATE",
			domain.Delete: "DELETE FROM",
		}[clause.Type]
		return keyword + " " + table, nil, nil

	case domain.Set:
		if len(args) != 1 {
			return "", nil, fmt.Errorf("%w: set takes columns", ErrInvalidClause)
		}
		cols, err := columnsArg(args[0])
		if err != nil {
			return "", nil, err
		}
		if len(cols) == 0 {
			return "", nil, fmt.Errorf("%w: set without columns", ErrInvalidClause)
		}
		names := sortedKeys(cols)
		assignments := make([]string, len(names))
		values := make([]any, len(names))
		for i, name := range names {
			quoted, err := c.quote(name)
			if err != nil {
				return "", nil, err
			}
			assignments[i] = quoted + " = " + string(directiveFor(cols[name]))
			values[i] = cols[name]
		}
		return "SET " + strings.Join(assignments, ", "), values, nil

	case domain.Where, domain.Raw:
		fragment, values, err := fragmentArgs(args)
		if err != nil {
			return "", nil, err
		}
		if clause.Type == domain.Raw {
			return fragment, values, nil
		}
		if prev == domain.Where {
			return "AND " + fragment, values, nil
		}
		return "WHERE " + fragment, values, nil

	case domain.OrderBy:
		if len(args) == 0 {
			return "", nil, fmt.Errorf("%w: order by without columns", ErrInvalidClause)
		}
		terms := make([]string, len(args))
		for i, arg := range args {
			name, ok := arg.(string)
			if !ok || name == "" || name == "-" {
				return "", nil, fmt.Errorf("%w: order by column %v", ErrInvalidClause, arg)
			}
			direction := "ASC"
			if strings.HasPrefix(name, "-") {
				name, direction = name[1:], "DESC"
			}
			quoted, err := c.quote(name)
			if err != nil {
				return "", nil, err
			}
			terms[i] = quoted + " " + direction
		}
		return "ORDER BY " + strings.Join(terms, ", "), nil, nil

	case domain.Limit:
		if len(args) != 1 {
			return "", nil, fmt.Errorf("%w: limit takes a count", ErrInvalidClause)
		}
		n, ok := args[0].(int)
		if !ok || n < 0 {
			return "", nil, fmt.Errorf("%w: limit %v", ErrInvalidClause, args[0])
		}
		return "LIMIT " + strconv.Itoa(n), nil, nil
	}

	return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedClause, clause.Type)
}

// table quotes a table argument. Both domain.Table and string are accepted.
func (c *Compiler) table(arg any) (string, error) {
	switch t := arg.(type) {
	case domain.Table:
		if t != "" {
			return c.quote(string(t))
		}
	case string:
		if t != "" {
			return c.quote(t)
		}
	}
	return "", fmt.Errorf("%w: table %v", ErrInvalidClause, arg)
}

// quote quotes an identifier. Identifiers are rendered before the directive
// scan, so directive text inside a name is rejected.
func (c *Compiler) quote(name string) (string, error) {
	if countDirectives(name) > 0 {
		return "", fmt.Errorf("%w: identifier %q contains directive text", ErrInvalidClause, name)
	}
	return c.dialect.QuoteIdentifier(name), nil
}

func (c *Compiler) identifiers(args []any) ([]string, error) {
	out := make([]string, len(args))
	for i, arg := range args {
		name, ok := arg.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: column %v", ErrInvalidClause, arg)
		}
		if name == "*" {
			out[i] = name
			continue
		}
		quoted, err := c.quote(name)
		if err != nil {
			return nil, err
		}
		out[i] = quoted
	}
	return out, nil
}

func columnsArg(arg any) (domain.Columns, error) {
	switch cols := arg.(type) {
	case domain.Columns:
		return cols, nil
	case map[string]any:
		return domain.Columns(cols), nil
	}
	return nil, fmt.Errorf("%w: columns %T", ErrInvalidClause, arg)
}

// fragmentArgs validates a caller-written fragment against its values.
func fragmentArgs(args []any) (string, []any, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: missing fragment", ErrInvalidClause)
	}
	fragment, ok := args[0].(string)
	if !ok || fragment == "" {
		return "", nil, fmt.Errorf("%w: fragment %v", ErrInvalidClause, args[0])
	}
	values := args[1:]
	if n := countDirectives(fragment); n != len(values) {
		return "", nil, fmt.Errorf("%w: %d directives, %d values", ErrDirectiveArity, n, len(values))
	}
	return fragment, values, nil
}

// sortedKeys returns column names in a stable order.
func sortedKeys(cols domain.Columns) []string {
	keys := make([]string, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
