package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/satishbabariya/fluent-query-go/cmd/fluentquery/internal/ui"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/satishbabariya/fluent-query-go/internal/core/result"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
}

// writeRows prints rows in the given format, keeping column order.
func writeRows(w io.Writer, f outputFormat, columns []string, rows []result.Row) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []result.Row{}
		}
		return enc.Encode(rows)

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		if rows == nil {
			rows = []result.Row{}
		}
		return enc.Encode(rows)
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(columns))
		for j, col := range columns {
			cells[i][j] = formatCell(row[col])
		}
	}
	return ui.PrintTable(w, columns, cells)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// parseColumns turns key=value arguments into insert columns. Values are
// typed as integer, float, boolean or null when they parse as such, and
// are strings otherwise.
func parseColumns(args []string) (domain.Columns, error) {
	cols := make(domain.Columns, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid column %q, want key=value", arg)
		}
		if _, dup := cols[key]; dup {
			return nil, fmt.Errorf("column %q given twice", key)
		}
		cols[key] = parseValue(raw)
	}
	return cols, nil
}

func parseValue(raw string) any {
	if raw == "null" {
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	return strings.Trim(raw, `"`)
}
