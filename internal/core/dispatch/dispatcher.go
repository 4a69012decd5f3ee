// Package dispatch decides whether a query is executed or prepared
// immediately, based on an explicit operation and the query's leading
// clause.
package dispatch

import (
	"context"
	"fmt"

	"github.com/satishbabariya/fluent-query-go/internal/core/connection"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/compiler"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/satishbabariya/fluent-query-go/internal/core/result"
	"github.com/satishbabariya/fluent-query-go/internal/core/statement"
	"github.com/satishbabariya/fluent-query-go/internal/debug"
)

// Operation is what the caller asks for.
type Operation int

const (
	// Execute runs an eligible query immediately.
	Execute Operation = iota
	// Prepare creates a prepared statement for an eligible query.
	Prepare
)

func (o Operation) String() string {
	switch o {
	case Execute:
		return "execute"
	case Prepare:
		return "prepare"
	default:
		return "unknown"
	}
}

// Action is what the dispatcher did.
type Action int

const (
	// Passthrough means the query was not eligible and is returned as is.
	Passthrough Action = iota
	// Executed means the query ran; RowsAffected is set.
	Executed
	// Prepared means a statement was created; Statement is set.
	Prepared
)

func (a Action) String() string {
	switch a {
	case Passthrough:
		return "passthrough"
	case Executed:
		return "executed"
	case Prepared:
		return "prepared"
	default:
		return "unknown"
	}
}

// Outcome reports the result of a dispatch.
type Outcome struct {
	Action       Action
	Query        *domain.Query
	RowsAffected int64
	Statement    *statement.Statement
}

// rule decides whether the leading clause's arguments have the shape that
// makes a query eligible.
type rule func(args []any) bool

var rules = map[domain.ClauseType]rule{
	domain.Insert: func(args []any) bool {
		return len(args) == 2 && isTable(args[0]) && isColumns(args[1])
	},
	domain.Truncate: func(args []any) bool {
		return len(args) == 1 && isTable(args[0])
	},
}

func isTable(v any) bool {
	t, ok := v.(domain.Table)
	return ok && t != ""
}

func isColumns(v any) bool {
	switch v.(type) {
	case domain.Columns, map[string]any:
		return true
	}
	return false
}

// Dispatcher routes eligible queries to execution or preparation.
type Dispatcher struct {
	conn     *connection.Manager
	compiler *compiler.Compiler
	registry *result.Registry
	stmtOpts []statement.Option
}

// New creates a dispatcher. stmtOpts are applied to every prepared
// statement it creates.
func New(conn *connection.Manager, comp *compiler.Compiler, registry *result.Registry, stmtOpts ...statement.Option) *Dispatcher {
	return &Dispatcher{conn: conn, compiler: comp, registry: registry, stmtOpts: stmtOpts}
}

// Eligible reports whether q would be executed or prepared.
func Eligible(q *domain.Query) bool {
	leading, ok := q.Leading()
	if !ok {
		return false
	}
	match, ok := rules[leading.Type]
	return ok && match(leading.Args)
}

// Dispatch runs op on q when q is eligible. An ineligible query is not an
// error; it comes back unmodified with Action Passthrough.
func (d *Dispatcher) Dispatch(ctx context.Context, q *domain.Query, op Operation) (*Outcome, error) {
	if !Eligible(q) {
		return &Outcome{Action: Passthrough, Query: q}, nil
	}

	switch op {
	case Execute:
		text, err := d.compiler.Text(q)
		if err != nil {
			return nil, err
		}
		handle, err := d.conn.Handle(ctx)
		if err != nil {
			return nil, err
		}
		affected, err := handle.Do(ctx, text)
		if err != nil {
			return nil, err
		}
		debug.Debug("dispatched", "op", op, "rows_affected", affected)
		return &Outcome{Action: Executed, Query: q, RowsAffected: affected}, nil

	case Prepare:
		stmt := statement.New(q, d.conn, d.compiler, d.registry, d.stmtOpts...)
		if _, err := stmt.Native(ctx); err != nil {
			return nil, err
		}
		debug.Debug("dispatched", "op", op)
		return &Outcome{Action: Prepared, Query: q, Statement: stmt}, nil
	}

	return nil, fmt.Errorf("unknown operation %d", op)
}
