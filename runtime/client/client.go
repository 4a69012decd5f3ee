// Package client provides the driver a fluent query builder talks to.
package client

import (
	"context"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/satishbabariya/fluent-query-go/internal/core/connection"
	"github.com/satishbabariya/fluent-query-go/internal/core/dispatch"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/compiler"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/satishbabariya/fluent-query-go/internal/core/result"
	"github.com/satishbabariya/fluent-query-go/internal/core/statement"

	_ "github.com/satishbabariya/fluent-query-go/internal/adapters/database/mysql"    // MySQL backend
	_ "github.com/satishbabariya/fluent-query-go/internal/adapters/database/postgres" // PostgreSQL backend
	_ "github.com/satishbabariya/fluent-query-go/internal/adapters/database/sqlite"   // SQLite backend
)

// Driver mediates between queries and one backend connection. It is not
// safe for concurrent use.
type Driver struct {
	conn        *connection.Manager
	compiler    *compiler.Compiler
	registry    *result.Registry
	dispatcher  *dispatch.Dispatcher
	middlewares []Middleware
}

// Option configures a Driver.
type Option func(*Driver)

// WithRegistry tracks cursors in registry instead of a private one.
func WithRegistry(registry *result.Registry) Option {
	return func(d *Driver) {
		d.registry = registry
	}
}

// WithMiddleware adds middlewares to the chain.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(d *Driver) {
		d.middlewares = append(d.middlewares, middlewares...)
	}
}

// New creates a driver for backend. The driver starts closed.
func New(backend database.Backend, opts ...Option) (*Driver, error) {
	conn, err := connection.NewManager(backend)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		conn:     conn,
		compiler: compiler.NewCompiler(backend),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = result.NewRegistry(false)
	}
	d.dispatcher = dispatch.New(d.conn, d.compiler, d.registry, statement.WithRunner(d.run))

	return d, nil
}

// NewFromName creates a driver for the backend registered under name.
func NewFromName(name string, opts ...Option) (*Driver, error) {
	backend, err := database.Lookup(name)
	if err != nil {
		return nil, err
	}
	return New(backend, opts...)
}

// Backend returns the backend.
func (d *Driver) Backend() database.Backend {
	return d.conn.Backend()
}

// Connection returns the connection manager.
func (d *Driver) Connection() *connection.Manager {
	return d.conn
}

// Compiler returns the query compiler.
func (d *Driver) Compiler() *compiler.Compiler {
	return d.compiler
}

// Registry returns the cursor registry.
func (d *Driver) Registry() *result.Registry {
	return d.registry
}

// Open assigns connection settings. The connection itself is opened on
// first use.
func (d *Driver) Open(settings database.Settings) error {
	return d.conn.Open(settings)
}

// Close closes the connection.
func (d *Driver) Close() error {
	return d.conn.Close()
}

// Execute compiles q with inline values, runs it and returns a cursor over
// its rows. The caller frees the cursor.
func (d *Driver) Execute(ctx context.Context, q *domain.Query) (*result.Cursor, error) {
	text, err := d.compiler.Text(q)
	if err != nil {
		return nil, err
	}

	var cursor *result.Cursor
	err = d.run(ctx, "execute", text, nil, func() error {
		handle, err := d.conn.Handle(ctx)
		if err != nil {
			return err
		}
		source, err := handle.Execute(ctx, text)
		if err != nil {
			return err
		}
		cursor = result.NewCursor(source, d.registry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

// Do compiles q with inline values, runs it and returns the affected row
// count.
func (d *Driver) Do(ctx context.Context, q *domain.Query) (int64, error) {
	text, err := d.compiler.Text(q)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = d.run(ctx, "do", text, nil, func() error {
		handle, err := d.conn.Handle(ctx)
		if err != nil {
			return err
		}
		affected, err = handle.Do(ctx, text)
		return err
	})
	return affected, err
}

// Prepare binds q to a new prepared statement. Nothing is compiled or sent
// to the backend until the statement is used. Executions pass through the
// middleware chain with their bound values.
func (d *Driver) Prepare(q *domain.Query) *statement.Statement {
	return statement.New(q, d.conn, d.compiler, d.registry, statement.WithRunner(d.run))
}

// ExecuteConditionally executes or prepares q when its leading clause is an
// insert or truncate of the right shape. Any other query is returned
// unmodified in an Outcome with Action Passthrough.
func (d *Driver) ExecuteConditionally(ctx context.Context, q *domain.Query, op dispatch.Operation) (*dispatch.Outcome, error) {
	if !dispatch.Eligible(q) {
		return d.dispatcher.Dispatch(ctx, q, op)
	}

	text, err := d.dispatchText(q, op)
	if err != nil {
		return nil, err
	}

	var outcome *dispatch.Outcome
	err = d.run(ctx, op.String(), text, nil, func() error {
		var dispatchErr error
		outcome, dispatchErr = d.dispatcher.Dispatch(ctx, q, op)
		return dispatchErr
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// dispatchText is the SQL reported to middleware for a dispatch: inline
// values for Execute, placeholders for Prepare.
func (d *Driver) dispatchText(q *domain.Query, op dispatch.Operation) (string, error) {
	if op != dispatch.Prepare {
		return d.compiler.Text(q)
	}
	compiled, err := d.compiler.Compile(q, domain.Prepare)
	if err != nil {
		return "", err
	}
	return compiled.Render(d.Backend().PlaceholderToken), nil
}
