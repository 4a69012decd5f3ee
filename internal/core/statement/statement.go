// Package statement binds a query to a single backend prepared statement.
package statement

import (
	"context"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/satishbabariya/fluent-query-go/internal/core/connection"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/compiler"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/satishbabariya/fluent-query-go/internal/core/result"
)

// Statement is a query bound to at most one native prepared statement for
// its whole lifetime. The compiled form, the prepared text and the native
// handle are each produced once, on first use.
//
// A Statement may be executed repeatedly but not concurrently.
type Statement struct {
	query    *domain.Query
	conn     *connection.Manager
	compiler *compiler.Compiler
	registry *result.Registry

	run      Runner

	compiled *domain.CompiledQuery
	text     string
	hasText  bool
	native   database.NativeStatement
}

// Runner wraps each execution of a statement. exec performs the backend
// call; op, query and args describe it.
type Runner func(ctx context.Context, op, query string, args []any, exec func() error) error

// Option configures a Statement.
type Option func(*Statement)

// WithRunner routes executions through run.
func WithRunner(run Runner) Option {
	return func(s *Statement) {
		if run != nil {
			s.run = run
		}
	}
}

func direct(_ context.Context, _, _ string, _ []any, exec func() error) error {
	return exec()
}

// New creates a statement for query. Nothing is compiled or prepared yet.
func New(query *domain.Query, conn *connection.Manager, comp *compiler.Compiler, registry *result.Registry, opts ...Option) *Statement {
	s := &Statement{
		query:    query,
		conn:     conn,
		compiler: comp,
		registry: registry,
		run:      direct,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query returns the bound query.
func (s *Statement) Query() *domain.Query {
	return s.query
}

// Compiled returns the query compiled in Prepare mode.
func (s *Statement) Compiled() (*domain.CompiledQuery, error) {
	if s.compiled != nil {
		return s.compiled, nil
	}

	compiled, err := s.compiler.Compile(s.query, domain.Prepare)
	if err != nil {
		return nil, err
	}
	s.compiled = compiled
	return compiled, nil
}

// PreparedText returns the SQL with the backend's placeholder syntax.
func (s *Statement) PreparedText() (string, error) {
	if s.hasText {
		return s.text, nil
	}

	compiled, err := s.Compiled()
	if err != nil {
		return "", err
	}
	s.text = compiled.Render(s.conn.Backend().PlaceholderToken)
	s.hasText = true
	return s.text, nil
}

// Placeholders returns the number of values Execute expects.
func (s *Statement) Placeholders() (int, error) {
	compiled, err := s.Compiled()
	if err != nil {
		return 0, err
	}
	return compiled.Placeholders(), nil
}

// Native returns the backend prepared statement, preparing it on the first
// call. A failure leaves the compiled form and text cached.
func (s *Statement) Native(ctx context.Context) (database.NativeStatement, error) {
	if s.native != nil {
		return s.native, nil
	}

	text, err := s.PreparedText()
	if err != nil {
		return nil, err
	}

	handle, err := s.conn.Handle(ctx)
	if err != nil {
		return nil, err
	}

	native, err := handle.Prepare(ctx, text)
	if err != nil {
		return nil, err
	}
	s.native = native
	return native, nil
}

// Execute binds values positionally and runs the statement. The value
// count is not checked here; the backend reports a mismatch.
func (s *Statement) Execute(ctx context.Context, values ...any) (*result.Cursor, error) {
	text, err := s.PreparedText()
	if err != nil {
		return nil, err
	}

	var cursor *result.Cursor
	err = s.run(ctx, "execute prepared", text, values, func() error {
		native, err := s.Native(ctx)
		if err != nil {
			return err
		}
		source, err := native.Execute(ctx, values...)
		if err != nil {
			return err
		}
		cursor = result.NewCursor(source, s.registry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

// Close releases the native statement. The compiled form stays cached.
func (s *Statement) Close() error {
	if s.native == nil {
		return nil
	}
	native := s.native
	s.native = nil
	return native.Close()
}
