package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// sqlConnection is a NativeConnection pinned to one *sql.Conn so that every
// statement runs in the same backend session. Open result streams and
// statements are released before the connection itself, since *sql.Conn
// blocks Close while rows are open.
type sqlConnection struct {
	db   *sql.DB
	conn *sql.Conn

	mu      sync.Mutex
	sources map[*rowsSource]struct{}
	stmts   map[*sqlStatement]struct{}
}

// OpenSession limits db to a single connection, verifies it and pins it.
// On failure db is closed.
func OpenSession(ctx context.Context, db *sql.DB) (NativeConnection, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewBackendError("connect", "", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, NewBackendError("connect", "", err)
	}

	return &sqlConnection{
		db:      db,
		conn:    conn,
		sources: make(map[*rowsSource]struct{}),
		stmts:   make(map[*sqlStatement]struct{}),
	}, nil
}

// Execute runs query and returns its result stream.
func (c *sqlConnection) Execute(ctx context.Context, query string) (ResultSource, error) {
	src := &rowsSource{
		owner: c,
		op:    "execute",
		query: query,
		run: func(ctx context.Context) (*sql.Rows, error) {
			return c.conn.QueryContext(ctx, query)
		},
	}
	if err := src.Execute(ctx); err != nil {
		return nil, err
	}
	return src, nil
}

// Do runs query and returns the affected row count.
func (c *sqlConnection) Do(ctx context.Context, query string) (int64, error) {
	res, err := c.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, NewBackendError("do", query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewBackendError("do", query, err)
	}
	return n, nil
}

// Prepare creates a prepared statement bound to the session.
func (c *sqlConnection) Prepare(ctx context.Context, query string) (NativeStatement, error) {
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, NewBackendError("prepare", query, err)
	}
	st := &sqlStatement{owner: c, stmt: stmt, query: query}
	c.mu.Lock()
	c.stmts[st] = struct{}{}
	c.mu.Unlock()
	return st, nil
}

// Close releases open result streams and statements, then the pinned
// connection and the pool behind it.
func (c *sqlConnection) Close() error {
	c.mu.Lock()
	sources := make([]*rowsSource, 0, len(c.sources))
	for src := range c.sources {
		sources = append(sources, src)
	}
	stmts := make([]*sqlStatement, 0, len(c.stmts))
	for st := range c.stmts {
		stmts = append(stmts, st)
	}
	c.mu.Unlock()

	var errs []error
	for _, src := range sources {
		errs = append(errs, src.Finish())
	}
	for _, st := range stmts {
		errs = append(errs, st.Close())
	}

	connErr := c.conn.Close()
	if errors.Is(connErr, sql.ErrConnDone) {
		connErr = nil
	}
	errs = append(errs, connErr, c.db.Close())
	return errors.Join(errs...)
}

func (c *sqlConnection) track(src *rowsSource) {
	c.mu.Lock()
	c.sources[src] = struct{}{}
	c.mu.Unlock()
}

func (c *sqlConnection) untrack(src *rowsSource) {
	c.mu.Lock()
	delete(c.sources, src)
	c.mu.Unlock()
}

// sqlStatement is a NativeStatement over *sql.Stmt.
type sqlStatement struct {
	owner *sqlConnection
	stmt  *sql.Stmt
	query string
}

// Execute binds args and runs the statement.
func (s *sqlStatement) Execute(ctx context.Context, args ...any) (ResultSource, error) {
	src := &rowsSource{
		owner: s.owner,
		op:    "execute prepared",
		query: s.query,
		run: func(ctx context.Context) (*sql.Rows, error) {
			return s.stmt.QueryContext(ctx, args...)
		},
	}
	if err := src.Execute(ctx); err != nil {
		return nil, err
	}
	return src, nil
}

// Close releases the statement.
func (s *sqlStatement) Close() error {
	s.owner.mu.Lock()
	delete(s.owner.stmts, s)
	s.owner.mu.Unlock()
	return s.stmt.Close()
}

// rowsSource is a ResultSource over *sql.Rows. run re-creates the rows so
// the originating statement can be executed again.
type rowsSource struct {
	owner   *sqlConnection
	op      string
	query   string
	run     func(ctx context.Context) (*sql.Rows, error)
	rows    *sql.Rows
	columns []string
}

// Execute (re)runs the originating statement.
func (s *rowsSource) Execute(ctx context.Context) error {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}

	rows, err := s.run(ctx)
	if err != nil {
		return NewBackendError(s.op, s.query, err)
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return NewBackendError(s.op, s.query, err)
	}

	// Statements without a result set run on the first step with some
	// drivers; step them now so the side effects happen on Execute.
	if len(columns) == 0 {
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return NewBackendError(s.op, s.query, err)
		}
	}

	s.rows = rows
	s.columns = columns
	s.owner.track(s)
	return nil
}

// Columns returns the column names of the last execution.
func (s *rowsSource) Columns() ([]string, error) {
	return append([]string(nil), s.columns...), nil
}

// FetchRow returns the next row, or nil when the stream is exhausted.
func (s *rowsSource) FetchRow() ([]any, error) {
	if s.rows == nil {
		return nil, nil
	}

	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, NewBackendError("fetch", s.query, err)
		}
		return nil, nil
	}

	values := make([]any, len(s.columns))
	valuePtrs := make([]any, len(s.columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := s.rows.Scan(valuePtrs...); err != nil {
		return nil, NewBackendError("fetch", s.query, err)
	}

	for i, val := range values {
		// Convert []byte to string for text columns
		if b, ok := val.([]byte); ok {
			values[i] = string(b)
		}
	}

	return values, nil
}

// FetchAssociative returns the next row keyed by column name.
func (s *rowsSource) FetchAssociative() (map[string]any, error) {
	row, err := s.FetchRow()
	if err != nil || row == nil {
		return nil, err
	}

	record := make(map[string]any, len(row))
	for i, col := range s.columns {
		record[col] = row[i]
	}
	return record, nil
}

// FetchAll drains the stream.
func (s *rowsSource) FetchAll() ([][]any, error) {
	var all [][]any
	for {
		row, err := s.FetchRow()
		if err != nil {
			return all, err
		}
		if row == nil {
			return all, nil
		}
		all = append(all, row)
	}
}

// Finish closes the rows.
func (s *rowsSource) Finish() error {
	if s.rows == nil {
		return nil
	}
	err := s.rows.Close()
	s.rows = nil
	s.owner.untrack(s)
	return err
}
