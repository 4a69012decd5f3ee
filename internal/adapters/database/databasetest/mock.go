// Package databasetest provides test doubles for the database capability
// interfaces.
package databasetest

import (
	"context"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of database.Backend. Connection
// string, authentication, placeholder and quoting defaults come from Base.
type MockBackend struct {
	database.Base
	mock.Mock
}

// NewMockBackend creates a mock backend with the "DBI:Mock:" prefix.
func NewMockBackend() *MockBackend {
	return &MockBackend{Base: database.Base{Prefix: "DBI:Mock:"}}
}

func (m *MockBackend) DriverName() string {
	return "mock"
}

func (m *MockBackend) Connect(ctx context.Context, connString, username, password string) (database.NativeConnection, error) {
	args := m.Called(ctx, connString, username, password)
	conn, _ := args.Get(0).(database.NativeConnection)
	return conn, args.Error(1)
}

// MockConnection is a mock implementation of database.NativeConnection
type MockConnection struct {
	mock.Mock
}

func (m *MockConnection) Execute(ctx context.Context, query string) (database.ResultSource, error) {
	args := m.Called(ctx, query)
	source, _ := args.Get(0).(database.ResultSource)
	return source, args.Error(1)
}

func (m *MockConnection) Do(ctx context.Context, query string) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConnection) Prepare(ctx context.Context, query string) (database.NativeStatement, error) {
	args := m.Called(ctx, query)
	stmt, _ := args.Get(0).(database.NativeStatement)
	return stmt, args.Error(1)
}

func (m *MockConnection) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockStatement is a mock implementation of database.NativeStatement
type MockStatement struct {
	mock.Mock
}

func (m *MockStatement) Execute(ctx context.Context, values ...any) (database.ResultSource, error) {
	args := m.Called(ctx, values)
	source, _ := args.Get(0).(database.ResultSource)
	return source, args.Error(1)
}

func (m *MockStatement) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Rows is an in-memory database.ResultSource. Execute rewinds it.
type Rows struct {
	Cols     []string
	Data     [][]any
	pos      int
	Executes int
	Finishes int
}

// NewRows creates an in-memory source over data.
func NewRows(cols []string, data ...[]any) *Rows {
	return &Rows{Cols: cols, Data: data}
}

func (r *Rows) Columns() ([]string, error) {
	return append([]string(nil), r.Cols...), nil
}

func (r *Rows) FetchRow() ([]any, error) {
	if r.pos >= len(r.Data) {
		return nil, nil
	}
	row := r.Data[r.pos]
	r.pos++
	return append([]any(nil), row...), nil
}

func (r *Rows) FetchAssociative() (map[string]any, error) {
	row, err := r.FetchRow()
	if err != nil || row == nil {
		return nil, err
	}
	out := make(map[string]any, len(r.Cols))
	for i, col := range r.Cols {
		out[col] = row[i]
	}
	return out, nil
}

func (r *Rows) FetchAll() ([][]any, error) {
	var all [][]any
	for {
		row, err := r.FetchRow()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return all, nil
		}
		all = append(all, row)
	}
}

func (r *Rows) Execute(context.Context) error {
	r.Executes++
	r.pos = 0
	return nil
}

func (r *Rows) Finish() error {
	r.Finishes++
	return nil
}

var (
	_ database.Backend          = (*MockBackend)(nil)
	_ database.NativeConnection = (*MockConnection)(nil)
	_ database.NativeStatement  = (*MockStatement)(nil)
	_ database.ResultSource     = (*Rows)(nil)
)
