package dispatch_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database/databasetest"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database/sqlite"
	"github.com/satishbabariya/fluent-query-go/internal/core/connection"
	"github.com/satishbabariya/fluent-query-go/internal/core/dispatch"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/compiler"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/satishbabariya/fluent-query-go/internal/core/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T) (*databasetest.MockConnection, *dispatch.Dispatcher) {
	t.Helper()

	backend := databasetest.NewMockBackend()
	conn := new(databasetest.MockConnection)
	backend.On("Connect", mock.Anything, mock.Anything, "", "").Return(conn, nil)

	m, err := connection.NewManager(backend)
	require.NoError(t, err)
	require.NoError(t, m.Open(database.Settings{Database: "app"}))

	return conn, dispatch.New(m, compiler.NewCompiler(backend), nil)
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name  string
		query *domain.Query
		want  bool
	}{
		{"insert with table and columns", domain.NewQuery(domain.NewInsert("users", domain.Columns{"name": "a"})), true},
		{"insert with plain map", domain.NewQuery(domain.Clause{Type: domain.Insert, Args: []any{domain.Table("users"), map[string]any{"name": "a"}}}), true},
		{"insert with string table", domain.NewQuery(domain.Clause{Type: domain.Insert, Args: []any{"users", domain.Columns{"name": "a"}}}), false},
		{"insert without columns", domain.NewQuery(domain.Clause{Type: domain.Insert, Args: []any{domain.Table("users")}}), false},
		{"insert with column list", domain.NewQuery(domain.Clause{Type: domain.Insert, Args: []any{domain.Table("users"), []string{"name"}}}), false},
		{"truncate", domain.NewQuery(domain.NewTruncate("users")), true},
		{"truncate with string table", domain.NewQuery(domain.Clause{Type: domain.Truncate, Args: []any{"users"}}), false},
		{"select", domain.NewQuery(domain.NewSelect(), domain.NewFrom("users")), false},
		{"empty", domain.NewQuery(), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dispatch.Eligible(tt.query))
		})
	}
}

func TestDispatch_ExecuteInsert(t *testing.T) {
	ctx := context.Background()
	conn, d := newDispatcher(t)
	conn.On("Do", ctx, `INSERT INTO "users" ("name") VALUES ('a')`).Return(int64(1), nil).Once()

	q := domain.NewQuery(domain.NewInsert("users", domain.Columns{"name": "a"}))
	out, err := d.Dispatch(ctx, q, dispatch.Execute)
	require.NoError(t, err)

	assert.Equal(t, dispatch.Executed, out.Action)
	assert.Equal(t, int64(1), out.RowsAffected)
	assert.Same(t, q, out.Query)
	conn.AssertExpectations(t)
}

func TestDispatch_PassthroughIsUnmodified(t *testing.T) {
	ctx := context.Background()
	conn, d := newDispatcher(t)

	q := domain.NewQuery(domain.Clause{Type: domain.Insert, Args: []any{"users"}})
	for _, op := range []dispatch.Operation{dispatch.Execute, dispatch.Prepare} {
		out, err := d.Dispatch(ctx, q, op)
		require.NoError(t, err)
		assert.Equal(t, dispatch.Passthrough, out.Action)
		assert.Same(t, q, out.Query)
		assert.Nil(t, out.Statement)
	}

	conn.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	conn.AssertNotCalled(t, "Prepare", mock.Anything, mock.Anything)
}

func TestDispatch_PrepareTruncate(t *testing.T) {
	ctx := context.Background()
	conn, d := newDispatcher(t)
	native := new(databasetest.MockStatement)
	conn.On("Prepare", ctx, `TRUNCATE TABLE "users"`).Return(native, nil).Once()

	out, err := d.Dispatch(ctx, domain.NewQuery(domain.NewTruncate("users")), dispatch.Prepare)
	require.NoError(t, err)
	assert.Equal(t, dispatch.Prepared, out.Action)
	require.NotNil(t, out.Statement)

	got, err := out.Statement.Native(ctx)
	require.NoError(t, err)
	assert.Same(t, native, got)
	conn.AssertExpectations(t)
}

func TestDispatch_SQLite(t *testing.T) {
	ctx := context.Background()
	backend, err := sqlite.New()
	require.NoError(t, err)

	m, err := connection.NewManager(backend)
	require.NoError(t, err)
	require.NoError(t, m.Open(database.Settings{Database: filepath.Join(t.TempDir(), "app.db")}))
	t.Cleanup(func() { m.Close() })

	conn, err := m.Handle(ctx)
	require.NoError(t, err)
	_, err = conn.Do(ctx, "CREATE TABLE users (name TEXT, admin BOOLEAN)")
	require.NoError(t, err)

	registry := result.NewRegistry(false)
	d := dispatch.New(m, compiler.NewCompiler(backend), registry)

	out, err := d.Dispatch(ctx, domain.NewQuery(domain.NewInsert("users", domain.Columns{"name": "ada", "admin": true})), dispatch.Execute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.RowsAffected)

	out, err = d.Dispatch(ctx, domain.NewQuery(domain.NewInsert("users", domain.Columns{"name": "", "admin": false})), dispatch.Prepare)
	require.NoError(t, err)
	require.Equal(t, dispatch.Prepared, out.Action)
	cur, err := out.Statement.Execute(ctx, false, "bob")
	require.NoError(t, err)
	require.NoError(t, cur.Free())
	require.NoError(t, out.Statement.Close())

	src, err := conn.Execute(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	count := result.NewCursor(src, registry)
	n, ok, err := count.Single()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), n)
	require.NoError(t, count.Free())

	out, err = d.Dispatch(ctx, domain.NewQuery(domain.NewTruncate("users")), dispatch.Execute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.RowsAffected)
}
