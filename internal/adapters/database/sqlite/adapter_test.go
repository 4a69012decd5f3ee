package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) database.NativeConnection {
	t.Helper()

	b, err := New()
	require.NoError(t, err)

	connString, err := b.BuildConnectionString(&database.Settings{Database: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)

	conn, err := b.Connect(context.Background(), connString, "", "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBackend(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", b.DriverName())
	assert.Equal(t, "?", b.PlaceholderToken(1))
	assert.Equal(t, `DELETE FROM "users"`, b.RenderTruncate(`"users"`))
	assert.Equal(t, "SELECT sqlite_version()", b.VersionQuery())
}

func TestDataSourceName(t *testing.T) {
	assert.Equal(t, "/tmp/app.db", DataSourceName(&database.Descriptor{Database: "/tmp/app.db"}))
	assert.Equal(t, "file:/tmp/app.db?mode=ro",
		DataSourceName(&database.Descriptor{Database: "/tmp/app.db", Options: map[string]string{"mode": "ro"}}))
}

func TestConnect_EmptyPath(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	_, err = b.Connect(context.Background(), "DBI:SQLite3:database=;host=localhost", "", "")
	assert.ErrorIs(t, err, database.ErrConnectionSettingsMissing)
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)

	_, err := conn.Do(ctx, "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT, price REAL)")
	require.NoError(t, err)

	n, err := conn.Do(ctx, "INSERT INTO items (name, price) VALUES ('apple', 1.5), ('pear', 2.0)")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	src, err := conn.Execute(ctx, "SELECT id, name, price FROM items ORDER BY id")
	require.NoError(t, err)

	cols, err := src.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "price"}, cols)

	row, err := src.FetchAssociative()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(1), "name": "apple", "price": 1.5}, row)

	rest, err := src.FetchAll()
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(2), "pear", 2.0}}, rest)

	row, err = src.FetchAssociative()
	require.NoError(t, err)
	assert.Nil(t, row)

	// Execute rewinds the stream
	require.NoError(t, src.Execute(ctx))
	all, err := src.FetchAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	require.NoError(t, src.Finish())
	require.NoError(t, src.Finish())

	_, err = conn.Execute(ctx, "SELECT * FROM missing")
	assert.ErrorIs(t, err, database.ErrBackendExecution)
}

func TestSession_Prepared(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)

	_, err := conn.Do(ctx, "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	stmt, err := conn.Prepare(ctx, "INSERT INTO items (name) VALUES (?)")
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		src, err := stmt.Execute(ctx, name)
		require.NoError(t, err)
		require.NoError(t, src.Finish())
	}

	_, err = stmt.Execute(ctx)
	assert.ErrorIs(t, err, database.ErrPlaceholderArityMismatch)
	require.NoError(t, stmt.Close())

	src, err := conn.Execute(ctx, "SELECT COUNT(*) FROM items")
	require.NoError(t, err)
	row, err := src.FetchRow()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3)}, row)
	require.NoError(t, src.Finish())

	_, err = conn.Prepare(ctx, "SELECT * FROM missing")
	assert.ErrorIs(t, err, database.ErrBackendExecution)
}

func TestSession_CloseReleasesOpenResults(t *testing.T) {
	ctx := context.Background()

	b, err := New()
	require.NoError(t, err)
	connString, err := b.BuildConnectionString(&database.Settings{Database: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	conn, err := b.Connect(ctx, connString, "", "")
	require.NoError(t, err)

	_, err = conn.Execute(ctx, "SELECT 1 UNION ALL SELECT 2")
	require.NoError(t, err)
	_, err = conn.Prepare(ctx, "SELECT ?")
	require.NoError(t, err)

	assert.NoError(t, conn.Close())
}
