package client_test

import (
	"context"
	"testing"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database/databasetest"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
	"github.com/satishbabariya/fluent-query-go/internal/core/result"
	"github.com/satishbabariya/fluent-query-go/runtime/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID       int64
	FullName string `db:"name"`
	Age      *int
	Active   bool
	Ignored  string `db:"-"`
}

func TestScanAll(t *testing.T) {
	rows := databasetest.NewRows([]string{"id", "name", "age", "active", "extra"},
		[]any{int64(1), "ada", int64(36), int64(1), "x"},
		[]any{int64(2), "bob", nil, int64(0), "y"},
	)
	cursor := result.NewCursor(rows, nil)
	defer cursor.Free()

	users, err := client.ScanAll[user](cursor)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "ada", users[0].FullName)
	require.NotNil(t, users[0].Age)
	assert.Equal(t, 36, *users[0].Age)
	assert.True(t, users[0].Active)

	assert.Equal(t, "bob", users[1].FullName)
	assert.Nil(t, users[1].Age)
	assert.False(t, users[1].Active)
}

func TestScanOne(t *testing.T) {
	cursor := result.NewCursor(databasetest.NewRows([]string{"ID", "name"}, []any{int64(7), "eve"}), nil)
	defer cursor.Free()

	u, err := client.ScanOne[user](cursor)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "eve", u.FullName)

	u, err = client.ScanOne[user](cursor)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestScanAll_TypeMismatch(t *testing.T) {
	cursor := result.NewCursor(databasetest.NewRows([]string{"name"}, []any{int64(5)}), nil)
	defer cursor.Free()

	_, err := client.ScanAll[user](cursor)
	assert.ErrorContains(t, err, "column name")
}

func TestScanAll_SQLite(t *testing.T) {
	ctx := context.Background()
	d := openSQLite(t)

	_, err := d.Do(ctx, domain.NewQuery(domain.NewInsert("users", domain.Columns{"id": 1, "name": "ada", "age": 36})))
	require.NoError(t, err)

	cursor, err := d.Execute(ctx, domain.NewQuery(domain.NewSelect("id", "name", "age"), domain.NewFrom("users")))
	require.NoError(t, err)
	defer cursor.Free()

	users, err := client.ScanAll[user](cursor)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ada", users[0].FullName)
	assert.Equal(t, 36, *users[0].Age)
}
