package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database/databasetest"
	_ "github.com/satishbabariya/fluent-query-go/internal/adapters/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		settings *database.Settings
		want     string
	}{
		{
			name:     "database only",
			settings: &database.Settings{Database: "app"},
			want:     "DBI:Pg:database=app;host=localhost",
		},
		{
			name:     "host and port",
			settings: &database.Settings{Database: "app", Server: "db.internal", Port: 5433},
			want:     "DBI:Pg:database=app;host=db.internal;port=5433",
		},
		{
			name:     "socket",
			settings: &database.Settings{Database: "app", Socket: "/var/run/postgresql"},
			want:     "DBI:Pg:database=app;host=localhost;socket=/var/run/postgresql",
		},
		{
			name:     "port and socket",
			settings: &database.Settings{Database: "app", Port: 1, Socket: "/tmp/s"},
			want:     "DBI:Pg:database=app;host=localhost;port=1;socket=/tmp/s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := database.DefaultConnectionString("DBI:Pg:", tt.settings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := database.DefaultConnectionString("DBI:Pg:", nil)
	assert.ErrorIs(t, err, database.ErrConnectionSettingsMissing)
}

func TestParseConnectionString(t *testing.T) {
	settings := &database.Settings{Database: "app", Server: "db", Port: 5432, Socket: "/tmp/pg"}
	conn, err := database.DefaultConnectionString("DBI:Pg:", settings)
	require.NoError(t, err)

	d, err := database.ParseConnectionString("DBI:Pg:", conn)
	require.NoError(t, err)
	assert.Equal(t, "app", d.Database)
	assert.Equal(t, "db", d.Host)
	assert.Equal(t, 5432, d.Port)
	assert.Equal(t, "/tmp/pg", d.Socket)
	assert.Empty(t, d.Options)

	d, err = database.ParseConnectionString("DBI:Pg:", "DBI:Pg:dbname=app;sslmode=disable;options=a=b")
	require.NoError(t, err)
	assert.Equal(t, "app", d.Database)
	assert.Equal(t, map[string]string{"sslmode": "disable", "options": "a=b"}, d.Options)

	d, err = database.ParseConnectionString("DBI:Pg:", "DBI:Pg:")
	require.NoError(t, err)
	assert.Empty(t, d.Database)

	_, err = database.ParseConnectionString("DBI:Pg:", "DBI:Mysql:database=app")
	assert.Error(t, err)

	_, err = database.ParseConnectionString("DBI:Pg:", "DBI:Pg:database=app;port=abc")
	assert.ErrorContains(t, err, "invalid port")
}

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, database.Settings{Database: "app", Server: "db", Port: 5432, Password: "a;b"}.Validate())

	invalid := []database.Settings{
		{Database: "a;b.db"},
		{Database: "app", Server: "db;x"},
		{Database: "app", Socket: "/tmp/s;1"},
		{Database: "app", Port: -1},
	}
	for _, s := range invalid {
		assert.ErrorIs(t, s.Validate(), database.ErrInvalidSettings, "%+v", s)
	}
}

func TestBase(t *testing.T) {
	b := database.Base{Prefix: "DBI:Test:"}

	assert.Equal(t, "DBI:Test:", b.ConnectionPrefix())
	assert.Equal(t, "?", b.PlaceholderToken(3))
	assert.Equal(t, `"we""ird"`, b.QuoteIdentifier(`we"ird`))
	assert.Equal(t, `'O''Neil'`, b.QuoteString("O'Neil"))

	user, pass := b.Authentication(&database.Settings{Username: "u", Password: "p"})
	assert.Equal(t, "u", user)
	assert.Equal(t, "p", pass)

	user, pass = b.Authentication(nil)
	assert.Empty(t, user)
	assert.Empty(t, pass)

	conn, err := b.BuildConnectionString(&database.Settings{Database: "x"})
	require.NoError(t, err)
	assert.Equal(t, "DBI:Test:database=x;host=localhost", conn)
}

type nameless struct {
	database.Base
}

func (nameless) DriverName() string { return "" }

func (nameless) Connect(context.Context, string, string, string) (database.NativeConnection, error) {
	return nil, nil
}

func TestValidate(t *testing.T) {
	assert.NoError(t, database.Validate(databasetest.NewMockBackend()))
	assert.ErrorIs(t, database.Validate(nil), database.ErrUnsupportedOperation)
	assert.ErrorIs(t, database.Validate(nameless{Base: database.Base{Prefix: "DBI:X:"}}), database.ErrUnsupportedOperation)

	noPrefix := databasetest.NewMockBackend()
	noPrefix.Prefix = ""
	assert.ErrorIs(t, database.Validate(noPrefix), database.ErrUnsupportedOperation)
}

func TestRegistry(t *testing.T) {
	b, err := database.Lookup("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", b.DriverName())
	assert.Contains(t, database.Backends(), "sqlite")

	_, err = database.Lookup("oracle")
	assert.ErrorIs(t, err, database.ErrUnsupportedOperation)

	database.Register("registry-test", func() database.Backend { return databasetest.NewMockBackend() })
	assert.Panics(t, func() {
		database.Register("registry-test", func() database.Backend { return databasetest.NewMockBackend() })
	})
	assert.Panics(t, func() { database.Register("registry-nil", nil) })
}

func TestBackendError(t *testing.T) {
	native := errors.New("sql: expected 2 arguments, got 1")
	err := database.NewBackendError("execute prepared", "INSERT", native)

	assert.ErrorIs(t, err, database.ErrBackendExecution)
	assert.ErrorIs(t, err, database.ErrPlaceholderArityMismatch)
	assert.ErrorIs(t, err, native)
	assert.True(t, database.IsBackendError(err))
	assert.Equal(t, `execute prepared "INSERT": sql: expected 2 arguments, got 1`, err.Error())

	var be *database.BackendError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &be)
	assert.Equal(t, "execute prepared", be.Op)
	assert.Same(t, native, be.Cause)

	other := database.NewBackendError("do", "", errors.New("no such table: users"))
	assert.ErrorIs(t, other, database.ErrBackendExecution)
	assert.NotErrorIs(t, other, database.ErrPlaceholderArityMismatch)
	assert.Equal(t, "do: no such table: users", other.Error())

	assert.NoError(t, database.NewBackendError("do", "", nil))
	assert.False(t, database.IsBackendError(errors.New("plain")))
}
