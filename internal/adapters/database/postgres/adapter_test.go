package postgres

import (
	"testing"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	assert.Equal(t, "postgres", b.DriverName())
	assert.Equal(t, "DBI:Pg:", b.ConnectionPrefix())
	assert.Equal(t, "$1", b.PlaceholderToken(1))
	assert.Equal(t, "$12", b.PlaceholderToken(12))
	assert.Equal(t, `"users"`, b.QuoteIdentifier("users"))
	assert.Equal(t, `'O''Neil'`, b.QuoteString("O'Neil"))
	assert.Equal(t, ` E'back\\slash'`, b.QuoteString(`back\slash`))
}

func TestDataSourceName(t *testing.T) {
	tests := []struct {
		name string
		d    *database.Descriptor
		user string
		pass string
		want string
	}{
		{
			name: "host and port",
			d:    &database.Descriptor{Database: "app", Host: "db", Port: 5432},
			user: "alice",
			pass: "s3cret",
			want: "dbname=app host=db port=5432 user=alice password=s3cret",
		},
		{
			name: "socket replaces host",
			d:    &database.Descriptor{Database: "app", Host: "localhost", Socket: "/var/run/postgresql"},
			want: "dbname=app host=/var/run/postgresql",
		},
		{
			name: "quoted values and sorted options",
			d: &database.Descriptor{
				Database: "app",
				Host:     "db",
				Options:  map[string]string{"sslmode": "disable", "application_name": "fluent query"},
			},
			pass: `it's`,
			want: `dbname=app host=db password='it\'s' application_name='fluent query' sslmode=disable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DataSourceName(tt.d, tt.user, tt.pass))
		})
	}
}
