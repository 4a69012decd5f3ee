// Package postgres implements the PostgreSQL backend.
package postgres

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
)

const (
	// DriverName is the registered backend name.
	DriverName = "postgres"

	// Prefix is the connection string prefix.
	Prefix = "DBI:Pg:"
)

// Backend implements database.Backend for PostgreSQL.
type Backend struct {
	database.Base
}

// New creates a new PostgreSQL backend.
func New() (*Backend, error) {
	b := &Backend{Base: database.Base{Prefix: Prefix}}
	if err := database.Validate(b); err != nil {
		return nil, err
	}
	return b, nil
}

func init() {
	database.Register(DriverName, func() database.Backend {
		return &Backend{Base: database.Base{Prefix: Prefix}}
	})
}

// DriverName returns "postgres".
func (b *Backend) DriverName() string {
	return DriverName
}

// PlaceholderToken returns "$n".
func (b *Backend) PlaceholderToken(ordinal int) string {
	return "$" + strconv.Itoa(ordinal)
}

// QuoteIdentifier quotes name with pq.QuoteIdentifier.
func (b *Backend) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

// QuoteString quotes value with pq.QuoteLiteral.
func (b *Backend) QuoteString(value string) string {
	return pq.QuoteLiteral(value)
}

// VersionQuery returns the server version statement.
func (b *Backend) VersionQuery() string {
	return "SHOW server_version"
}

// MinimumVersion returns the oldest supported server version.
func (b *Backend) MinimumVersion() string {
	return "9.5"
}

// Connect opens a session through a pq connector. A socket setting is used
// as the host, which pq treats as the socket directory.
func (b *Backend) Connect(ctx context.Context, connString, username, password string) (database.NativeConnection, error) {
	d, err := database.ParseConnectionString(b.Prefix, connString)
	if err != nil {
		return nil, err
	}

	connector, err := pq.NewConnector(DataSourceName(d, username, password))
	if err != nil {
		return nil, database.NewBackendError("connect", "", err)
	}

	return database.OpenSession(ctx, sql.OpenDB(connector))
}

// DataSourceName renders a descriptor as a pq key/value connection string.
func DataSourceName(d *database.Descriptor, username, password string) string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteValue(value))
		}
	}

	add("dbname", d.Database)
	if d.Socket != "" {
		add("host", d.Socket)
	} else {
		add("host", d.Host)
	}
	if d.Port != 0 {
		add("port", strconv.Itoa(d.Port))
	}
	add("user", username)
	add("password", password)

	keys := make([]string, 0, len(d.Options))
	for k := range d.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, d.Options[k])
	}

	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Ensure Backend implements the backend contract.
var (
	_ database.Backend       = (*Backend)(nil)
	_ database.VersionProber = (*Backend)(nil)
)
