// Package mysql implements the MySQL backend.
package mysql

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"strings"

	driver "github.com/go-sql-driver/mysql"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
)

const (
	// DriverName is the registered backend name.
	DriverName = "mysql"

	// Prefix is the connection string prefix.
	Prefix = "DBI:Mysql:"

	// DefaultPort is used when the connection string has no port.
	DefaultPort = 3306
)

// Backend implements database.Backend for MySQL.
type Backend struct {
	database.Base
}

// New creates a new MySQL backend.
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

// DriverName returns "mysql".
func (b *Backend) DriverName() string {
	return DriverName
}

// QuoteIdentifier wraps name in backticks.
func (b *Backend) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteString escapes backslashes and quotes.
func (b *Backend) QuoteString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

// VersionQuery returns the server version statement.
func (b *Backend) VersionQuery() string {
	return "SELECT VERSION()"
}

// MinimumVersion returns the oldest supported server version.
func (b *Backend) MinimumVersion() string {
	return "5.7"
}

// Connect opens a session through a mysql connector.
func (b *Backend) Connect(ctx context.Context, connString, username, password string) (database.NativeConnection, error) {
	d, err := database.ParseConnectionString(b.Prefix, connString)
	if err != nil {
		return nil, err
	}

	connector, err := driver.NewConnector(Config(d, username, password))
	if err != nil {
		return nil, database.NewBackendError("connect", "", err)
	}

	return database.OpenSession(ctx, sql.OpenDB(connector))
}

// Config converts a descriptor into a driver configuration. A socket takes
// precedence over host and port.
func Config(d *database.Descriptor, username, password string) *driver.Config {
	cfg := driver.NewConfig()
	cfg.User = username
	cfg.Passwd = password
	cfg.DBName = d.Database
	cfg.ParseTime = true

	if d.Socket != "" {
		cfg.Net = "unix"
		cfg.Addr = d.Socket
	} else {
		port := d.Port
		if port == 0 {
			port = DefaultPort
		}
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(port))
	}

	if len(d.Options) > 0 {
		cfg.Params = make(map[string]string, len(d.Options))
		for k, v := range d.Options {
			cfg.Params[k] = v
		}
	}

	return cfg
}

// Ensure Backend implements the backend contract.
var (
	_ database.Backend       = (*Backend)(nil)
	_ database.VersionProber = (*Backend)(nil)
)
