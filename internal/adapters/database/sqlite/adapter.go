// Package sqlite implements the SQLite backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
)

const (
	// DriverName is the registered backend name.
	DriverName = "sqlite"

	// Prefix is the connection string prefix.
	Prefix = "DBI:SQLite3:"
)

// Backend implements database.Backend for SQLite. The database setting is
// the file path; host, port and socket are ignored.
type Backend struct {
	database.Base
}

// New creates a new SQLite backend.
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

// DriverName returns "sqlite".
func (b *Backend) DriverName() string {
	return DriverName
}

// RenderTruncate returns a DELETE statement; SQLite has no TRUNCATE.
func (b *Backend) RenderTruncate(quotedTable string) string {
	return "DELETE FROM " + quotedTable
}

// VersionQuery returns the library version statement.
func (b *Backend) VersionQuery() string {
	return "SELECT sqlite_version()"
}

// MinimumVersion returns the oldest supported library version.
func (b *Backend) MinimumVersion() string {
	return "3.23.0"
}

// Connect opens the database file and enables foreign keys.
func (b *Backend) Connect(ctx context.Context, connString, _, _ string) (database.NativeConnection, error) {
	d, err := database.ParseConnectionString(b.Prefix, connString)
	if err != nil {
		return nil, err
	}
	if d.Database == "" {
		return nil, fmt.Errorf("sqlite database path is empty: %w", database.ErrConnectionSettingsMissing)
	}

	db, err := sql.Open("sqlite3", DataSourceName(d))
	if err != nil {
		return nil, database.NewBackendError("connect", "", err)
	}

	conn, err := database.OpenSession(ctx, db)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := conn.Do(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// DataSourceName renders a descriptor as a go-sqlite3 file DSN. Options
// become query parameters.
func DataSourceName(d *database.Descriptor) string {
	if len(d.Options) == 0 {
		return d.Database
	}

	params := url.Values{}
	for k, v := range d.Options {
		params.Set(k, v)
	}
	return "file:" + d.Database + "?" + params.Encode()
}

// Ensure Backend implements the backend contract.
var (
	_ database.Backend       = (*Backend)(nil)
	_ database.VersionProber = (*Backend)(nil)
)
