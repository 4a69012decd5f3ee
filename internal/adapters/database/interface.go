// Package database defines the backend contract the driver layer is built on
// and the native capability interfaces it consumes.
package database

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Settings holds connection settings. Only Database is required; a zero
// value means the field is unset.
//
// Server, Socket and Database are joined into a ';'-separated connection
// string, so they cannot contain ';'. See Validate.
type Settings struct {
	Server   string
	Port     int
	Socket   string
	Database string
	Username string
	Password string
}

// Validate reports settings that cannot be carried by a connection string.
func (s Settings) Validate() error {
	fields := []struct{ name, value string }{
		{"server", s.Server},
		{"socket", s.Socket},
		{"database", s.Database},
	}
	for _, f := range fields {
		if strings.Contains(f.value, ";") {
			return fmt.Errorf("%w: %s %q contains ';'", ErrInvalidSettings, f.name, f.value)
		}
	}
	if s.Port < 0 {
		return fmt.Errorf("%w: port %d", ErrInvalidSettings, s.Port)
	}
	return nil
}

// DefaultHost is used when Settings.Server is empty.
const DefaultHost = "localhost"

// Backend is the contract a concrete database backend must satisfy.
//
// Embedding Base supplies the connection prefix, the default connection
// string algorithm, authentication, placeholder syntax and ANSI quoting.
// DriverName and Connect have no defaults.
type Backend interface {
	// DriverName returns the backend name, e.g. "postgres".
	DriverName() string

	// ConnectionPrefix returns the driver-specific connection string prefix.
	ConnectionPrefix() string

	// BuildConnectionString builds the connection string from settings.
	BuildConnectionString(settings *Settings) (string, error)

	// Authentication extracts the credentials from settings.
	Authentication(settings *Settings) (username, password string)

	// PlaceholderToken returns the bind placeholder for the 1-based ordinal.
	PlaceholderToken(ordinal int) string

	// QuoteIdentifier quotes a table or column name.
	QuoteIdentifier(name string) string

	// QuoteString renders a string literal.
	QuoteString(value string) string

	// Connect opens the native connection.
	Connect(ctx context.Context, connString, username, password string) (NativeConnection, error)
}

// NativeConnection is a single logical backend session.
type NativeConnection interface {
	// Execute runs a statement returning rows.
	Execute(ctx context.Context, query string) (ResultSource, error)

	// Do runs a statement and returns the affected row count.
	Do(ctx context.Context, query string) (int64, error)

	// Prepare creates a backend-native prepared statement.
	Prepare(ctx context.Context, query string) (NativeStatement, error)

	// Close releases the session.
	Close() error
}

// NativeStatement is a backend-native prepared statement.
type NativeStatement interface {
	// Execute binds args positionally and runs the statement.
	Execute(ctx context.Context, args ...any) (ResultSource, error)

	// Close releases the statement.
	Close() error
}

// ResultSource is a forward-only backend result stream.
type ResultSource interface {
	// Columns returns the result column names.
	Columns() ([]string, error)

	// FetchRow returns the next row, or nil at exhaustion.
	FetchRow() ([]any, error)

	// FetchAssociative returns the next row keyed by column, or nil at exhaustion.
	FetchAssociative() (map[string]any, error)

	// FetchAll drains the remaining rows.
	FetchAll() ([][]any, error)

	// Execute re-runs the originating statement and rewinds the stream.
	Execute(ctx context.Context) error

	// Finish releases the stream.
	Finish() error
}

// VersionProber is implemented by backends that can report the server
// version.
type VersionProber interface {
	// VersionQuery returns a statement yielding the version in its first column.
	VersionQuery() string

	// MinimumVersion returns the oldest supported server version.
	MinimumVersion() string
}

// Base provides the default parts of the Backend contract.
type Base struct {
	// Prefix is the driver-specific connection string prefix.
	Prefix string
}

// ConnectionPrefix returns the configured prefix.
func (b Base) ConnectionPrefix() string {
	return b.Prefix
}

// BuildConnectionString applies DefaultConnectionString with the prefix.
func (b Base) BuildConnectionString(settings *Settings) (string, error) {
	return DefaultConnectionString(b.Prefix, settings)
}

// DefaultConnectionString builds "<prefix>database=<db>;host=<host>" with
// optional ";port=<n>" and ";socket=<path>" suffixes, in that order.
func DefaultConnectionString(prefix string, settings *Settings) (string, error) {
	if settings == nil {
		return "", ErrConnectionSettingsMissing
	}

	host := settings.Server
	if host == "" {
		host = DefaultHost
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("database=")
	b.WriteString(settings.Database)
	b.WriteString(";host=")
	b.WriteString(host)
	if settings.Port != 0 {
		b.WriteString(";port=")
		b.WriteString(strconv.Itoa(settings.Port))
	}
	if settings.Socket != "" {
		b.WriteString(";socket=")
		b.WriteString(settings.Socket)
	}

	return b.String(), nil
}

// Authentication returns the username and password from settings.
func (Base) Authentication(settings *Settings) (string, string) {
	if settings == nil {
		return "", ""
	}
	return settings.Username, settings.Password
}

// PlaceholderToken returns "?".
func (Base) PlaceholderToken(int) string {
	return "?"
}

// QuoteIdentifier wraps name in double quotes.
func (Base) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString wraps value in single quotes.
func (Base) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// Validate checks that a backend provides its required identity. It is
// called when a backend is constructed or registered.
func Validate(b Backend) error {
	if b == nil {
		return fmt.Errorf("nil backend: %w", ErrUnsupportedOperation)
	}
	if b.DriverName() == "" {
		return fmt.Errorf("backend %T has no driver name: %w", b, ErrUnsupportedOperation)
	}
	if b.ConnectionPrefix() == "" {
		return fmt.Errorf("backend %q has no connection prefix: %w", b.DriverName(), ErrUnsupportedOperation)
	}
	return nil
}

var (
	registryMu sync.RWMutex
	backends   = make(map[string]func() Backend)
)

// Register makes a backend constructor available by name.
func Register(name string, factory func() Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("database: Register factory is nil")
	}
	if _, dup := backends[name]; dup {
		panic("database: Register called twice for backend " + name)
	}
	backends[name] = factory
}

// Lookup constructs the backend registered under name.
func Lookup(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("backend %q: %w", name, ErrUnsupportedOperation)
	}

	b := factory()
	if err := Validate(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Backends returns the sorted names of registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
