// Package connection manages the lifecycle of a backend connection: settings
// are assigned eagerly, the native connection is opened lazily on first use.
package connection

import (
	"context"
	"fmt"

	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/satishbabariya/fluent-query-go/internal/debug"
)

// State is the lifecycle state of a Manager.
type State int

const (
	// Closed has no settings and no connection.
	Closed State = iota
	// Pending has settings but no connection yet.
	Pending
	// Open holds a native connection.
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Pending:
		return "pending"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// Manager owns at most one native connection. It is not safe for
// concurrent use.
type Manager struct {
	backend  database.Backend
	settings *database.Settings
	handle   database.NativeConnection
	state    State
}

// NewManager creates a closed manager for backend. The backend is validated
// here rather than on first connect.
func NewManager(backend database.Backend) (*Manager, error) {
	if err := database.Validate(backend); err != nil {
		return nil, err
	}
	return &Manager{backend: backend}, nil
}

// Backend returns the backend.
func (m *Manager) Backend() database.Backend {
	return m.backend
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Settings returns a copy of the assigned settings, or nil when closed.
func (m *Manager) Settings() *database.Settings {
	if m.settings == nil {
		return nil
	}
	s := *m.settings
	return &s
}

// Open assigns settings without connecting. An open connection is released
// first. Settings that fail validation are rejected and the manager is left
// unchanged.
func (m *Manager) Open(settings database.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	var err error
	if m.handle != nil {
		err = m.release()
	}

	m.settings = &settings
	m.state = Pending
	debug.Debug("connection settings assigned",
		"driver", m.backend.DriverName(),
		"database", settings.Database)

	return err
}

// ConnectionString builds the connection string for the assigned settings.
func (m *Manager) ConnectionString() (string, error) {
	if m.settings == nil {
		return "", fmt.Errorf("build connection string: %w", database.ErrConnectionSettingsMissing)
	}
	return m.backend.BuildConnectionString(m.settings)
}

// Handle returns the native connection, connecting on the first call after
// Open. Later calls return the same connection.
func (m *Manager) Handle(ctx context.Context) (database.NativeConnection, error) {
	if m.handle != nil {
		return m.handle, nil
	}
	if m.settings == nil {
		return nil, database.ErrConnectionNotOpen
	}

	connString, err := m.ConnectionString()
	if err != nil {
		return nil, err
	}
	username, password := m.backend.Authentication(m.settings)

	debug.Debug("connecting", "driver", m.backend.DriverName(), "dsn", connString)
	handle, err := m.backend.Connect(ctx, connString, username, password)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", m.backend.DriverName(), err)
	}

	m.handle = handle
	m.state = Open
	debug.Info("connection opened", "driver", m.backend.DriverName())
	return handle, nil
}

// Close releases the connection and forgets the settings. Closing a closed
// manager is a no-op.
func (m *Manager) Close() error {
	var err error
	if m.handle != nil {
		err = m.release()
	}
	m.settings = nil
	m.state = Closed
	return err
}

func (m *Manager) release() error {
	handle := m.handle
	m.handle = nil

	if err := handle.Close(); err != nil {
		debug.Warn("closing connection failed", "driver", m.backend.DriverName(), "error", err)
		return fmt.Errorf("close %s: %w", m.backend.DriverName(), err)
	}
	debug.Info("connection closed", "driver", m.backend.DriverName())
	return nil
}
