package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
)

// ErrServerTooOld is returned by CheckServerVersion.
var ErrServerTooOld = errors.New("server version is older than supported")

// ServerVersion queries the backend for its version.
func (d *Driver) ServerVersion(ctx context.Context) (*version.Version, error) {
	prober, ok := d.Backend().(database.VersionProber)
	if !ok {
		return nil, fmt.Errorf("backend %q cannot report its version: %w", d.Backend().DriverName(), database.ErrUnsupportedOperation)
	}

	cursor, err := d.Execute(ctx, domain.NewQuery(domain.NewRaw(prober.VersionQuery())))
	if err != nil {
		return nil, err
	}
	defer cursor.Free()

	raw, ok, err := cursor.Single()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("backend %q returned no version", d.Backend().DriverName())
	}

	return ParseServerVersion(fmt.Sprint(raw))
}

// ParseServerVersion parses a version string as reported by a server,
// ignoring any build description after the first space.
func ParseServerVersion(raw string) (*version.Version, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty server version")
	}

	v, err := version.NewVersion(fields[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse server version %q: %w", raw, err)
	}
	return v, nil
}

// CheckServerVersion verifies the server is not older than the backend's
// minimum supported version.
func (d *Driver) CheckServerVersion(ctx context.Context) (*version.Version, error) {
	current, err := d.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}

	prober := d.Backend().(database.VersionProber)
	minimum, err := version.NewVersion(prober.MinimumVersion())
	if err != nil {
		return nil, err
	}

	// Compare release segments only; distribution suffixes parse as
	// prereleases and would otherwise sort below the release.
	if current.Core().LessThan(minimum) {
		return current, fmt.Errorf("%s %s < %s: %w", d.Backend().DriverName(), current, minimum, ErrServerTooOld)
	}
	return current, nil
}
