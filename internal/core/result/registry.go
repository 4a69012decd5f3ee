package result

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/satishbabariya/fluent-query-go/internal/debug"
)

// Registry is an identity-keyed map of live result sources. Cursors track
// themselves on creation and release on Free.
//
// With leak detection on, a cursor that becomes unreachable without Free
// has its source finished by a runtime cleanup and a warning logged. The
// timing of that backstop is unspecified; Free is the release contract.
type Registry struct {
	mu     sync.Mutex
	live   map[uuid.UUID]database.ResultSource
	detect bool
	leaks  atomic.Int64
}

// NewRegistry creates a registry. detectLeaks enables the cleanup backstop.
func NewRegistry(detectLeaks bool) *Registry {
	return &Registry{
		live:   make(map[uuid.UUID]database.ResultSource),
		detect: detectLeaks,
	}
}

// DetectsLeaks reports whether the cleanup backstop is enabled.
func (r *Registry) DetectsLeaks() bool {
	return r.detect
}

// Track registers source and returns its identity.
func (r *Registry) Track(source database.ResultSource) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	r.live[id] = source
	r.mu.Unlock()

	return id
}

// Release removes id and reports whether it was tracked.
func (r *Registry) Release(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[id]; !ok {
		return false
	}
	delete(r.live, id)
	return true
}

// Live returns the number of tracked sources.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Leaks returns how many sources were reclaimed by the backstop.
func (r *Registry) Leaks() int64 {
	return r.leaks.Load()
}

// reclaim runs as the runtime cleanup of a cursor that was never freed.
func (r *Registry) reclaim(id uuid.UUID) {
	r.mu.Lock()
	source, ok := r.live[id]
	delete(r.live, id)
	r.mu.Unlock()

	if !ok {
		return
	}

	r.leaks.Add(1)
	err := source.Finish()
	debug.Warn("result cursor was not freed", "cursor", id, "finish_error", err)
}
