// Package result provides the forward-only cursor over a backend result
// stream and the registry that tracks live cursors.
package result

import (
	"context"
	"errors"
	"iter"
	"runtime"

	"github.com/google/uuid"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
)

// ErrCursorFreed is returned by every cursor operation after Free.
var ErrCursorFreed = errors.New("result cursor is freed")

// Row is one record keyed by column name.
type Row = map[string]any

// Cursor is a forward-only iterator over a ResultSource. It owns the source
// and releases it on Free. A Cursor is not safe for concurrent use.
type Cursor struct {
	id       uuid.UUID
	source   database.ResultSource
	registry *Registry
	cleanup  runtime.Cleanup
	guarded  bool
	freed    bool
}

// NewCursor wraps source. A nil registry leaves the cursor untracked.
func NewCursor(source database.ResultSource, registry *Registry) *Cursor {
	c := &Cursor{source: source, registry: registry}
	if registry == nil {
		c.id = uuid.New()
		return c
	}

	c.id = registry.Track(source)
	if registry.DetectsLeaks() {
		c.cleanup = runtime.AddCleanup(c, registry.reclaim, c.id)
		c.guarded = true
	}
	return c
}

// ID returns the cursor identity.
func (c *Cursor) ID() uuid.UUID {
	return c.id
}

// Freed reports whether Free has been called.
func (c *Cursor) Freed() bool {
	return c.freed
}

// Columns returns the result column names.
func (c *Cursor) Columns() ([]string, error) {
	if c.freed {
		return nil, ErrCursorFreed
	}
	return c.source.Columns()
}

// One fetches the next row, or nil at exhaustion.
func (c *Cursor) One() (Row, error) {
	if c.freed {
		return nil, ErrCursorFreed
	}
	return c.source.FetchAssociative()
}

// All fetches every remaining row in order. The cursor is exhausted
// afterwards.
func (c *Cursor) All() ([]Row, error) {
	var rows []Row
	err := c.Each(func(row Row) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Single fetches the first column of the next row. ok is false at
// exhaustion.
func (c *Cursor) Single() (value any, ok bool, err error) {
	if c.freed {
		return nil, false, ErrCursorFreed
	}

	row, err := c.source.FetchRow()
	if err != nil || row == nil {
		return nil, false, err
	}
	if len(row) == 0 {
		return nil, true, nil
	}
	return row[0], true, nil
}

// Each calls fn once per remaining row in fetch order. It stops at the
// first error from fn or the source.
func (c *Cursor) Each(fn func(Row) error) error {
	for row, err := range c.Rows() {
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// Rows iterates the remaining rows. A fetch error is yielded once and ends
// the iteration.
func (c *Cursor) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for {
			row, err := c.One()
			if err != nil {
				yield(nil, err)
				return
			}
			if row == nil {
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Repeat re-executes the originating statement and rewinds the cursor to
// the first row.
func (c *Cursor) Repeat(ctx context.Context) (*Cursor, error) {
	if c.freed {
		return nil, ErrCursorFreed
	}
	if err := c.source.Execute(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Count drains the remaining rows and returns how many there were. The
// cursor is exhausted afterwards; call Repeat to read the rows again.
func (c *Cursor) Count() (int, error) {
	if c.freed {
		return 0, ErrCursorFreed
	}
	rows, err := c.source.FetchAll()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Free releases the source and untracks the cursor. Calling it again is a
// no-op.
func (c *Cursor) Free() error {
	if c.freed {
		return nil
	}
	c.freed = true

	if c.guarded {
		c.cleanup.Stop()
	}
	if c.registry != nil {
		c.registry.Release(c.id)
	}
	return c.source.Finish()
}
