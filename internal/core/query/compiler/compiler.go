// Package compiler turns a domain.Query into a domain.CompiledQuery.
//
// Compilation runs in two passes. The render pass writes each clause's SQL
// shape with a directive (%%s, %%i, ...) in place of every dynamic value. The
// scan pass then locates the directives and substitutes either the inline
// literal (Direct) or a positional placeholder (Prepare).
package compiler

import (
	"fmt"
	"runtime"
	"sync"
	"weak"

	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
)

// Stats represents compiled query cache statistics
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

type cacheKey struct {
	query weak.Pointer[domain.Query]
	mode  domain.Mode
}

// Compiler compiles queries for one dialect. Results are cached per
// (*domain.Query, Mode) for as long as the query is reachable.
type Compiler struct {
	dialect Dialect

	mu    sync.RWMutex
	cache map[cacheKey]*domain.CompiledQuery
	stats Stats
}

// NewCompiler creates a new compiler for dialect.
func NewCompiler(dialect Dialect) *Compiler {
	return &Compiler{
		dialect: dialect,
		cache:   make(map[cacheKey]*domain.CompiledQuery),
	}
}

// Dialect returns the dialect the compiler renders for.
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

// Compile compiles q in mode. Once an entry exists for (q, mode) it is
// returned as is and never recomputed.
func (c *Compiler) Compile(q *domain.Query, mode domain.Mode) (*domain.CompiledQuery, error) {
	if q == nil {
		return nil, ErrNilQuery
	}

	key := cacheKey{query: weak.Make(q), mode: mode}

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.stats.Hits++
		c.mu.Unlock()
		return cached, nil
	}

	compiled, err := c.compile(q, mode)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have stored the entry meanwhile; keep theirs.
	if cached, ok := c.cache[key]; ok {
		c.stats.Hits++
		return cached, nil
	}
	c.stats.Misses++
	c.cache[key] = compiled
	runtime.AddCleanup(q, c.evict, key)

	return compiled, nil
}

// Text compiles q in Direct mode and returns the SQL string.
func (c *Compiler) Text(q *domain.Query) (string, error) {
	compiled, err := c.Compile(q, domain.Direct)
	if err != nil {
		return "", err
	}
	return compiled.Render(c.dialect.PlaceholderToken), nil
}

// Stats returns cache statistics.
func (c *Compiler) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = len(c.cache)
	return stats
}

func (c *Compiler) compile(q *domain.Query, mode domain.Mode) (*domain.CompiledQuery, error) {
	if q.Len() == 0 {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidClause)
	}

	text, values, err := c.render(q)
	if err != nil {
		return nil, err
	}

	tokens, err := c.scan(text, values, mode)
	if err != nil {
		return nil, err
	}

	return domain.NewCompiledQuery(mode, tokens, values), nil
}

func (c *Compiler) evict(key cacheKey) {
	c.mu.Lock()
	delete(c.cache, key)
	c.mu.Unlock()
}
