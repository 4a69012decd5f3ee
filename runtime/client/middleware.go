package client

import (
	"context"
	"log/slog"
	"time"
)

// QueryEvent represents a query execution event
type QueryEvent struct {
	Op       string
	Query    string
	Args     []any
	Duration time.Duration
	Error    error
	Start    time.Time
	End      time.Time
}

// Middleware is a function that intercepts queries
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// Use adds a middleware to the chain
func (d *Driver) Use(middleware Middleware) {
	d.middlewares = append(d.middlewares, middleware)
}

// run executes exec through the middleware chain
func (d *Driver) run(ctx context.Context, op, query string, args []any, exec func() error) error {
	if len(d.middlewares) == 0 {
		return exec()
	}

	event := &QueryEvent{
		Op:    op,
		Query: query,
		Args:  args,
		Start: time.Now(),
	}

	var next func() error
	index := 0

	next = func() error {
		if index >= len(d.middlewares) {
			err := exec()
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Error = err
			return err
		}

		middleware := d.middlewares[index]
		index++
		return middleware(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware creates a middleware that logs queries
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		logger.DebugContext(ctx, "executing query", "op", event.Op, "query", event.Query)
		err := next()
		if err != nil {
			logger.ErrorContext(ctx, "query failed", "op", event.Op, "query", event.Query, "error", err)
		} else {
			logger.DebugContext(ctx, "query completed", "op", event.Op, "duration", event.Duration)
		}
		return err
	}
}

// TimingMiddleware creates a middleware that measures query execution time
func TimingMiddleware(onTiming func(query string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.Query, event.Duration)
		}
		return err
	}
}
