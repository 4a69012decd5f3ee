package client

import (
	"context"
	"fmt"

	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
)

// TransactionFunc is a function that runs within a transaction
type TransactionFunc func(d *Driver) error

// Transaction runs fn between BEGIN and COMMIT on the driver's session. If
// fn returns an error or panics, the transaction is rolled back.
//
// The statements are passed through to the backend as is; there is no
// nesting or isolation control.
func (d *Driver) Transaction(ctx context.Context, fn TransactionFunc) error {
	if _, err := d.Do(ctx, domain.NewQuery(domain.NewRaw("BEGIN"))); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	rollback := func() error {
		_, err := d.Do(ctx, domain.NewQuery(domain.NewRaw("ROLLBACK")))
		return err
	}

	// Defer rollback in case of panic
	defer func() {
		if p := recover(); p != nil {
			_ = rollback()
			panic(p)
		}
	}()

	if err := fn(d); err != nil {
		if rbErr := rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if _, err := d.Do(ctx, domain.NewQuery(domain.NewRaw("COMMIT"))); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
