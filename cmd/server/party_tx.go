package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dErrors "party/pkg/domain-errors"
	txcontext "party/pkg/platform/tx"
)

const defaultPartyTxTimeout = 5 * time.Second

// partyPostgresTx runs a unit of work in one database transaction. Stores
// pick the transaction up from the context passed to fn.
type partyPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newPartyPostgresTx(db *sql.DB, timeout time.Duration) *partyPostgresTx {
	return &partyPostgresTx{db: db, timeout: timeout}
}

func (t *partyPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultPartyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin party tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit party tx: %w", err)
	}
	return nil
}
