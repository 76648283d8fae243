package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/retry"
	"github.com/code-payments/code-multisig/pkg/retry/backoff"
)

const (
	maxTxAttempts = 3
	txRetryDelay  = 20 * time.Millisecond
)

// ExecuteInTx runs fn within a new transaction at the requested isolation
// level. The transaction commits when fn succeeds and rolls back otherwise.
//
// Serialization failures and deadlocks restart the transaction from scratch,
// so fn must not leave state behind between attempts.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	if isolation == sql.LevelDefault {
		isolation = sql.LevelReadCommitted // Postgres default
	}

	_, err := retry.Retry(
		func() error {
			return executeOnce(ctx, db, isolation, fn)
		},
		retry.Limit(maxTxAttempts),
		retry.Context(ctx),
		retry.Matching(isRetriableTxError),
		retry.BackoffWithJitter(backoff.Constant(txRetryDelay), txRetryDelay, 0.5),
	)
	return err
}

func executeOnce(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: isolation,
	})
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		// Rollback releases the connection back to the pool.
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}
