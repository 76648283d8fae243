package ledger

import (
	"context"
)

type Store interface {
	// Get returns the account stored at address.
	//
	// Returns ErrAccountNotFound if the account has never been committed.
	Get(ctx context.Context, address string) (*Record, error)

	// GetBatch returns the stored accounts for the provided addresses. Addresses
	// without a stored account are omitted from the result.
	GetBatch(ctx context.Context, addresses ...string) ([]*Record, error)

	// GetAllByOwner returns every account owned by the provided program.
	//
	// Returns ErrAccountNotFound if no records are found.
	GetAllByOwner(ctx context.Context, owner string) ([]*Record, error)

	// Commit atomically writes every record. Each record's Version must match
	// the stored version, or be zero for an account that does not exist yet.
	// On success each record's Version and LastUpdatedAt are advanced.
	//
	// Returns ErrStaleVersion, and writes nothing, if any version does not match.
	Commit(ctx context.Context, records ...*Record) error
}
