package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/code-multisig/pkg/ledger"
)

type store struct {
	db *sqlx.DB
}

func New(db *sql.DB) ledger.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Get implements ledger.Store.Get
func (s *store) Get(ctx context.Context, address string) (*ledger.Record, error) {
	model, err := dbGetAccount(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromAccountModel(model), nil
}

// GetBatch implements ledger.Store.GetBatch
func (s *store) GetBatch(ctx context.Context, addresses ...string) ([]*ledger.Record, error) {
	models, err := dbGetAccountBatch(ctx, s.db, addresses...)
	if err != nil {
		return nil, err
	}

	res := make([]*ledger.Record, len(models))
	for i, model := range models {
		res[i] = fromAccountModel(model)
	}
	return res, nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*ledger.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}

	res := make([]*ledger.Record, len(models))
	for i, model := range models {
		res[i] = fromAccountModel(model)
	}
	return res, nil
}

// Commit implements ledger.Store.Commit
func (s *store) Commit(ctx context.Context, records ...*ledger.Record) error {
	seen := make(map[string]struct{}, len(records))
	models := make([]*accountModel, len(records))
	for i, record := range records {
		if _, ok := seen[record.Address]; ok {
			return ledger.ErrStaleVersion
		}
		seen[record.Address] = struct{}{}

		model, err := toAccountModel(record)
		if err != nil {
			return err
		}
		models[i] = model
	}

	if err := dbCommit(ctx, s.db, models); err != nil {
		return err
	}

	for i, model := range models {
		fromAccountModel(model).CopyTo(records[i])
	}
	return nil
}
