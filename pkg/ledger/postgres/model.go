package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/code-multisig/pkg/ledger"

	pgutil "github.com/code-payments/code-multisig/pkg/database/postgres"
)

const (
	accountTableName = "multisig__ledger_account"
)

type accountModel struct {
	Id            sql.NullInt64 `db:"id"`
	Address       string        `db:"address"`
	Owner         string        `db:"owner"`
	Lamports      int64         `db:"lamports"`
	Data          []byte        `db:"data"`
	Executable    bool          `db:"executable"`
	Version       int64         `db:"version"`
	LastUpdatedAt time.Time     `db:"last_updated_at"`
}

func toAccountModel(obj *ledger.Record) (*accountModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &accountModel{
		Id:            sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      int64(obj.Lamports),
		Data:          data,
		Executable:    obj.Executable,
		Version:       int64(obj.Version),
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromAccountModel(obj *accountModel) *ledger.Record {
	return &ledger.Record{
		Id:            uint64(obj.Id.Int64),
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      uint64(obj.Lamports),
		Data:          obj.Data,
		Executable:    obj.Executable,
		Version:       uint64(obj.Version),
		LastUpdatedAt: obj.LastUpdatedAt.UTC(),
	}
}

// dbSave writes the model within tx, guarded by its expected version. A new
// account (version zero) must not exist yet, which the unique address constraint
// enforces.
func (m *accountModel) dbSave(ctx context.Context, tx *sqlx.Tx) error {
	m.LastUpdatedAt = time.Now().UTC()

	var row *sqlx.Row
	if m.Version == 0 {
		query := `INSERT INTO ` + accountTableName + `
			(address, owner, lamports, data, executable, version, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, 1, $6)
			RETURNING id, address, owner, lamports, data, executable, version, last_updated_at`

		row = tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.Data,
			m.Executable,
			m.LastUpdatedAt,
		)
	} else {
		query := `UPDATE ` + accountTableName + `
			SET owner = $2, lamports = $3, data = $4, executable = $5, version = $6, last_updated_at = $7
			WHERE address = $1 AND version = $8
			RETURNING id, address, owner, lamports, data, executable, version, last_updated_at`

		row = tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.Data,
			m.Executable,
			m.Version+1,
			m.LastUpdatedAt,
			m.Version,
		)
	}

	err := row.StructScan(m)
	err = pgutil.CheckUniqueViolation(err, ledger.ErrStaleVersion)
	return pgutil.CheckNoRows(err, ledger.ErrStaleVersion)
}

func dbCommit(ctx context.Context, db *sqlx.DB, models []*accountModel) error {
	saved := make([]accountModel, len(models))
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		// Work on copies, a retried transaction starts from the original versions.
		for i, model := range models {
			saved[i] = *model
			if err := saved[i].dbSave(ctx, tx); err != nil {
				if err == ledger.ErrStaleVersion {
					return err
				}
				return errors.Wrapf(err, "failed to save account %s", model.Address)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range models {
		*models[i] = saved[i]
	}
	return nil
}

func dbGetAccount(ctx context.Context, db *sqlx.DB, address string) (*accountModel, error) {
	res := &accountModel{}

	query := `SELECT
		id, address, owner, lamports, data, executable, version, last_updated_at
		FROM ` + accountTableName + `
		WHERE address = $1
	`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAccountBatch(ctx context.Context, db *sqlx.DB, addresses ...string) ([]*accountModel, error) {
	res := []*accountModel{}
	if len(addresses) == 0 {
		return res, nil
	}

	query, args, err := sqlx.In(`SELECT
		id, address, owner, lamports, data, executable, version, last_updated_at
		FROM `+accountTableName+`
		WHERE address IN (?)
		ORDER BY id ASC
	`, addresses)
	if err != nil {
		return nil, err
	}

	err = db.SelectContext(ctx, &res, db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string) ([]*accountModel, error) {
	res := []*accountModel{}

	query := `SELECT
		id, address, owner, lamports, data, executable, version, last_updated_at
		FROM ` + accountTableName + `
		WHERE owner = $1
		ORDER BY id ASC
	`

	err := db.SelectContext(ctx, &res, query, owner)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return res, nil
}
