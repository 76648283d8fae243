package postgres

import (
	"database/sql"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-multisig/pkg/ledger"
	"github.com/code-payments/code-multisig/pkg/ledger/tests"

	postgrestest "github.com/code-payments/code-multisig/pkg/database/postgres/test"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	// Used for testing ONLY, the table and migrations are external to this repository
	tableCreate = `
		CREATE TABLE multisig__ledger_account(
			id SERIAL NOT NULL PRIMARY KEY,

			address TEXT NOT NULL,
			owner TEXT NOT NULL,
			lamports BIGINT NOT NULL CHECK (lamports >= 0),
			data BYTEA NOT NULL,
			executable BOOL NOT NULL,

			version BIGINT NOT NULL CHECK (version > 0),
			last_updated_at TIMESTAMP WITH TIME ZONE NOT NULL,

			CONSTRAINT multisig__ledger_account__uniq__address UNIQUE (address)
		);

		CREATE INDEX multisig__ledger_account__owner ON multisig__ledger_account(owner);
	`

	// Used for testing ONLY, the table and migrations are external to this repository
	tableDestroy = `
		DROP TABLE multisig__ledger_account;
	`
)

var (
	testStore ledger.Store
	teardown  func()
)

func TestMain(m *testing.M) {
	log := logrus.StandardLogger()

	testPool, err := dockertest.NewPool("")
	if err != nil {
		log.WithError(err).Error("Error creating docker pool")
		os.Exit(1)
	}

	db, cleanUpFunc, err := postgrestest.StartPostgresDB(testPool, tableCreate)
	if err != nil {
		log.WithError(err).Error("Error starting postgres image")
		os.Exit(1)
	}
	defer db.Close()

	testStore = New(db)
	teardown = func() {
		if pc := recover(); pc != nil {
			cleanUpFunc()
			panic(pc)
		}

		if err := resetTestTables(db); err != nil {
			logrus.StandardLogger().WithError(err).Error("Error resetting test tables")
			cleanUpFunc()
			os.Exit(1)
		}
	}

	code := m.Run()
	cleanUpFunc()
	os.Exit(code)
}

func TestLedgerPostgresStore(t *testing.T) {
	tests.RunTests(t, testStore, teardown)
}

func resetTestTables(db *sql.DB) error {
	for _, statement := range []string{tableDestroy, tableCreate} {
		if _, err := db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}
