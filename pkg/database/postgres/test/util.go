// Package test starts disposable postgres containers for store tests.
package test

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v4/stdlib" //nolint:revive

	"github.com/code-payments/code-multisig/pkg/retry"
	"github.com/code-payments/code-multisig/pkg/retry/backoff"
)

const (
	containerName     = "postgres"
	containerVersion  = "13"
	containerAutoKill = 120 * time.Second

	port     = 5432
	user     = "localtest"
	password = "localpassword"
	dbname   = "testdb"

	startupAttempts = 50
	startupInterval = 500 * time.Millisecond
)

// StartPostgresDB starts a postgres container and returns a client for it once
// it accepts connections. Each schema statement is executed before returning,
// so tests begin with their tables in place. closeFunc removes the container.
func StartPostgresDB(pool *dockertest.Pool, schema ...string) (db *sql.DB, closeFunc func(), err error) {
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: containerName,
		Tag:        containerVersion,
		Env: []string{
			"listen_addresses = '*'",
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbname,
		},
	}, func(config *docker.HostConfig) {
		// Stopped containers remove themselves.
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start resource")
	}

	closeFunc = func() {
		_ = pool.Purge(resource)
	}

	// Kill the container even if the test binary never calls closeFunc.
	_ = resource.Expire(uint(containerAutoKill.Seconds()))

	hostAndPort := resource.GetHostPort(fmt.Sprintf("%d/tcp", port))
	databaseUrl := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, hostAndPort, dbname)

	_, err = retry.Retry(
		func() error {
			db, err = sql.Open("pgx", databaseUrl)
			if err != nil {
				return err
			}
			if err := db.Ping(); err != nil {
				db.Close()
				return err
			}
			return nil
		},
		retry.Limit(startupAttempts),
		retry.Backoff(backoff.Constant(startupInterval), startupInterval),
	)
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "timed out waiting for postgres container to become available")
	}

	for _, statement := range schema {
		if _, err := db.Exec(statement); err != nil {
			db.Close()
			closeFunc()
			return nil, func() {}, errors.Wrap(err, "failed to apply schema")
		}
	}

	return db, closeFunc, nil
}
