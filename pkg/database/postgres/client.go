package pg

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"

	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
)

const (
	defaultPort    = 5432
	connectTimeout = 10 * time.Second

	// The New Relic instrumented pgx driver, so queries show up as datastore
	// segments under the active transaction.
	driverName = "nrpgx"
)

type Config struct {
	User               string
	Host               string
	Password           string
	Port               int
	DbName             string
	MaxOpenConnections int
	MaxIdleConnections int
}

// New opens a connection pool described by config using password
// authentication, and verifies it with a ping.
func New(config *Config) (*sql.DB, error) {
	if config.Host == "" || config.User == "" || config.DbName == "" {
		return nil, errors.New("postgres host, user and database name are required")
	}

	db, err := sql.Open(driverName, config.dsn())
	if err != nil {
		return nil, err
	}

	if config.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(config.MaxOpenConnections)
	}
	if config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(config.MaxIdleConnections)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to reach postgres at %s", config.Host)
	}
	return db, nil
}

// dsn escapes credentials, which may contain URL reserved characters.
func (c *Config) dsn() string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, port),
		Path:     "/" + c.DbName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
