package pg

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"tsdata-bench/bench"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func port(c bench.ConnConfig) int {
	if c.Port == 0 {
		return 5432
	}
	return c.Port
}

// DSN builds a postgres:// connection URL with escaped credentials.
func DSN(c bench.ConnConfig) string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	query := url.Values{}
	query.Set("sslmode", sslmode)

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, port(c)),
		Path:     "/" + c.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func Connect(c bench.ConnConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(DSN(c))
	if err != nil {
		return nil, err
	}
	// Phases run one after another; a single connection is all they use.
	config.MaxConns = 2
	config.MinConns = 1

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.WithFields(log.Fields{"host": c.Host, "port": port(c), "database": c.Database}).Debugln("Connected to PostgreSQL")
	return pool, nil
}
