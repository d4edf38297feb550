package ms

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"tsdata-bench/bench"

	_ "github.com/microsoft/go-mssqldb"
	log "github.com/sirupsen/logrus"
)

// DSN builds a sqlserver:// connection URL. Encryption is negotiated but the
// server certificate is trusted, like a lab setup with a self-signed cert.
func DSN(c bench.ConnConfig) string {
	port := c.Port
	if port == 0 {
		port = 1433
	}
	query := url.Values{}
	if c.Database != "" {
		query.Set("database", c.Database)
	}
	query.Set("encrypt", "true")
	query.Set("TrustServerCertificate", "true")
	query.Set("dial timeout", "30")

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func Connect(c bench.ConnConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", DSN(c))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.WithFields(log.Fields{"host": c.Host, "database": c.Database}).Debugln("Connected to SQL Server")
	return db, nil
}
