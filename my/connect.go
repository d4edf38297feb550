package my

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tsdata-bench/bench"

	_ "github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"
)

func Connect(c bench.ConnConfig) (*sql.DB, error) {
	port := c.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&interpolateParams=true&clientFoundRows=true&timeout=30s",
		c.User, c.Password, c.Host, port, c.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.WithFields(log.Fields{"host": c.Host, "port": port, "database": c.Database}).Debugln("Connected to MySQL")
	return db, nil
}
