package pg

import (
	"testing"

	"tsdata-bench/bench"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(bench.ConnConfig{Host: "db1", User: "bench", Password: "p@ss:w/rd#?", Database: "tsdata"})

	config, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db1", config.ConnConfig.Host)
	assert.Equal(t, uint16(5432), config.ConnConfig.Port)
	assert.Equal(t, "bench", config.ConnConfig.User)
	assert.Equal(t, "p@ss:w/rd#?", config.ConnConfig.Password)
	assert.Equal(t, "tsdata", config.ConnConfig.Database)
	assert.Nil(t, config.ConnConfig.TLSConfig)
}

func TestDSNPortAndSSLMode(t *testing.T) {
	dsn := DSN(bench.ConnConfig{Host: "localhost", Port: 6432, User: "u", Password: "p#ss/w", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")

	config, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	assert.Equal(t, uint16(6432), config.ConnConfig.Port)
	assert.Equal(t, "p#ss/w", config.ConnConfig.Password)
}
