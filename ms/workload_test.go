package ms

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"tsdata-bench/bench"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(query string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                              { return nil }
func (stubConn) Begin() (driver.Tx, error)                 { return nil, errors.New("not supported") }

func init() {
	sql.Register("mssql-stub", stubDriver{})
}

func TestCloseReportsConnError(t *testing.T) {
	db, err := sql.Open("mssql-stub", "")
	require.NoError(t, err)
	w := New(db)

	w.conn, err = db.Conn(context.Background())
	require.NoError(t, err)
	require.NoError(t, w.conn.Close())

	err = w.Close()
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestCloseWithoutPrepare(t *testing.T) {
	db, err := sql.Open("mssql-stub", "")
	require.NoError(t, err)
	assert.NoError(t, New(db).Close())
}

func TestPhaseOrder(t *testing.T) {
	var ops []bench.Op
	for _, ph := range New(nil).Phases() {
		ops = append(ops, ph.Op)
	}
	assert.Equal(t, []bench.Op{bench.OpInsert, bench.OpBatchUpdate, bench.OpUpdate, bench.OpSelect}, ops)
}
