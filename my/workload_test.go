package my

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"tsdata-bench/bench"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedExec struct {
	query string
	args  []any
}

type recorder struct {
	execs  []recordedExec
	failAt int
}

func (r *recorder) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	r.execs = append(r.execs, recordedExec{query: query, args: args})
	if r.failAt > 0 && len(r.execs) == r.failAt {
		return nil, errors.New("packet too large")
	}
	return nil, nil
}

func TestInsertBatches(t *testing.T) {
	rows := bench.GenerateRows(1201, bench.InsertValue)
	rec := &recorder{}

	require.NoError(t, insertBatches(context.Background(), rec, "tsdata", []string{"id", "created", "value"}, rows))
	require.Len(t, rec.execs, 3)

	first := rec.execs[0]
	assert.True(t, strings.HasPrefix(first.query, "INSERT INTO tsdata (id, created, value) VALUES (?,?,?),(?,?,?)"))
	assert.Equal(t, batchSize, strings.Count(first.query, "(?,?,?)"))
	assert.Len(t, first.args, batchSize*3)
	assert.Equal(t, []any{int64(0), bench.Created, 0.0}, first.args[:3])

	last := rec.execs[2]
	assert.Equal(t, 201, strings.Count(last.query, "(?,?,?)"))
	assert.Equal(t, int64(1000), last.args[0])
}

func TestInsertBatchesTwoColumns(t *testing.T) {
	rows := bench.GenerateRows(3, bench.UpdateValue)
	rec := &recorder{}

	require.NoError(t, insertBatches(context.Background(), rec, "tsdatatemp", []string{"id", "value"}, rows))
	require.Len(t, rec.execs, 1)
	assert.Equal(t, "INSERT INTO tsdatatemp (id, value) VALUES (?,?),(?,?),(?,?)", rec.execs[0].query)
	assert.Equal(t, []any{int64(0), bench.UpdateValue(0), int64(1), bench.UpdateValue(1), int64(2), bench.UpdateValue(2)}, rec.execs[0].args)
}

func TestInsertBatchesError(t *testing.T) {
	rows := bench.GenerateRows(1000, bench.InsertValue)
	rec := &recorder{failAt: 2}

	err := insertBatches(context.Background(), rec, "tsdata", []string{"id", "created", "value"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert batch at 500")
}
