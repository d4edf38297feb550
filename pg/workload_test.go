package pg

import (
	"testing"

	"tsdata-bench/bench"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyRows(t *testing.T) {
	src := copyRows(bench.GenerateRows(3, bench.InsertValue))

	var got [][]any
	for src.Next() {
		vals, err := src.Values()
		require.NoError(t, err)
		got = append(got, vals)
	}
	require.NoError(t, src.Err())
	require.Len(t, got, 3)
	assert.Equal(t, []any{int64(2), bench.Created, bench.InsertValue(2)}, got[2])
	assert.Len(t, got[0], len(columns))
}

func TestPhaseOrder(t *testing.T) {
	var ops []bench.Op
	for _, ph := range New(nil).Phases() {
		ops = append(ops, ph.Op)
	}
	assert.Equal(t, []bench.Op{bench.OpInsert, bench.OpBatchUpdate, bench.OpUpdate, bench.OpSelect}, ops)
}
