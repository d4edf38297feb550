package kv

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tsdata-bench/bench"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTemp(t *testing.T) *Workload {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tsdata.db"))
	require.NoError(t, err)
	w := New(db)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestCodecRoundTrip(t *testing.T) {
	r := bench.Row{ID: 42, Created: time.Unix(1000, 500).UTC(), Value: 4.2}
	got, err := DecodeRow(EncodeRow(nil, r))
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, r.Created.Equal(got.Created))
	assert.Equal(t, r.Value, got.Value)

	_, err = DecodeRow([]byte{0x91, 0x01})
	assert.Error(t, err)
}

func TestKeyOrder(t *testing.T) {
	assert.Less(t, string(Key(9)), string(Key(10)))
	assert.Len(t, Key(1), 8)
}

func TestPhases(t *testing.T) {
	w := openTemp(t)
	ctx := context.Background()
	require.NoError(t, w.Prepare(ctx))
	require.NoError(t, w.Reset(ctx))

	phases := w.Phases()
	require.Len(t, phases, 3)
	assert.Equal(t, bench.OpInsert, phases[0].Op)
	assert.Equal(t, bench.OpUpdate, phases[1].Op)
	assert.Equal(t, bench.OpSelect, phases[2].Op)

	n, err := phases[0].Run(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = phases[1].Run(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = phases[2].Run(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	err = w.db.View(func(tx *bolt.Tx) error {
		r, err := DecodeRow(tx.Bucket(bucket).Get(Key(7)))
		require.NoError(t, err)
		assert.Equal(t, bench.UpdateValue(7), r.Value)
		assert.True(t, bench.Created.Equal(r.Created))
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, w.Reset(ctx))
	n, err = phases[2].Run(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunTrials(t *testing.T) {
	w := openTemp(t)
	params := bench.BenchParams{Rows: 50, Trials: 4, Warmup: 1, DropHigh: 1}

	report, err := bench.RunTrials(context.Background(), w, params)
	require.NoError(t, err)
	assert.Equal(t, bench.Bolt, report.Backend)

	for _, s := range bench.Summarize(report, params.Policy()) {
		assert.NoError(t, s.Wall.Err)
		assert.GreaterOrEqual(t, s.Wall.Mean, 0.0)
	}
}

func TestOpenNeedsPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
