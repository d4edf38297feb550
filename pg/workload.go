package pg

import (
	"context"
	"fmt"

	"tsdata-bench/bench"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var columns = []string{"id", "created", "value"}

// Workload loads, updates and scans the tsdata table through pgx.
type Workload struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Workload {
	return &Workload{pool: pool}
}

func (w *Workload) Name() string { return bench.Postgres }

func (w *Workload) Close() error {
	w.pool.Close()
	return nil
}

func (w *Workload) Prepare(ctx context.Context) error {
	_, err := w.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tsdata (
			id bigint PRIMARY KEY,
			created timestamptz NOT NULL,
			value double precision NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (w *Workload) Reset(ctx context.Context) error {
	_, err := w.pool.Exec(ctx, "TRUNCATE TABLE tsdata")
	return err
}

func (w *Workload) Phases() []bench.Phase {
	return []bench.Phase{
		{Op: bench.OpInsert, Run: w.insert},
		{Op: bench.OpBatchUpdate, Run: w.batchUpdate},
		{Op: bench.OpUpdate, Run: w.update},
		{Op: bench.OpSelect, Run: w.selectAll},
	}
}

func copyRows(rows []bench.Row) pgx.CopyFromSource {
	return pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return []any{rows[i].ID, rows[i].Created, rows[i].Value}, nil
	})
}

func (w *Workload) insert(ctx context.Context, n int) (int, error) {
	rows := bench.GenerateRows(n, bench.InsertValue)
	copied, err := w.pool.CopyFrom(ctx, pgx.Identifier{"tsdata"}, columns, copyRows(rows))
	return int(copied), err
}

// batchUpdate queues one UPDATE per row and sends them as a single batch.
func (w *Workload) batchUpdate(ctx context.Context, n int) (int, error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := 0; i < n; i++ {
		batch.Queue("UPDATE tsdata SET value = $1 WHERE id = $2", bench.BatchUpdateValue(i), int64(i))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("send batch: %w", err)
	}
	return n, tx.Commit(ctx)
}

// update copies new values into a temporary table and joins it onto tsdata.
func (w *Workload) update(ctx context.Context, n int) (int, error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		CREATE TEMP TABLE tsdatatemp (
			id bigint NOT NULL,
			value double precision NOT NULL
		) ON COMMIT DROP
	`)
	if err != nil {
		return 0, fmt.Errorf("create temp table: %w", err)
	}

	rows := bench.GenerateRows(n, bench.UpdateValue)
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"tsdatatemp"}, []string{"id", "value"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{rows[i].ID, rows[i].Value}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("copy temp rows: %w", err)
	}

	tag, err := tx.Exec(ctx, "UPDATE tsdata d SET value = s.value FROM tsdatatemp s WHERE d.id = s.id")
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), tx.Commit(ctx)
}

func (w *Workload) selectAll(ctx context.Context, n int) (int, error) {
	rows, err := w.pool.Query(ctx, "SELECT id, created, value FROM tsdata")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	out := make([]bench.Row, 0, n)
	for rows.Next() {
		var r bench.Row
		if err := rows.Scan(&r.ID, &r.Created, &r.Value); err != nil {
			return len(out), err
		}
		out = append(out, r)
	}
	return len(out), rows.Err()
}
