package my

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tsdata-bench/bench"
)

// batchSize bounds rows per multi-row INSERT so statements stay under max_allowed_packet.
const batchSize = 500

// Workload loads, updates and scans the tsdata table over database/sql.
type Workload struct {
	db *sql.DB
}

func New(db *sql.DB) *Workload {
	return &Workload{db: db}
}

func (w *Workload) Name() string { return bench.MySQL }

func (w *Workload) Close() error { return w.db.Close() }

func (w *Workload) Prepare(ctx context.Context) error {
	_, err := w.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tsdata (
			id BIGINT PRIMARY KEY,
			created DATETIME NOT NULL,
			value DOUBLE NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (w *Workload) Reset(ctx context.Context) error {
	_, err := w.db.ExecContext(ctx, "TRUNCATE TABLE tsdata")
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

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertBatches writes rows with multi-row INSERTs of up to batchSize rows.
func insertBatches(ctx context.Context, db execer, table string, cols []string, rows []bench.Row) error {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		var query strings.Builder
		query.WriteString(head)
		vals := make([]any, 0, (end-i)*len(cols))
		for j := i; j < end; j++ {
			if j > i {
				query.WriteByte(',')
			}
			query.WriteString(placeholder)
			vals = append(vals, rowArgs(rows[j], cols)...)
		}

		if _, err := db.ExecContext(ctx, query.String(), vals...); err != nil {
			return fmt.Errorf("insert batch at %d: %w", i, err)
		}
	}
	return nil
}

func rowArgs(r bench.Row, cols []string) []any {
	args := make([]any, len(cols))
	for i, c := range cols {
		switch c {
		case "id":
			args[i] = r.ID
		case "created":
			args[i] = r.Created
		case "value":
			args[i] = r.Value
		}
	}
	return args
}

func (w *Workload) insert(ctx context.Context, n int) (int, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows := bench.GenerateRows(n, bench.InsertValue)
	if err := insertBatches(ctx, tx, "tsdata", []string{"id", "created", "value"}, rows); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// batchUpdate runs one prepared UPDATE per row inside a single transaction.
func (w *Workload) batchUpdate(ctx context.Context, n int) (int, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE tsdata SET value = ? WHERE id = ?")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, bench.BatchUpdateValue(i), int64(i)); err != nil {
			return i, fmt.Errorf("update id %d: %w", i, err)
		}
	}
	return n, tx.Commit()
}

// update fills a session temporary table and joins it onto tsdata. A
// transaction pins one connection, so the temporary table stays visible.
func (w *Workload) update(ctx context.Context, n int) (int, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TEMPORARY TABLE IF EXISTS tsdatatemp"); err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx, "CREATE TEMPORARY TABLE tsdatatemp (id BIGINT NOT NULL PRIMARY KEY, value DOUBLE NOT NULL)")
	if err != nil {
		return 0, fmt.Errorf("create temp table: %w", err)
	}

	rows := bench.GenerateRows(n, bench.UpdateValue)
	if err := insertBatches(ctx, tx, "tsdatatemp", []string{"id", "value"}, rows); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, "UPDATE tsdata d JOIN tsdatatemp s ON d.id = s.id SET d.value = s.value")
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), tx.Commit()
}

func (w *Workload) selectAll(ctx context.Context, n int) (int, error) {
	rows, err := w.db.QueryContext(ctx, "SELECT id, created, value FROM tsdata")
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
