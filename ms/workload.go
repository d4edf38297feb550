package ms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tsdata-bench/bench"

	mssql "github.com/microsoft/go-mssqldb"
)

// Workload drives SQL Server through one pinned session, so the #tsdatatemp
// temporary table created in Prepare lives for the whole run.
type Workload struct {
	db   *sql.DB
	conn *sql.Conn
}

func New(db *sql.DB) *Workload {
	return &Workload{db: db}
}

func (w *Workload) Name() string { return bench.MSSQL }

func (w *Workload) Close() error {
	var connErr error
	if w.conn != nil {
		connErr = w.conn.Close()
	}
	return errors.Join(connErr, w.db.Close())
}

func (w *Workload) Prepare(ctx context.Context) error {
	conn, err := w.db.Conn(ctx)
	if err != nil {
		return err
	}
	w.conn = conn

	stmts := []string{
		`IF OBJECT_ID('tsdata', 'U') IS NULL
			CREATE TABLE tsdata (id int NOT NULL PRIMARY KEY, created datetime2(0) NOT NULL, value float NOT NULL)`,
		"CREATE TABLE #tsdatatemp (id bigint NOT NULL, value float NOT NULL)",
	}
	for _, s := range stmts {
		if _, err := w.conn.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
	}
	return nil
}

func (w *Workload) Reset(ctx context.Context) error {
	_, err := w.conn.ExecContext(ctx, "TRUNCATE TABLE tsdata")
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

// bulkCopy streams rows into table with the TDS bulk load protocol.
func bulkCopy(ctx context.Context, tx *sql.Tx, table string, cols []string, args func(r bench.Row) []any, rows []bench.Row) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, cols...))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, args(r)...); err != nil {
			return 0, err
		}
	}
	// An empty Exec flushes the buffered rows.
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (w *Workload) insert(ctx context.Context, n int) (int, error) {
	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows := bench.GenerateRows(n, bench.InsertValue)
	copied, err := bulkCopy(ctx, tx, "tsdata", []string{"id", "created", "value"},
		func(r bench.Row) []any { return []any{r.ID, r.Created, r.Value} }, rows)
	if err != nil {
		return 0, fmt.Errorf("bulk copy: %w", err)
	}
	return int(copied), tx.Commit()
}

func (w *Workload) batchUpdate(ctx context.Context, n int) (int, error) {
	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE tsdata SET value = @p1 WHERE id = @p2")
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

func (w *Workload) update(ctx context.Context, n int) (int, error) {
	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE #tsdatatemp"); err != nil {
		return 0, err
	}
	rows := bench.GenerateRows(n, bench.UpdateValue)
	_, err = bulkCopy(ctx, tx, "#tsdatatemp", []string{"id", "value"},
		func(r bench.Row) []any { return []any{r.ID, r.Value} }, rows)
	if err != nil {
		return 0, fmt.Errorf("bulk copy temp: %w", err)
	}

	res, err := tx.ExecContext(ctx, "UPDATE d SET d.value = s.value FROM tsdata d INNER JOIN #tsdatatemp s ON d.id = s.id")
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), tx.Commit()
}

func (w *Workload) selectAll(ctx context.Context, n int) (int, error) {
	rows, err := w.conn.QueryContext(ctx, "SELECT id, created, value FROM tsdata")
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
