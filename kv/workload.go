package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tsdata-bench/bench"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

var bucket = []byte("tsdata")

func Open(path string) (*bolt.DB, error) {
	if path == "" {
		return nil, errors.New("bolt needs a file path in -name")
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	log.WithField("path", path).Debugln("Opened bolt database")
	return db, nil
}

// Workload stores tsdata rows as MessagePack values in one bbolt bucket.
// Every phase is a single transaction, the embedded analogue of a bulk call.
type Workload struct {
	db *bolt.DB
}

func New(db *bolt.DB) *Workload {
	return &Workload{db: db}
}

func (w *Workload) Name() string { return bench.Bolt }

func (w *Workload) Close() error { return w.db.Close() }

func (w *Workload) Prepare(ctx context.Context) error {
	return w.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
}

func (w *Workload) Reset(ctx context.Context) error {
	return w.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucket)
		return err
	})
}

func (w *Workload) Phases() []bench.Phase {
	return []bench.Phase{
		{Op: bench.OpInsert, Run: w.insert},
		{Op: bench.OpUpdate, Run: w.update},
		{Op: bench.OpSelect, Run: w.selectAll},
	}
}

func (w *Workload) insert(ctx context.Context, n int) (int, error) {
	rows := bench.GenerateRows(n, bench.InsertValue)
	err := w.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		// Keys arrive in order; fill pages completely.
		b.FillPercent = 1.0
		for _, r := range rows {
			if err := b.Put(Key(r.ID), EncodeRow(nil, r)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// update rewrites the value of every existing row in one read-modify-write pass.
func (w *Workload) update(ctx context.Context, n int) (int, error) {
	var updated int
	err := w.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		for i := 0; i < n; i++ {
			k := Key(int64(i))
			v := b.Get(k)
			if v == nil {
				continue
			}
			r, err := DecodeRow(v)
			if err != nil {
				return fmt.Errorf("decode id %d: %w", i, err)
			}
			r.Value = bench.UpdateValue(i)
			if err := b.Put(k, EncodeRow(nil, r)); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	return updated, err
}

func (w *Workload) selectAll(ctx context.Context, n int) (int, error) {
	out := make([]bench.Row, 0, n)
	err := w.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			r, err := DecodeRow(v)
			if err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	})
	return len(out), err
}
