package bench

import "time"

// Created is the timestamp stamped on every generated row.
var Created = time.Unix(1000, 0).UTC()

// GenerateRows builds n rows with ids 0..n-1 and values from value(i).
func GenerateRows(n int, value func(i int) float64) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{ID: int64(i), Created: Created, Value: value(i)}
	}
	return rows
}

func InsertValue(i int) float64 { return float64(i) / 10 }

// UpdateValue is what the bulk (temp table) update writes.
func UpdateValue(i int) float64 { return float64(i)/10 + 1 }

// BatchUpdateValue is what the per-row batched update writes.
func BatchUpdateValue(i int) float64 { return float64(i) / 5 }
