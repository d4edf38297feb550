package bench

import "time"

type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // postgres only
}

type BenchParams struct {
	Rows     int
	Trials   int
	Warmup   int  // leading trials discarded before aggregation
	DropHigh int  // highest samples discarded after sorting
	GC       bool // collect garbage before each timed phase
}

func (p BenchParams) Policy() Policy {
	return Policy{Warmup: p.Warmup, DropHigh: p.DropHigh}
}

// Op is a measured operation category.
type Op string

const (
	OpInsert      Op = "insert"
	OpUpdate      Op = "update"
	OpBatchUpdate Op = "batch-update"
	OpSelect      Op = "select"
)

type Clock string

const (
	ClockWall Clock = "wall"
	ClockCPU  Clock = "cpu"
)

// Row is one tsdata record, shared by every backend.
type Row struct {
	ID      int64
	Created time.Time
	Value   float64
}

// Series holds one sample per trial for each clock, in milliseconds.
type Series struct {
	Wall []float64
	CPU  []float64
}

func (s *Series) Append(wall, cpu time.Duration) {
	s.Wall = append(s.Wall, Millis(wall))
	s.CPU = append(s.CPU, Millis(cpu))
}

// Report is everything a run measured. Ops keeps the phase order.
type Report struct {
	Backend string
	Rows    int
	Trials  int
	Ops     []Op
	Series  map[Op]*Series
}

type Aggregate struct {
	Mean      float64
	Min       float64
	Median    float64
	Max       float64
	Deviation float64 // max relative distance of a kept sample from the plain mean
	Steady    bool    // every kept sample lies within steadyTolerance of the mean
	Err       error
}

type Summary struct {
	Op   Op
	Wall Aggregate
	CPU  Aggregate
}
