package bench

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// MinSamples is the fewest samples a series must keep after the warm-up
// discard for any trimming policy to produce an average.
const MinSamples = 3

var ErrInsufficientSamples = errors.New("insufficient samples")

// Policy decides which samples of a series count towards its average.
type Policy struct {
	Warmup   int // leading samples discarded before sorting
	DropHigh int // largest samples discarded after sorting
}

// DefaultPolicy drops nothing up front and only the single largest sample.
var DefaultPolicy = Policy{DropHigh: 1}

func (p Policy) Validate() error {
	if p.Warmup < 0 {
		return fmt.Errorf("warm-up must not be negative, got %d", p.Warmup)
	}
	if p.DropHigh < 0 {
		return fmt.Errorf("drop-high must not be negative, got %d", p.DropHigh)
	}
	if p.DropHigh >= MinSamples {
		return fmt.Errorf("drop-high %d leaves nothing of a %d sample series", p.DropHigh, MinSamples)
	}
	return nil
}

// steadyTolerance is the widest relative spread a steady series may show.
const steadyTolerance = 0.2

// Mean discards the warm-up prefix, sorts the rest and averages it without
// its DropHigh largest values. The input slice is left untouched.
func (p Policy) Mean(samples []float64) (float64, error) {
	kept, err := p.kept(samples)
	if err != nil {
		return 0, err
	}
	return p.trimmedMean(kept), nil
}

// trimmedMean averages sorted kept samples without the DropHigh largest.
func (p Policy) trimmedMean(kept []float64) float64 {
	kept = kept[:len(kept)-p.DropHigh]

	var sum float64
	for _, v := range kept {
		sum += v
	}
	return sum / float64(len(kept))
}

// kept returns a sorted copy of samples with the warm-up prefix removed.
func (p Policy) kept(samples []float64) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	remaining := len(samples) - p.Warmup
	if remaining < MinSamples {
		return nil, fmt.Errorf("%w: %d of %d left after %d warm-up, need %d",
			ErrInsufficientSamples, max(remaining, 0), len(samples), p.Warmup, MinSamples)
	}
	kept := make([]float64, remaining)
	copy(kept, samples[p.Warmup:])
	sort.Float64s(kept)
	return kept, nil
}

// TrimmedMean averages samples after discarding the first warmup values and
// then the single largest of the rest.
func TrimmedMean(samples []float64, warmup int) (float64, error) {
	return Policy{Warmup: warmup, DropHigh: DefaultPolicy.DropHigh}.Mean(samples)
}

// Aggregate summarises one series under the policy.
func (p Policy) Aggregate(samples []float64) Aggregate {
	kept, err := p.kept(samples)
	if err != nil {
		return Aggregate{Err: err}
	}
	steady, dev := SteadyState(kept, steadyTolerance)
	return Aggregate{
		Mean:      p.trimmedMean(kept),
		Min:       kept[0],
		Median:    pct(kept, 50),
		Max:       kept[len(kept)-1],
		Deviation: dev,
		Steady:    steady,
	}
}

// Summarize aggregates every series of the report in phase order.
func Summarize(r *Report, p Policy) []Summary {
	out := make([]Summary, 0, len(r.Ops))
	for _, op := range r.Ops {
		s := r.Series[op]
		if s == nil {
			s = &Series{}
		}
		out = append(out, Summary{
			Op:   op,
			Wall: p.Aggregate(s.Wall),
			CPU:  p.Aggregate(s.CPU),
		})
	}
	return out
}

// SteadyState checks if every sample lies within tolerance of the mean.
func SteadyState(samples []float64, tolerance float64) (bool, float64) {
	if len(samples) < 2 {
		return true, 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))
	if mean == 0 {
		return false, 0
	}

	var maxDev float64
	for _, v := range samples {
		dev := math.Abs(v-mean) / mean
		if dev > maxDev {
			maxDev = dev
		}
	}
	return maxDev <= tolerance, maxDev
}

func pct(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
