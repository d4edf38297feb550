package bench

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidParams = errors.New("invalid benchmark parameters")

// Phase is one timed operation of a trial. Run returns the number of rows
// it wrote or read.
type Phase struct {
	Op  Op
	Run func(ctx context.Context, rows int) (int, error)
}

// Workload is a database backend under test.
type Workload interface {
	Name() string
	// Prepare creates whatever schema the phases need. Called once.
	Prepare(ctx context.Context) error
	// Reset empties the table or collection before each trial.
	Reset(ctx context.Context) error
	Phases() []Phase
	Close() error
}

// ValidateParams rejects parameters whose series could never be averaged.
func ValidateParams(p BenchParams) error {
	if p.Rows <= 0 {
		return fmt.Errorf("%w: rows must be positive, got %d", ErrInvalidParams, p.Rows)
	}
	if err := p.Policy().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if p.Trials-p.Warmup < MinSamples {
		return fmt.Errorf("%w: %d trials with %d warm-up leave fewer than %d samples",
			ErrInvalidParams, p.Trials, p.Warmup, MinSamples)
	}
	return nil
}

// RunTrials resets the workload and runs all of its phases once per trial,
// strictly in order, recording wall and CPU time of every phase.
func RunTrials(ctx context.Context, w Workload, params BenchParams) (*Report, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	logger := log.WithField("backend", w.Name())

	if err := w.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	phases := w.Phases()
	report := &Report{
		Backend: w.Name(),
		Rows:    params.Rows,
		Trials:  params.Trials,
		Series:  make(map[Op]*Series, len(phases)),
	}
	for _, ph := range phases {
		report.Ops = append(report.Ops, ph.Op)
		report.Series[ph.Op] = &Series{}
	}

	for trial := 1; trial <= params.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := w.Reset(ctx); err != nil {
			return nil, fmt.Errorf("trial %d: reset: %w", trial, err)
		}
		logger.WithField("trial", trial).Debugln("Reset done")

		for _, ph := range phases {
			if params.GC {
				runtime.GC()
			}
			sw := StartStopwatch()
			n, err := ph.Run(ctx, params.Rows)
			wall, cpu := sw.Elapsed(), sw.CPUElapsed()
			if err != nil {
				return nil, fmt.Errorf("trial %d: %s: %w", trial, ph.Op, err)
			}

			report.Series[ph.Op].Append(wall, cpu)
			observePhase(w.Name(), ph.Op, n, wall, cpu)
			logger.WithFields(log.Fields{
				"trial":   trial,
				"op":      ph.Op,
				"rows":    n,
				"wall_ms": Millis(wall),
				"cpu_ms":  Millis(cpu),
				"warmup":  trial <= params.Warmup,
			}).Infoln("Phase finished")
		}
	}
	return report, nil
}
