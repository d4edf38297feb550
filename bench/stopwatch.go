package bench

import "time"

// Stopwatch measures elapsed wall-clock and process CPU time from one start point.
type Stopwatch struct {
	start    time.Time
	cpuStart time.Duration
}

func StartStopwatch() Stopwatch {
	return Stopwatch{start: time.Now(), cpuStart: processCPU()}
}

func (s Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start)
}

// CPUElapsed is user plus system time consumed by the whole process.
func (s Stopwatch) CPUElapsed() time.Duration {
	return processCPU() - s.cpuStart
}

func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
