//go:build !unix

package bench

import "time"

// No rusage here; CPU samples read as zero.
func processCPU() time.Duration { return 0 }
