package bench

import (
	"errors"
	"fmt"
	"io"
)

const insufficientData = "insufficient data"

// PrintSummary writes the averaged results table for a finished run.
func PrintSummary(w io.Writer, r *Report, p Policy, summaries []Summary) {
	title := fmt.Sprintf("%s: %d trials, %d warm-up, %d rows", r.Backend, r.Trials, p.Warmup, r.Rows)
	policy := fmt.Sprintf("Average of sorted samples without the top %d", p.DropHigh)

	fmt.Fprintf(w, "\n╔═════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║  %-59s║\n", title)
	fmt.Fprintf(w, "║  %-59s║\n", policy)
	fmt.Fprintf(w, "╠═══════════════════╦══════════════════════╦══════════════════╣\n")
	fmt.Fprintf(w, "║  Operation        ║  Wall avg            ║  CPU avg         ║\n")
	fmt.Fprintf(w, "╠═══════════════════╬══════════════════════╬══════════════════╣\n")
	for _, s := range summaries {
		fmt.Fprintf(w, "║  %-16s ║  %-19s ║  %-15s ║\n", s.Op, FmtAvg(s.Wall), FmtAvg(s.CPU))
	}
	fmt.Fprintf(w, "╚═══════════════════╩══════════════════════╩══════════════════╝\n")
}

// PrintDetail writes min / median / max and spread of the wall-clock series.
func PrintDetail(w io.Writer, summaries []Summary) {
	fmt.Fprintf(w, "\n┌───────────────────┬──────────┬──────────┬──────────┬────────┐\n")
	fmt.Fprintf(w, "│  Wall clock       │   min    │  median  │   max    │  dev   │\n")
	fmt.Fprintf(w, "├───────────────────┼──────────┼──────────┼──────────┼────────┤\n")
	for _, s := range summaries {
		a := s.Wall
		if a.Err != nil {
			fmt.Fprintf(w, "│  %-16s │ %-39s │\n", s.Op, insufficientData)
			continue
		}
		marker := " "
		if !a.Steady {
			marker = "!"
		}
		fmt.Fprintf(w, "│  %-16s │ %8s │ %8s │ %8s │ %5.1f%%%s│\n",
			s.Op, FmtMs(a.Min), FmtMs(a.Median), FmtMs(a.Max), a.Deviation*100, marker)
	}
	fmt.Fprintf(w, "└───────────────────┴──────────┴──────────┴──────────┴────────┘\n")
	fmt.Fprintf(w, "  ! = a kept sample deviates more than %.0f%% from the mean\n", steadyTolerance*100)
}

// FmtAvg renders an aggregate mean, or why there is none.
func FmtAvg(a Aggregate) string {
	if errors.Is(a.Err, ErrInsufficientSamples) {
		return insufficientData
	}
	if a.Err != nil {
		return "error"
	}
	return FmtMs(a.Mean)
}

func FmtMs(ms float64) string {
	if ms < 1 {
		return fmt.Sprintf("%.0fµs", ms*1000)
	}
	if ms >= 10000 {
		return fmt.Sprintf("%.2fs", ms/1000)
	}
	return fmt.Sprintf("%.2fms", ms)
}
