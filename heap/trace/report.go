package trace

import (
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// UtilWeight is the share of utilization in the performance index.
	UtilWeight = 0.6

	// DefaultReferenceThroughput is the ops/sec at which throughput stops
	// improving the performance index.
	DefaultReferenceThroughput = 5_000_000
)

// PerfIndex combines utilization and throughput into one score in [0, 1]:
// UtilWeight*util + (1-UtilWeight)*min(1, throughput/reference).
func PerfIndex(util, throughput, reference float64) float64 {
	thru := 1.0
	if reference > 0 {
		thru = min(1, throughput/reference)
	}
	return UtilWeight*util + (1-UtilWeight)*thru
}

// Summary aggregates a set of results.
type Summary struct {
	Traces         int     `json:"traces"`
	Ops            int     `json:"ops"`
	MeanUtil       float64 `json:"mean_utilization"`
	MeanThroughput float64 `json:"mean_ops_per_sec"`
	PerfIndex      float64 `json:"perfidx"`
}

// Summarize averages utilization and throughput over results.
func Summarize(results []Result, reference float64) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}
	for _, r := range results {
		s.Ops += r.Ops
		s.MeanUtil += r.Utilization
		s.MeanThroughput += r.Throughput
	}
	s.Traces = len(results)
	s.MeanUtil /= float64(len(results))
	s.MeanThroughput /= float64(len(results))
	s.PerfIndex = PerfIndex(s.MeanUtil, s.MeanThroughput, reference)
	return s
}

// WriteReport renders one row per result and a summary line, with numbers
// grouped for the given language.
func WriteReport(w io.Writer, results []Result, reference float64, tag language.Tag) error {
	p := message.NewPrinter(tag)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	p.Fprintf(tw, "trace\tconfig\tops\tpeak live\tfootprint\tutil\tops/sec\tgrows\tsplits\tmerges\t\n")
	for _, r := range results {
		p.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f%%\t%.0f\t%d\t%d\t%d\t\n",
			r.Trace, r.Config, r.Ops, r.PeakLive, r.Footprint, 100*r.Utilization, r.Throughput,
			r.Stats.GrowCalls, r.Stats.SplitCount, r.Stats.CoalesceForward+r.Stats.CoalesceBackward)
	}

	s := Summarize(results, reference)
	p.Fprintf(tw, "total\t\t%d\t\t\t%.1f%%\t%.0f\t\t\t\t\n", s.Ops, 100*s.MeanUtil, s.MeanThroughput)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := p.Fprintf(w, "perfidx: %.3f\n", s.PerfIndex)
	return err
}
