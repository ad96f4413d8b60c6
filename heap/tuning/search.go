package tuning

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/internal/logger"
)

// ErrEmptySpace is returned when a Space has no points or no traces are given.
var ErrEmptySpace = errors.New("tuning: empty search space")

// Space is the grid of tunables to evaluate. Each slice lists candidate
// values for one field of Base; an empty slice keeps Base's value.
type Space struct {
	Base          alloc.Config
	MinBlockSizes []int
	SplitSlacks   []int
	MaxOversizes  []int
}

// PowersOfTwo returns the powers of two in [lo, hi].
func PowersOfTwo(lo, hi int) []int {
	var out []int
	for v := 1; v <= hi && v > 0; v <<= 1 {
		if v >= lo {
			out = append(out, v)
		}
	}
	return out
}

// DefaultSpace is a coarse grid around the built-in profiles.
func DefaultSpace() Space {
	return Space{
		Base:          alloc.DefaultConfig(),
		MinBlockSizes: PowersOfTwo(64, 1024),
		SplitSlacks:   PowersOfTwo(8, 4096),
		MaxOversizes:  []int{0, 512, 4096, 32768, 262144},
	}
}

// Points expands the grid in MinBlockSize, SplitSlack, MaxOversize order.
func (s Space) Points() []alloc.Config {
	orBase := func(vals []int, base int) []int {
		if len(vals) == 0 {
			return []int{base}
		}
		return vals
	}
	mins := orBase(s.MinBlockSizes, s.Base.MinBlockSize)
	slacks := orBase(s.SplitSlacks, s.Base.SplitSlack)
	overs := orBase(s.MaxOversizes, s.Base.MaxOversize)

	out := make([]alloc.Config, 0, len(mins)*len(slacks)*len(overs))
	for _, m := range mins {
		for _, sl := range slacks {
			for _, o := range overs {
				cfg := s.Base
				cfg.Name = fmt.Sprintf("grid-m%d-s%d-o%d", m, sl, o)
				cfg.MinBlockSize = m
				cfg.SplitSlack = sl
				cfg.MaxOversize = o
				out = append(out, cfg)
			}
		}
	}
	return out
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Config         alloc.Config   `json:"-"`
	Name           string         `json:"config"`
	MeanUtil       float64        `json:"mean_utilization"`
	TotalFootprint int            `json:"total_footprint"`
	Failures       int            `json:"failures"`
	Results        []trace.Result `json:"results,omitempty"`
}

// Search replays every trace under every point of space on a shared worker
// pool and returns the candidates best first: fewest failed replays, then
// highest mean utilization, then smallest total footprint, then grid order.
// A replay that fails (for example by exhausting the arena) counts as a
// failure with zero utilization; only cancellation aborts the search.
func Search(ctx context.Context, traces []*trace.Trace, space Space, workers int) ([]Candidate, error) {
	points := space.Points()
	if len(points) == 0 || len(traces) == 0 {
		return nil, ErrEmptySpace
	}
	for i, cfg := range points {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("tuning: point %d: %w", i, err)
		}
	}

	jobs := make([]trace.Job, 0, len(points)*len(traces))
	for _, cfg := range points {
		for _, t := range traces {
			jobs = append(jobs, trace.Job{Trace: t, Config: cfg, Options: trace.Options{NoPatterns: true}})
		}
	}

	results, err := trace.RunAll(ctx, jobs, workers)
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		logger.Debug("tuning: some replays failed", "err", err)
	}

	cands := make([]Candidate, len(points))
	for i, cfg := range points {
		c := Candidate{Config: cfg, Name: cfg.Name, Results: results[i*len(traces) : (i+1)*len(traces)]}
		for j, r := range c.Results {
			if r.Ops < len(traces[j].Ops) {
				c.Failures++
				continue
			}
			c.MeanUtil += r.Utilization
			c.TotalFootprint += r.Footprint
		}
		c.MeanUtil /= float64(len(traces))
		cands[i] = c
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Failures != b.Failures {
			return a.Failures < b.Failures
		}
		if a.MeanUtil != b.MeanUtil {
			return a.MeanUtil > b.MeanUtil
		}
		return a.TotalFootprint < b.TotalFootprint
	})

	logger.Info("tuning search done", "points", len(points), "traces", len(traces), "best", cands[0].Name)
	return cands, nil
}
