package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/heap/tuning"
)

var (
	tuneMinBlocks   []int
	tuneSlacks      []int
	tuneOversizes   []int
	tuneWorkers     int
	tuneTop         int
	tuneByClass     bool
	tuneWriteConfig string
)

func init() {
	def := tuning.DefaultSpace()
	cmd := newTuneCmd()
	cmd.Flags().IntSliceVar(&tuneMinBlocks, "min-block", def.MinBlockSizes, "MinBlockSize values to try")
	cmd.Flags().IntSliceVar(&tuneSlacks, "split-slack", def.SplitSlacks, "SplitSlack values to try")
	cmd.Flags().IntSliceVar(&tuneOversizes, "max-oversize", def.MaxOversizes, "MaxOversize values to try")
	cmd.Flags().IntVarP(&tuneWorkers, "workers", "w", 0, "Parallel replays (0 = GOMAXPROCS)")
	cmd.Flags().IntVarP(&tuneTop, "top", "n", 5, "Candidates to print per group")
	cmd.Flags().BoolVar(&tuneByClass, "by-class", false, "Search each trace class separately")
	cmd.Flags().StringVarP(&tuneWriteConfig, "write", "o", "",
		"Write the best candidate of each group as a TOML profile file")
	rootCmd.AddCommand(cmd)
}

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune <trace>...",
		Short: "Search allocator tunables over traces",
		Long: `The tune command replays the traces under every point of a grid of
MinBlockSize, SplitSlack and MaxOversize values and ranks the points by mean
utilization, then total footprint.

Example:
  heapctl tune traces/*
  heapctl tune traces/* --by-class --write tuned.toml
  heapctl tune trace_c2_v0 --min-block 48,64 --split-slack 16,32,64 --top 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTune(cmd.Context(), args)
		},
	}
	return cmd
}

type tuneGroup struct {
	Class      int                `json:"class"`
	Traces     []string           `json:"traces"`
	Candidates []tuning.Candidate `json:"candidates"`
}

func runTune(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Group -1 holds every trace unless --by-class splits them.
	groups := make(map[int][]*trace.Trace)
	for _, path := range args {
		t, err := trace.ParseFile(path)
		if err != nil {
			return err
		}
		class := -1
		if tuneByClass {
			if c, ok := tuning.ClassFromPath(path); ok {
				class = c
			}
		}
		groups[class] = append(groups[class], t)
	}
	classes := make([]int, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	space := tuning.Space{
		Base:          tuning.ForClass(-1),
		MinBlockSizes: tuneMinBlocks,
		SplitSlacks:   tuneSlacks,
		MaxOversizes:  tuneOversizes,
	}

	profiles := tuning.Builtin()
	out := make([]tuneGroup, 0, len(classes))
	for _, class := range classes {
		traces := groups[class]
		printVerbose("searching %d points over %d traces (class %d)\n", len(space.Points()), len(traces), class)

		cands, err := tuning.Search(ctx, traces, space, tuneWorkers)
		if err != nil {
			return err
		}

		best := cands[0].Config
		if class >= 0 {
			best.Name = fmt.Sprintf("class%d-tuned", class)
		} else {
			best.Name = "tuned"
		}
		profiles.Set(class, best)

		g := tuneGroup{Class: class, Candidates: cands[:min(tuneTop, len(cands))]}
		for _, t := range traces {
			g.Traces = append(g.Traces, t.Name)
		}
		for i := range g.Candidates {
			if !verbose {
				g.Candidates[i].Results = nil
			}
		}
		out = append(out, g)
	}

	if tuneWriteConfig != "" {
		if err := writeProfiles(tuneWriteConfig, profiles); err != nil {
			return err
		}
		printVerbose("wrote %s\n", tuneWriteConfig)
	}

	if jsonOut {
		return printJSON(out)
	}
	if quiet {
		return nil
	}
	return writeTuneTable(out)
}

func writeProfiles(path string, p tuning.Profiles) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeTuneTable(groups []tuneGroup) error {
	p := message.NewPrinter(language.English)
	for _, g := range groups {
		if g.Class >= 0 {
			p.Printf("class %d (%d traces)\n", g.Class, len(g.Traces))
		} else {
			p.Printf("all traces (%d)\n", len(g.Traces))
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		p.Fprintf(tw, "  rank\tconfig\tmean util\tfootprint\tfailures\n")
		for i, c := range g.Candidates {
			p.Fprintf(tw, "  %d\t%s\t%.1f%%\t%d\t%d\n", i+1, c.Config, 100*c.MeanUtil, c.TotalFootprint, c.Failures)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
