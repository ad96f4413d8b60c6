package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/heap/tuning"
)

var (
	replayConfig     string
	replayProfile    string
	replayParanoid   bool
	replayMapped     string
	replaySync       bool
	replayWorkers    int
	replayCheckEvery int
	replayNoPatterns bool
	replayReference  float64
	replayLang       string
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().StringVar(&replayConfig, "config", "auto",
		"Allocator preset (Balanced, Tight, Loose, NoTailGrow) or auto to pick by trace class")
	cmd.Flags().StringVar(&replayProfile, "profile", "", "TOML profile file overriding the per-class presets")
	cmd.Flags().BoolVar(&replayParanoid, "paranoid", false, "Check heap invariants around every operation")
	cmd.Flags().StringVar(&replayMapped, "mapped", "", "Back each arena with a mapped file in this directory")
	cmd.Flags().BoolVar(&replaySync, "sync", false, "Flush dirty allocator metadata after each mapped replay")
	cmd.Flags().IntVarP(&replayWorkers, "workers", "w", 0, "Parallel replays (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&replayCheckEvery, "check-every", 0, "Run a full heap check every N operations")
	cmd.Flags().BoolVar(&replayNoPatterns, "no-patterns", false, "Skip payload pattern fill and verification")
	cmd.Flags().Float64Var(&replayReference, "reference", trace.DefaultReferenceThroughput,
		"Reference throughput (ops/sec) for the performance index")
	cmd.Flags().StringVar(&replayLang, "lang", "en", "Language tag for number formatting")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay traces and report utilization",
		Long: `The replay command runs each trace against a fresh allocator, validates
every payload against the live set, and reports utilization and throughput.

Example:
  heapctl replay traces/*
  heapctl replay trace_c3_v0 --config Tight --paranoid
  heapctl replay traces/* --profile tuned.toml --json
  heapctl replay traces/* --mapped /tmp/arenas --sync`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

type replayOutput struct {
	Results []trace.Result `json:"results"`
	Summary trace.Summary  `json:"summary"`
	Errors  []string       `json:"errors,omitempty"`
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	profiles, err := loadProfiles(replayProfile)
	if err != nil {
		return err
	}

	jobs := make([]trace.Job, 0, len(args))
	for _, path := range args {
		t, err := trace.ParseFile(path)
		if err != nil {
			return err
		}
		cfg, err := resolveConfig(replayConfig, path, profiles)
		if err != nil {
			return err
		}
		cfg.Paranoid = replayParanoid
		printVerbose("%s: %d ops, config %s\n", t.Name, len(t.Ops), cfg)

		job := trace.Job{
			Trace:   t,
			Config:  cfg,
			Options: trace.Options{CheckEvery: replayCheckEvery, NoPatterns: replayNoPatterns},
		}
		if replayMapped != "" {
			job.Arena = mappedFactory(ctx, replayMapped, replaySync)
		}
		jobs = append(jobs, job)
	}

	if replayMapped != "" {
		if err := os.MkdirAll(replayMapped, 0o755); err != nil {
			return fmt.Errorf("--mapped: %w", err)
		}
	}

	results, runErr := trace.RunAll(ctx, jobs, replayWorkers)
	if results == nil {
		return runErr
	}

	if jsonOut {
		out := replayOutput{Results: results, Summary: trace.Summarize(results, replayReference)}
		if runErr != nil {
			out.Errors = strings.Split(runErr.Error(), "\n")
		}
		if err := printJSON(out); err != nil {
			return err
		}
		return runErr
	}

	if !quiet {
		tag, err := language.Parse(replayLang)
		if err != nil {
			return fmt.Errorf("--lang: %w", err)
		}
		if err := trace.WriteReport(os.Stdout, results, replayReference, tag); err != nil {
			return err
		}
		if replayMapped != "" {
			printInfo("arena files kept in %s\n", replayMapped)
		}
	}
	return runErr
}

// loadProfiles returns the built-in class profiles, overridden by path when set.
func loadProfiles(path string) (tuning.Profiles, error) {
	if path == "" {
		return tuning.Builtin(), nil
	}
	return tuning.LoadFile(path)
}

// resolveConfig picks the allocator configuration for the trace at path.
func resolveConfig(name, path string, profiles tuning.Profiles) (alloc.Config, error) {
	if name == "" || strings.EqualFold(name, "auto") {
		return profiles.ForPath(path), nil
	}
	names := make([]string, 0, len(alloc.Presets()))
	for _, cfg := range alloc.Presets() {
		if strings.EqualFold(cfg.Name, name) {
			return cfg, nil
		}
		names = append(names, cfg.Name)
	}
	return alloc.Config{}, fmt.Errorf("unknown config %q (want auto, %s)", name, strings.Join(names, ", "))
}

// syncedArena is a mapped arena whose dirty metadata is flushed on Close.
type syncedArena struct {
	*arena.Mapped
	ctx     context.Context
	tracker *dirty.Tracker
}

func (s *syncedArena) Tracker() alloc.DirtyTracker { return s.tracker }

func (s *syncedArena) Close() error {
	printVerbose("%s: flushing %d dirty ranges\n", filepath.Base(s.Path()), s.tracker.Pending())
	err := s.tracker.Flush(s.ctx, dirty.FlushFull)
	return errors.Join(err, s.Mapped.Close())
}

// mappedFactory returns an arena factory that maps one file per job in dir.
func mappedFactory(ctx context.Context, dir string, sync bool) trace.ArenaFactory {
	return func(job int, t *trace.Trace) (arena.Provider, error) {
		name := t.Name
		if name == "" {
			name = "trace"
		}
		m, err := arena.OpenMapped(filepath.Join(dir, fmt.Sprintf("%03d-%s.heap", job, name)), arena.MappedOptions{})
		if err != nil {
			return nil, err
		}
		if !sync {
			return m, nil
		}
		return &syncedArena{Mapped: m, ctx: ctx, tracker: dirty.NewTracker(m)}, nil
	}
}
