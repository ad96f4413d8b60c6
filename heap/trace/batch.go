package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/logger"
)

// ArenaFactory creates the arena for one job. The arena is closed after the
// job when it implements io.Closer, and its tracker is handed to the
// allocator when it implements TrackedArena.
type ArenaFactory func(job int, t *Trace) (arena.Provider, error)

// TrackedArena is an arena that records the allocator's writes, typically
// for a later flush of a file-backed mapping.
type TrackedArena interface {
	arena.Provider
	Tracker() alloc.DirtyTracker
}

// Job is one replay: a trace under one configuration.
type Job struct {
	Trace   *Trace
	Config  alloc.Config
	Options Options

	// Arena creates the job's arena. Nil means a fresh arena.Memory with
	// the default limit.
	Arena ArenaFactory
}

// RunAll replays every job on a pool of workers and returns results in job
// order. Each job runs on its own arena and allocator. Failed jobs leave a
// zero Result (with Trace and Config set) and contribute to the joined error.
// workers <= 0 uses GOMAXPROCS.
func RunAll(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(len(jobs), 1))

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		logger.Error("trace: replay worker panicked", "panic", v)
	}))
	if err != nil {
		return nil, fmt.Errorf("trace: worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = runJob(ctx, i, jobs[i])
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("trace: submit job %d: %w", i, submitErr)
		}
	}
	wg.Wait()

	return results, errors.Join(errs...)
}

// runJob replays one job, converting allocator panics (Paranoid mode) into
// errors.
func runJob(ctx context.Context, i int, job Job) (res Result, err error) {
	res = Result{Trace: job.Trace.Name, Config: job.Config.String()}

	factory := job.Arena
	if factory == nil {
		factory = func(int, *Trace) (arena.Provider, error) { return arena.NewMemory(0), nil }
	}
	p, err := factory(i, job.Trace)
	if err != nil {
		return res, fmt.Errorf("%s: arena: %w", job.Trace.Name, err)
	}
	if c, ok := p.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%s: %v", job.Trace.Name, v)
			if perr, ok := v.(error); ok {
				err = fmt.Errorf("%s: %w", job.Trace.Name, perr)
			}
		}
	}()

	var dt alloc.DirtyTracker
	if ta, ok := p.(TrackedArena); ok {
		dt = ta.Tracker()
	}

	cfg := job.Config
	a, err := alloc.New(p, dt, &cfg)
	if err != nil {
		return res, err
	}
	return Replay(ctx, a, job.Trace, job.Options)
}
