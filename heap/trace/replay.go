package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Options controls a replay.
type Options struct {
	// CheckEvery runs Allocator.Check after every N ops. 0 disables it.
	CheckEvery int

	// NoPatterns skips payload filling and verification. Extent validation
	// still runs. Used when measuring throughput.
	NoPatterns bool
}

// Result summarizes one replay.
type Result struct {
	Trace       string        `json:"trace"`
	Config      string        `json:"config"`
	Ops         int           `json:"ops"`
	PeakLive    int           `json:"peak_live"`
	Footprint   int           `json:"footprint"`
	Utilization float64       `json:"utilization"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Throughput  float64       `json:"ops_per_sec"`
	Stats       alloc.Stats   `json:"stats"`
}

// Replay resets a, runs every op of t, and validates each payload against the
// live extents. It stops at the first violation or allocation failure. An
// allocation failure wraps alloc.ErrOutOfMemory.
func Replay(ctx context.Context, a *alloc.Allocator, t *Trace, opts Options) (Result, error) {
	p := a.Arena()
	res := Result{Trace: t.Name, Config: a.Config().String()}

	if err := a.Init(); err != nil {
		return res, err
	}

	r := &replayer{
		a:     a,
		p:     p,
		opts:  opts,
		v:     NewValidator(),
		ptrs:  make([]alloc.Ptr, t.NumIDs),
		sizes: make([]int, t.NumIDs),
	}

	start := time.Now()
	for i, op := range t.Ops {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.step(op); err != nil {
			return res, fmt.Errorf("%s: op %d (%s id=%d size=%d): %w", t.Name, i, op.Kind, op.ID, op.Size, err)
		}
		if opts.CheckEvery > 0 && (i+1)%opts.CheckEvery == 0 {
			if err := a.Check(); err != nil {
				return res, fmt.Errorf("%s: after op %d: %w", t.Name, i, err)
			}
		}
		res.Ops++
	}
	res.Elapsed = time.Since(start)

	res.PeakLive = r.peak
	res.Footprint = p.High() - p.Low()
	if res.Footprint > 0 {
		res.Utilization = float64(res.PeakLive) / float64(res.Footprint)
	}
	if secs := res.Elapsed.Seconds(); secs > 0 {
		res.Throughput = float64(res.Ops) / secs
	}
	res.Stats = a.Stats()

	logger.Debug("trace replayed",
		"trace", t.Name, "ops", res.Ops, "util", res.Utilization, "footprint", res.Footprint)
	return res, nil
}

type replayer struct {
	a    *alloc.Allocator
	p    arena.Provider
	opts Options
	v    *Validator

	ptrs  []alloc.Ptr
	sizes []int
	live  int
	peak  int
}

func (r *replayer) step(op Op) error {
	switch op.Kind {
	case OpAlloc:
		if r.ptrs[op.ID] != alloc.Nil {
			return fmt.Errorf("%w: id already allocated", ErrBadOp)
		}
		p, err := r.a.Alloc(op.Size)
		if err != nil {
			return err
		}
		return r.track(op.ID, p, op.Size, 0)

	case OpRealloc:
		old := r.ptrs[op.ID]
		oldSize := r.sizes[op.ID]
		p, err := r.a.Realloc(old, op.Size)
		if err != nil {
			return err
		}
		if old != alloc.Nil {
			r.v.Remove(old)
			r.release(op.ID)
		}
		return r.track(op.ID, p, op.Size, min(oldSize, op.Size))

	case OpFree:
		p := r.ptrs[op.ID]
		if p == alloc.Nil {
			return nil
		}
		if !r.opts.NoPatterns {
			if err := verifyPattern(r.a.Payload(p)[:r.sizes[op.ID]], op.ID); err != nil {
				return err
			}
		}
		r.v.Remove(p)
		r.release(op.ID)
		r.a.Free(p)
		return nil

	case OpWrite:
		p := r.ptrs[op.ID]
		if p == alloc.Nil || op.Size > r.sizes[op.ID] {
			return fmt.Errorf("%w: write of %d bytes to a %d-byte payload", ErrBadOp, op.Size, r.sizes[op.ID])
		}
		if !r.opts.NoPatterns {
			fillPattern(r.a.Payload(p)[:op.Size], op.ID, 0)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown op %s", ErrBadOp, op.Kind)
	}
}

// track validates a fresh payload for id, checks that the first kept bytes
// survived, and fills the rest.
func (r *replayer) track(id int, p alloc.Ptr, size, kept int) error {
	if size == 0 {
		return nil
	}
	if p == alloc.Nil {
		return fmt.Errorf("%w: nil payload for %d bytes", ErrBadOp, size)
	}
	if err := r.v.Add(id, p, size, r.p.Low(), r.p.High()); err != nil {
		return err
	}

	r.ptrs[id] = p
	r.sizes[id] = size
	r.live += size
	r.peak = max(r.peak, r.live)

	if r.opts.NoPatterns {
		return nil
	}
	payload := r.a.Payload(p)[:size]
	if err := verifyPattern(payload[:kept], id); err != nil {
		return err
	}
	fillPattern(payload[kept:], id, kept)
	return nil
}

func (r *replayer) release(id int) {
	r.live -= r.sizes[id]
	r.ptrs[id] = alloc.Nil
	r.sizes[id] = 0
}

// patternByte is the expected byte at offset i of id's payload.
func patternByte(id, i int) byte {
	return byte(id*167 + i*31 + i>>8)
}

// fillPattern writes id's pattern into b, which starts at payload offset base.
func fillPattern(b []byte, id, base int) {
	for i := range b {
		b[i] = patternByte(id, base+i)
	}
}

func verifyPattern(b []byte, id int) error {
	for i, got := range b {
		if want := patternByte(id, i); got != want {
			return fmt.Errorf("%w: byte %d is 0x%02X, want 0x%02X", ErrCorrupted, i, got, want)
		}
	}
	return nil
}
