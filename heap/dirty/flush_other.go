//go:build !linux && !darwin

package dirty

import (
	"context"

	"github.com/joshuapare/heapkit/heap/arena"
)

func (t *Tracker) flushRanges(context.Context, []byte) error { return arena.ErrUnsupported }

func fdatasync(int, bool) error { return arena.ErrUnsupported }
