//go:build linux || darwin

package arena

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped is a Provider backed by a memory-mapped file.
//
// The file is sized in Chunk steps; the logical arena [0, High) is a prefix of
// the mapping. Growth past the mapping unmaps, truncates the file to the new
// size, and maps it again.
type Mapped struct {
	f    *os.File
	path string
	opts MappedOptions

	mapping []byte // whole mapping, len == file size
	size    int    // logical High

	remaps int
}

// OpenMapped creates (or truncates) the file at path and returns an empty
// arena over it.
func OpenMapped(path string, opts MappedOptions) (*Mapped, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	return &Mapped{
		f:    f,
		path: path,
		opts: opts.withDefaults(os.Getpagesize()),
	}, nil
}

// Extend grows the arena by n bytes, remapping the file when the current
// mapping is too small.
func (m *Mapped) Extend(n int) (int, error) {
	if m.f == nil {
		return 0, ErrClosed
	}
	if n < 0 {
		return 0, fmt.Errorf("extend by %d: %w", n, ErrBadSize)
	}
	old := m.size
	if n > m.opts.Limit-old {
		return 0, fmt.Errorf("extend by %d at %d (limit %d): %w", n, old, m.opts.Limit, ErrExhausted)
	}

	need := old + n
	if need > len(m.mapping) {
		target := min(roundUp(need, m.opts.Chunk), roundUp(m.opts.Limit, os.Getpagesize()))
		if err := m.remap(target); err != nil {
			return 0, fmt.Errorf("extend by %d: %w: %w", n, ErrExhausted, err)
		}
	}

	m.size = need
	return old, nil
}

// remap resizes the backing file to fileSize and maps it again.
func (m *Mapped) remap(fileSize int) error {
	if m.mapping != nil {
		if err := unix.Munmap(m.mapping); err != nil {
			return fmt.Errorf("arena: failed to unmap before grow: %w", err)
		}
		m.mapping = nil
	}

	// Truncate file to new size (extends with zeros)
	if err := m.f.Truncate(int64(fileSize)); err != nil {
		m.restore()
		return fmt.Errorf("arena: failed to truncate file: %w", err)
	}

	data, err := unix.Mmap(int(m.f.Fd()), 0, fileSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		m.restore()
		return fmt.Errorf("arena: failed to remap: %w", err)
	}
	m.mapping = data
	m.remaps++
	return nil
}

// restore maps the file again at its current on-disk size after a failed
// grow so the arena stays usable.
func (m *Mapped) restore() {
	st, err := m.f.Stat()
	if err != nil || st.Size() == 0 {
		return
	}
	data, err := unix.Mmap(int(m.f.Fd()), 0, int(st.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err == nil {
		m.mapping = data
	}
}

// Low returns 0.
func (m *Mapped) Low() int { return 0 }

// High returns the logical arena size.
func (m *Mapped) High() int { return m.size }

// Bytes returns the logical arena as a prefix of the mapping.
func (m *Mapped) Bytes() []byte {
	if m.mapping == nil {
		return nil
	}
	return m.mapping[:m.size]
}

// Reset unmaps and truncates the backing file to zero bytes.
func (m *Mapped) Reset() error {
	if m.f == nil {
		return ErrClosed
	}
	if m.mapping != nil {
		if err := unix.Munmap(m.mapping); err != nil {
			return fmt.Errorf("arena: failed to unmap on reset: %w", err)
		}
		m.mapping = nil
	}
	m.size = 0
	return m.f.Truncate(0)
}

// Sync flushes the whole logical arena to the backing file.
func (m *Mapped) Sync(ctx context.Context) error {
	if m.f == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.size > 0 {
		if err := unix.Msync(m.mapping[:roundUp(m.size, os.Getpagesize())], unix.MS_SYNC); err != nil {
			return fmt.Errorf("arena: msync: %w", err)
		}
	}
	return unix.Fsync(int(m.f.Fd()))
}

// FD returns the backing file descriptor, or -1 after Close.
func (m *Mapped) FD() int {
	if m == nil || m.f == nil {
		return -1
	}
	return int(m.f.Fd())
}

// Mapping returns the whole mapping, including bytes past High. Used by the
// dirty tracker, which flushes page-aligned ranges.
func (m *Mapped) Mapping() []byte { return m.mapping }

// Path returns the backing file path.
func (m *Mapped) Path() string { return m.path }

// Remaps returns how many times the file was mapped.
func (m *Mapped) Remaps() int { return m.remaps }

// Close unmaps the arena and closes the backing file. The file is kept.
func (m *Mapped) Close() error {
	var err error
	if m.mapping != nil {
		_ = unix.Munmap(m.mapping)
		m.mapping = nil
	}
	if m.f != nil {
		err = m.f.Close()
		m.f = nil
	}
	return err
}
