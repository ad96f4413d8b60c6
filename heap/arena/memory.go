package arena

import "fmt"

// minCapacity is the smallest backing array Memory allocates.
const minCapacity = 4096

// Memory is a slice-backed Provider with a hard size limit.
type Memory struct {
	data  []byte
	limit int

	// Growth counters for reporting.
	extendCalls int
	copies      int
}

// NewMemory creates an empty in-memory arena that refuses to grow past limit
// bytes. A limit <= 0 selects DefaultLimit.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Memory{limit: limit}
}

// Extend grows the arena by n bytes.
func (m *Memory) Extend(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("extend by %d: %w", n, ErrBadSize)
	}
	old := len(m.data)
	if n > m.limit-old {
		return 0, fmt.Errorf("extend by %d at %d (limit %d): %w", n, old, m.limit, ErrExhausted)
	}
	m.extendCalls++

	need := old + n
	if need > cap(m.data) {
		newCap := max(2*cap(m.data), need, minCapacity)
		newCap = min(newCap, m.limit)
		grown := make([]byte, old, newCap)
		copy(grown, m.data)
		m.data = grown
		m.copies++
	}

	m.data = m.data[:need]
	clear(m.data[old:need])
	return old, nil
}

// Low returns 0; a Memory arena always starts at offset zero.
func (m *Memory) Low() int { return 0 }

// High returns the current arena size.
func (m *Memory) High() int { return len(m.data) }

// Bytes returns the live arena bytes.
func (m *Memory) Bytes() []byte { return m.data }

// Reset empties the arena but keeps the backing array.
func (m *Memory) Reset() error {
	m.data = m.data[:0]
	return nil
}

// Limit returns the maximum arena size.
func (m *Memory) Limit() int { return m.limit }

// ExtendCalls returns how many successful Extend calls were made.
func (m *Memory) ExtendCalls() int { return m.extendCalls }

// Copies returns how many times the backing array was reallocated.
func (m *Memory) Copies() int { return m.copies }
