//go:build !linux && !darwin

package arena

import "context"

// Mapped is unavailable on this platform; every method reports ErrUnsupported.
type Mapped struct{}

// OpenMapped always fails with ErrUnsupported.
func OpenMapped(string, MappedOptions) (*Mapped, error) { return nil, ErrUnsupported }

func (m *Mapped) Extend(int) (int, error)     { return 0, ErrUnsupported }
func (m *Mapped) Low() int                    { return 0 }
func (m *Mapped) High() int                   { return 0 }
func (m *Mapped) Bytes() []byte               { return nil }
func (m *Mapped) Reset() error                { return ErrUnsupported }
func (m *Mapped) Sync(context.Context) error  { return ErrUnsupported }
func (m *Mapped) FD() int                     { return -1 }
func (m *Mapped) Mapping() []byte             { return nil }
func (m *Mapped) Path() string                { return "" }
func (m *Mapped) Remaps() int                 { return 0 }
func (m *Mapped) Close() error                { return nil }
