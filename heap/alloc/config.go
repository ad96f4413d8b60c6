package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

const (
	// DefaultNumBins covers blocks up to 2^25 bytes with exact bins; larger
	// blocks share the last bin.
	DefaultNumBins = 26

	// DefaultMinBlockSize is the smallest block handed out.
	DefaultMinBlockSize = 64

	// DefaultSplitSlack is the excess above which a block is split.
	DefaultSplitSlack = 128

	// minNumBins is enough for the smallest viable block to have its own bin.
	minNumBins = 8

	// maxNumBins keeps 1<<(NumBins-1) inside int64.
	maxNumBins = 62
)

// Config holds the allocator tunables.
type Config struct {
	// Name for this configuration (for reports)
	Name string

	// NumBins is the number of size-class bins. Bin i holds free blocks of
	// size (2^(i-1), 2^i]; the last bin also holds everything larger.
	NumBins int

	// MinBlockSize is the smallest block size (header and footer included).
	// Rounded up to the alignment and to format.MinViableBlock.
	MinBlockSize int

	// SplitSlack is the excess over the required size above which a block is
	// split instead of returned oversized.
	SplitSlack int

	// MaxOversize, when > 0, stops the search of larger bins once the
	// candidate exceeds the required size by more than this; the arena is
	// extended instead. 0 disables the check.
	MaxOversize int

	// GrowInPlace lets Realloc widen the last block of the arena by
	// extending the arena rather than moving.
	GrowInPlace bool

	// Paranoid runs Check before and after every mutating call and panics on
	// a violation. Test and debug use only.
	Paranoid bool
}

// Predefined configurations.
var (
	// ConfigBalanced is the general-purpose tuning.
	ConfigBalanced = Config{
		Name:         "Balanced",
		NumBins:      DefaultNumBins,
		MinBlockSize: DefaultMinBlockSize,
		SplitSlack:   DefaultSplitSlack,
		GrowInPlace:  true,
	}

	// ConfigTight splits aggressively. Better utilization, more bookkeeping.
	ConfigTight = Config{
		Name:         "Tight",
		NumBins:      DefaultNumBins,
		MinBlockSize: format.MinViableBlock,
		SplitSlack:   format.Alignment,
		GrowInPlace:  true,
	}

	// ConfigLoose rarely splits. Fewer operations, more internal fragmentation.
	ConfigLoose = Config{
		Name:         "Loose",
		NumBins:      DefaultNumBins,
		MinBlockSize: 128,
		SplitSlack:   1024,
		GrowInPlace:  true,
	}

	// ConfigNoTailGrow disables grow-in-place, so every growing Realloc that
	// misses the bins copies.
	ConfigNoTailGrow = Config{
		Name:         "NoTailGrow",
		NumBins:      DefaultNumBins,
		MinBlockSize: DefaultMinBlockSize,
		SplitSlack:   DefaultSplitSlack,
	}
)

// Presets lists the predefined configurations in display order.
func Presets() []Config {
	return []Config{ConfigBalanced, ConfigTight, ConfigLoose, ConfigNoTailGrow}
}

// DefaultConfig returns a copy of ConfigBalanced.
func DefaultConfig() Config {
	return ConfigBalanced
}

// Validate reports the first invalid field, wrapped in ErrBadConfig.
// Zero values are valid and mean "use the default".
func (c Config) Validate() error {
	switch {
	case c.NumBins != 0 && (c.NumBins < minNumBins || c.NumBins > maxNumBins):
		return fmt.Errorf("%w: NumBins %d outside [%d, %d]", ErrBadConfig, c.NumBins, minNumBins, maxNumBins)
	case c.MinBlockSize < 0:
		return fmt.Errorf("%w: MinBlockSize %d is negative", ErrBadConfig, c.MinBlockSize)
	case c.SplitSlack < 0:
		return fmt.Errorf("%w: SplitSlack %d is negative", ErrBadConfig, c.SplitSlack)
	case c.MaxOversize < 0:
		return fmt.Errorf("%w: MaxOversize %d is negative", ErrBadConfig, c.MaxOversize)
	}
	return nil
}

// normalized fills defaults and rounds MinBlockSize up to a viable block.
func (c Config) normalized() Config {
	if c.NumBins == 0 {
		c.NumBins = DefaultNumBins
	}
	if c.MinBlockSize == 0 {
		c.MinBlockSize = DefaultMinBlockSize
	}
	c.MinBlockSize = max(format.Align8(c.MinBlockSize), format.MinViableBlock)
	return c
}

// String renders the tunables on one line.
func (c Config) String() string {
	name := c.Name
	if name == "" {
		name = "custom"
	}
	return fmt.Sprintf("%s(bins=%d min=%d slack=%d oversize=%d grow=%t)",
		name, c.NumBins, c.MinBlockSize, c.SplitSlack, c.MaxOversize, c.GrowInPlace)
}
