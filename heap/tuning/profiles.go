package tuning

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// ErrBadProfile indicates an invalid profile file entry.
var ErrBadProfile = errors.New("tuning: bad profile")

// NumClasses is the number of known trace classes (0 .. NumClasses-1).
const NumClasses = 9

// classTuning holds the measured per-class thresholds. minSize is the
// smallest block size, minDiff the split threshold beyond a header, and
// maxDiff the oversize bound at which a larger bin's head is rejected.
type classTuning struct {
	minSize, minDiff, maxDiff int
}

var (
	classTable = [NumClasses]classTuning{
		{minSize: 32, minDiff: 16, maxDiff: 262144},
		{minSize: 4, minDiff: 8, maxDiff: 131072},
		{minSize: 128, minDiff: 16, maxDiff: 128},
		{minSize: 8, minDiff: 256, maxDiff: 32768},
		{minSize: 128, minDiff: 1024, maxDiff: 262144},
		{minSize: 1, minDiff: 128, maxDiff: 262144},
		{minSize: 128, minDiff: 1024, maxDiff: 262144},
		{minSize: 1024, minDiff: 128, maxDiff: 262144},
		{minSize: 16, minDiff: 4, maxDiff: 131072},
	}
	defaultTuning = classTuning{minSize: 64, minDiff: 128, maxDiff: 512}
)

// config converts measured thresholds into an allocator Config. The
// oversize bound is recorded as MaxDiff but not applied: rejecting large
// heads lost more to arena growth than it saved.
func (c classTuning) config(name string) alloc.Config {
	cfg := alloc.DefaultConfig()
	cfg.Name = name
	cfg.MinBlockSize = max(format.Align8(c.minSize), format.MinViableBlock)
	cfg.SplitSlack = format.HeaderSize + c.minDiff
	return cfg
}

var classPattern = regexp.MustCompile(`trace_c(\d)_v(\d)`)

// ClassFromPath extracts the trace class from a trace_c{C}_v{V} file name.
func ClassFromPath(path string) (int, bool) {
	m := classPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, false
	}
	c, err := strconv.Atoi(m[1])
	if err != nil || c >= NumClasses {
		return 0, false
	}
	return c, true
}

// ForClass returns the built-in configuration for class, or the default
// profile for an unknown class.
func ForClass(class int) alloc.Config {
	if class < 0 || class >= NumClasses {
		return defaultTuning.config("default")
	}
	return classTable[class].config(fmt.Sprintf("class%d", class))
}

// MaxDiff returns the measured oversize bound for class. It is informational;
// ForClass leaves MaxOversize disabled.
func MaxDiff(class int) int {
	if class < 0 || class >= NumClasses {
		return defaultTuning.maxDiff
	}
	return classTable[class].maxDiff
}

// Profiles maps trace classes to configurations with a fallback for traces
// without a class.
type Profiles struct {
	byClass  map[int]alloc.Config
	fallback alloc.Config
}

// Builtin returns the built-in profile set.
func Builtin() Profiles {
	p := Profiles{byClass: make(map[int]alloc.Config, NumClasses), fallback: ForClass(-1)}
	for c := 0; c < NumClasses; c++ {
		p.byClass[c] = ForClass(c)
	}
	return p
}

// For returns the configuration for class; ok=false selects the fallback.
func (p Profiles) For(class int, ok bool) alloc.Config {
	if ok {
		if cfg, found := p.byClass[class]; found {
			return cfg
		}
	}
	return p.fallback
}

// Set replaces the configuration for class; class -1 sets the fallback.
func (p *Profiles) Set(class int, cfg alloc.Config) {
	if class < 0 {
		p.fallback = cfg
		return
	}
	if p.byClass == nil {
		p.byClass = make(map[int]alloc.Config)
	}
	p.byClass[class] = cfg
}

// ForPath returns the configuration for the trace at path.
func (p Profiles) ForPath(path string) alloc.Config {
	return p.For(ClassFromPath(path))
}

// Entry is one profile, in class order, with the fallback last.
type Entry struct {
	Class   int // -1 for the fallback
	MaxDiff int
	Config  alloc.Config
}

// Entries lists every profile.
func (p Profiles) Entries() []Entry {
	classes := make([]int, 0, len(p.byClass))
	for c := range p.byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	out := make([]Entry, 0, len(classes)+1)
	for _, c := range classes {
		out = append(out, Entry{Class: c, MaxDiff: MaxDiff(c), Config: p.byClass[c]})
	}
	return append(out, Entry{Class: -1, MaxDiff: MaxDiff(-1), Config: p.fallback})
}

// profileFile is the TOML layout:
//
//	[[profile]]
//	class = 3            # omit for the fallback profile
//	name = "c3-wide"
//	min_block_size = 64
//	split_slack = 288
//	max_oversize = 0
//	grow_in_place = true
//	num_bins = 26
type profileFile struct {
	Profile []profileEntry `toml:"profile"`
}

type profileEntry struct {
	Class        *int   `toml:"class"`
	Name         string `toml:"name"`
	NumBins      *int   `toml:"num_bins"`
	MinBlockSize *int   `toml:"min_block_size"`
	SplitSlack   *int   `toml:"split_slack"`
	MaxOversize  *int   `toml:"max_oversize"`
	GrowInPlace  *bool  `toml:"grow_in_place"`
}

// LoadFile reads a TOML profile file and applies it over the built-in
// profiles. Fields omitted in an entry keep the built-in value.
func LoadFile(path string) (Profiles, error) {
	var f profileFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return Profiles{}, fmt.Errorf("tuning: %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Profiles{}, fmt.Errorf("%w: %s: unknown key %q", ErrBadProfile, path, undec[0].String())
	}

	p := Builtin()
	for i, e := range f.Profile {
		var base alloc.Config
		switch {
		case e.Class == nil:
			base = p.fallback
		case *e.Class < 0 || *e.Class >= NumClasses:
			return Profiles{}, fmt.Errorf("%w: %s: profile %d: class %d outside [0, %d)",
				ErrBadProfile, path, i, *e.Class, NumClasses)
		default:
			base = p.byClass[*e.Class]
		}

		cfg := e.apply(base)
		if err := cfg.Validate(); err != nil {
			return Profiles{}, fmt.Errorf("%w: %s: profile %d: %w", ErrBadProfile, path, i, err)
		}
		if e.Class == nil {
			p.fallback = cfg
		} else {
			p.byClass[*e.Class] = cfg
		}
	}
	return p, nil
}

func (e profileEntry) apply(cfg alloc.Config) alloc.Config {
	if e.Name != "" {
		cfg.Name = e.Name
	}
	if e.NumBins != nil {
		cfg.NumBins = *e.NumBins
	}
	if e.MinBlockSize != nil {
		cfg.MinBlockSize = *e.MinBlockSize
	}
	if e.SplitSlack != nil {
		cfg.SplitSlack = *e.SplitSlack
	}
	if e.MaxOversize != nil {
		cfg.MaxOversize = *e.MaxOversize
	}
	if e.GrowInPlace != nil {
		cfg.GrowInPlace = *e.GrowInPlace
	}
	return cfg
}

// Encode writes every profile in the format LoadFile reads.
func (p Profiles) Encode(w io.Writer) error {
	var f profileFile
	for _, e := range p.Entries() {
		cfg := e.Config
		entry := profileEntry{
			Name:         cfg.Name,
			NumBins:      &cfg.NumBins,
			MinBlockSize: &cfg.MinBlockSize,
			SplitSlack:   &cfg.SplitSlack,
			MaxOversize:  &cfg.MaxOversize,
			GrowInPlace:  &cfg.GrowInPlace,
		}
		if e.Class >= 0 {
			class := e.Class
			entry.Class = &class
		}
		f.Profile = append(f.Profile, entry)
	}
	return toml.NewEncoder(w).Encode(f)
}
