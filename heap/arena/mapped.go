package arena

// MappedOptions configures a file-backed arena.
type MappedOptions struct {
	// Limit is the maximum logical arena size. Default: DefaultLimit.
	Limit int

	// Chunk is the granularity by which the backing file and mapping grow.
	// Rounded up to the OS page size. Default: 1 MB.
	Chunk int
}

const defaultChunk = 1 << 20

func (o MappedOptions) withDefaults(pageSize int) MappedOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Chunk <= 0 {
		o.Chunk = defaultChunk
	}
	if rem := o.Chunk % pageSize; rem != 0 {
		o.Chunk += pageSize - rem
	}
	return o
}

// roundUp rounds n up to a multiple of unit.
func roundUp(n, unit int) int {
	if rem := n % unit; rem != 0 {
		return n + unit - rem
	}
	return n
}
