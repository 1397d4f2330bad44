package allocator

import (
	"fmt"

	"github.com/sbl8/strata/schedule"
)

// Bump places buffers end to end and never reuses a byte range. Suited to
// regions whose buffers stay live for the whole execution: model inputs,
// graph outputs and constants.
type Bump struct {
	config
	offset int
	allocs map[*schedule.PhysicalBuffer]schedule.Allocation
}

// NewBump creates a bump allocator for one region.
func NewBump(opts ...Option) *Bump {
	return &Bump{
		config: newConfig(opts),
		allocs: make(map[*schedule.PhysicalBuffer]schedule.Allocation),
	}
}

// Mark appends the buffer at the current offset.
func (a *Bump) Mark(b *schedule.PhysicalBuffer) error {
	size := AlignUp(b.SizeInBytes(), a.alignment)
	if a.capacity > 0 && a.offset+size > a.capacity {
		return fmt.Errorf("%w: need %d bytes at offset %d, capacity %d",
			schedule.ErrRegionExhausted, size, a.offset, a.capacity)
	}
	a.allocs[b] = schedule.Allocation{Start: a.offset, Size: size}
	a.offset += size
	return nil
}

// Finish freezes the allocator.
func (a *Bump) Finish() {}

// MaxUsage returns the total bytes bumped.
func (a *Bump) MaxUsage() int {
	return a.offset
}

// Allocations returns the byte range of every marked buffer.
func (a *Bump) Allocations() map[*schedule.PhysicalBuffer]schedule.Allocation {
	return a.allocs
}
