package allocator

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"

	"github.com/sbl8/strata/schedule"
)

// placement is a marked buffer's byte range inside the region.
type placement struct {
	buf   *schedule.PhysicalBuffer
	start int
	size  int
}

// FirstFit places each buffer at the lowest offset whose byte range does
// not overlap any marked buffer with an intersecting lifetime. Buffers
// with disjoint lifetimes may share bytes, which is what lets scratch
// tensors reuse one another's storage.
type FirstFit struct {
	config
	// marked orders placements by start offset; disjoint-lifetime buffers
	// can share a start, so values are placement slices.
	marked   *treemap.Map
	allocs   map[*schedule.PhysicalBuffer]schedule.Allocation
	maxUsage int
	finished bool
}

// NewFirstFit creates a first-fit allocator for one region.
func NewFirstFit(opts ...Option) *FirstFit {
	return &FirstFit{
		config: newConfig(opts),
		marked: treemap.NewWith(utils.IntComparator),
		allocs: make(map[*schedule.PhysicalBuffer]schedule.Allocation),
	}
}

// Mark binds the buffer to the first gap wide enough among currently-live
// placements.
func (f *FirstFit) Mark(b *schedule.PhysicalBuffer) error {
	size := AlignUp(b.SizeInBytes(), f.alignment)
	life := b.Lifetime()

	var live []placement
	it := f.marked.Iterator()
	for it.Next() {
		for _, p := range it.Value().([]placement) {
			if life.Overlaps(p.buf.Lifetime()) {
				live = append(live, p)
			}
		}
	}

	start := 0
	for _, p := range live {
		if p.start-start >= size {
			break
		}
		if end := p.start + p.size; end > start {
			start = end
		}
	}

	if f.capacity > 0 && start+size > f.capacity {
		return fmt.Errorf("%w: need %d bytes at offset %d, capacity %d",
			schedule.ErrRegionExhausted, size, start, f.capacity)
	}

	p := placement{buf: b, start: start, size: size}
	if existing, ok := f.marked.Get(start); ok {
		f.marked.Put(start, append(existing.([]placement), p))
	} else {
		f.marked.Put(start, []placement{p})
	}
	f.allocs[b] = schedule.Allocation{Start: start, Size: size}
	if end := start + size; end > f.maxUsage {
		f.maxUsage = end
	}
	return nil
}

// Finish freezes the allocator.
func (f *FirstFit) Finish() {
	f.finished = true
}

// MaxUsage returns the peak usage across all marked buffers.
func (f *FirstFit) MaxUsage() int {
	return f.maxUsage
}

// Allocations returns the byte range of every marked buffer.
func (f *FirstFit) Allocations() map[*schedule.PhysicalBuffer]schedule.Allocation {
	return f.allocs
}
