package schedule

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/sbl8/strata/graph"
)

// Scheduler derives the memory plan for one graph. It is single-threaded
// and synchronous; construct one per schedule.
type Scheduler struct {
	target  Target
	outputs []*graph.Node

	logical  map[*graph.OutputConnector]*LogicalBuffer
	order    []*LogicalBuffer
	physical []*PhysicalBuffer
}

// New creates a scheduler for the graph reachable from the given terminal
// nodes. The target supplies the allocator bank.
func New(target Target, outputs []*graph.Node) *Scheduler {
	return &Scheduler{target: target, outputs: outputs}
}

// Schedule runs the pipeline and returns the schedule artifact. On error
// the graph's attribute bits are undefined and the result is nil.
func (s *Scheduler) Schedule() (*Result, error) {
	result := &Result{
		Allocations: make(map[*graph.OutputConnector]BufferAllocation),
		MaxUsages:   make(map[MemoryLocation]int),
	}

	if err := s.makeLogicalBuffers(); err != nil {
		return nil, err
	}
	slog.Debug("scheduler: logical buffers built", "count", len(s.order))

	if err := s.analyzeBufferAlias(); err != nil {
		return nil, err
	}
	if err := s.fixConcatIndices(); err != nil {
		return nil, err
	}
	s.fixLifetime()

	if err := s.generateComputeSequence(result); err != nil {
		return nil, err
	}
	slog.Debug("scheduler: compute sequence", "actions", len(result.ComputeSequence))

	s.makePhysicalBuffers()
	if err := s.allocatePhysicalBuffers(result); err != nil {
		return nil, err
	}
	if err := s.assignAllocations(result); err != nil {
		return nil, err
	}
	return result, nil
}

// makeLogicalBuffers walks the graph in post order, creating each output's
// buffer at its producer's visit and releasing it once per consumer visit.
func (s *Scheduler) makeLogicalBuffers() error {
	rec := newLifetimeRecorder()
	err := graph.Visit(s.outputs, func(n *graph.Node) error {
		for _, out := range n.Outputs() {
			if !out.Shape().Valid() {
				return fmt.Errorf("%w: %s produces shape %v", ErrUnsupportedOperator, n.Name(), out.Shape())
			}
			rec.allocate(out)
		}

		rec.growAge()

		for _, in := range n.Inputs() {
			if err := rec.release(in.Connection()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logical = rec.buffers
	s.order = rec.order
	return nil
}

// fixLifetime flattens parent chains onto their roots, then widens each
// root's lifetime to cover every alias. The root footprint must be live
// whenever any alias is.
func (s *Scheduler) fixLifetime() {
	for _, b := range s.order {
		for b.parent != nil && b.parent.Parent.parent != nil {
			up := b.parent.Parent.parent
			b.parent = &ParentDescriptor{Parent: up.Parent, Begin: cloneInts(up.Begin)}
		}
	}

	for _, b := range s.order {
		if b.parent == nil {
			continue
		}
		root := &b.parent.Parent.lifetime
		birth := min(b.lifetime.Birth, root.Birth)
		end := max(b.lifetime.End(), root.End())
		root.Birth = birth
		root.Age = end - birth
	}
}

// generateComputeSequence emits, in topological order, the nodes that
// still carry the action bit. Demoted views are intentionally absent.
func (s *Scheduler) generateComputeSequence(result *Result) error {
	return graph.Visit(s.outputs, func(n *graph.Node) error {
		if n.Attributes()&graph.AttrAction != 0 {
			result.ComputeSequence = append(result.ComputeSequence, n)
		}
		return nil
	})
}

// makePhysicalBuffers allocates one physical buffer per alias root and
// binds every logical buffer to its root's physical.
func (s *Scheduler) makePhysicalBuffers() {
	for _, b := range s.order {
		if b.parent == nil {
			p := &PhysicalBuffer{id: len(s.physical), owner: b}
			s.physical = append(s.physical, p)
			b.physical = p
		}
	}
	for _, b := range s.order {
		if b.parent != nil {
			b.physical = b.parent.Parent.physical
		}
	}
}

// allocatePhysicalBuffers feeds physical buffers, in ascending birth
// order, to the allocator of their region, then freezes every allocator
// and records peak usages.
func (s *Scheduler) allocatePhysicalBuffers(result *Result) error {
	bank := make(map[MemoryLocation]Allocator)
	s.target.RegisterAllocators(bank)

	orders := make([]*PhysicalBuffer, len(s.physical))
	copy(orders, s.physical)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].owner.lifetime.Birth < orders[j].owner.lifetime.Birth
	})

	for _, b := range orders {
		alloc, ok := bank[b.owner.location]
		if !ok {
			return fmt.Errorf("schedule: target registers no allocator for %s region", b.owner.location)
		}
		if err := alloc.Mark(b); err != nil {
			return fmt.Errorf("%s region, %d bytes: %w", b.owner.location, b.SizeInBytes(), err)
		}
	}

	for _, loc := range Locations() {
		alloc, ok := bank[loc]
		if !ok {
			continue
		}
		alloc.Finish()
		result.MaxUsages[loc] = alloc.MaxUsage()
		slog.Debug("scheduler: region frozen", "region", loc.String(), "max_usage", alloc.MaxUsage())
	}

	for _, b := range s.physical {
		b.allocation = bank[b.owner.location].Allocations()[b]
	}
	return nil
}

// assignAllocations materialises the per-output byte-level records. An
// aliased buffer addresses its root's range through the root's strides; a
// bitcast reinterprets the same bytes, so its declared parent shape is its
// own.
func (s *Scheduler) assignAllocations(result *Result) error {
	return graph.Visit(s.outputs, func(n *graph.Node) error {
		for _, out := range n.Outputs() {
			lbuf := s.logical[out]
			owner := lbuf.physical.owner
			memory := lbuf.physical.allocation

			alloc := BufferAllocation{
				MemoryLocation: owner.location,
				Type:           lbuf.Type(),
				Size:           lbuf.Type().Bytes(lbuf.Shape()),
				Shape:          lbuf.Shape().Clone(),
			}
			if lbuf.parent != nil && n.Op() != graph.OpBitcast {
				alloc.ParentShape = owner.Shape().Clone()
			} else {
				alloc.ParentShape = lbuf.Shape().Clone()
			}
			alloc.Strides = rowMajorStrides(alloc.ParentShape)
			alloc.Start = memory.Start
			if lbuf.parent != nil {
				alloc.Start += lbuf.Type().Size() * elementOffset(alloc.Strides, lbuf.parent.Begin)
			}
			result.Allocations[out] = alloc
		}
		return nil
	})
}
