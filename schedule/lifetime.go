package schedule

import (
	"fmt"

	"github.com/sbl8/strata/graph"
)

// lifetimeRecorder assigns logical buffers and tracks their lifetimes
// against a monotone age clock that advances once per visited node.
type lifetimeRecorder struct {
	age     int
	nextID  int
	buffers map[*graph.OutputConnector]*LogicalBuffer
	order   []*LogicalBuffer // creation order, for deterministic iteration
}

func newLifetimeRecorder() *lifetimeRecorder {
	return &lifetimeRecorder{
		buffers: make(map[*graph.OutputConnector]*LogicalBuffer),
	}
}

// decideMemoryLocation classifies a connector's buffer: input-node outputs
// land in the input region, constants in rdata, buffers consumed by an
// output node in the output region, everything else in scratch.
func decideMemoryLocation(conn *graph.OutputConnector) MemoryLocation {
	switch conn.Owner().Op() {
	case graph.OpInputNode:
		return MemInput
	case graph.OpConstant:
		return MemRdata
	}
	for _, in := range conn.Connections() {
		if in.Owner().Op() == graph.OpOutputNode {
			return MemOutput
		}
	}
	return MemData
}

// allocate creates the connector's logical buffer on first sight. Birth is
// the current age; the consumer count seeds the release countdown.
func (r *lifetimeRecorder) allocate(conn *graph.OutputConnector) {
	if _, ok := r.buffers[conn]; ok {
		return
	}
	b := &LogicalBuffer{
		id:       r.nextID,
		owner:    conn,
		location: decideMemoryLocation(conn),
		lifetime: Lifetime{
			Birth:     r.age,
			UsedCount: len(conn.Connections()),
		},
	}
	r.nextID++
	r.buffers[conn] = b
	r.order = append(r.order, b)
}

// release decrements the buffer's remaining consumer count. Releasing a
// buffer that is already dead means the visitor freed it twice.
func (r *lifetimeRecorder) release(conn *graph.OutputConnector) error {
	b, ok := r.buffers[conn]
	if !ok {
		return nil
	}
	if !b.lifetime.IsAlive() {
		return fmt.Errorf("%w: %s:%d", ErrDoubleRelease, conn.Owner().Name(), conn.Index())
	}
	b.lifetime.UsedCount--
	return nil
}

// growAge advances the clock one tick; every still-alive buffer ages.
func (r *lifetimeRecorder) growAge() {
	r.age++
	for _, b := range r.order {
		if b.lifetime.IsAlive() {
			b.lifetime.Age++
		}
	}
}
