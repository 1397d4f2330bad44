package schedule

import "github.com/sbl8/strata/graph"

// Result is the schedule artifact consumed verbatim by code generation.
type Result struct {
	// ComputeSequence lists the action nodes in execution order.
	ComputeSequence []*graph.Node
	// Allocations maps every reachable output connector to its byte-level
	// allocation.
	Allocations map[*graph.OutputConnector]BufferAllocation
	// MaxUsages records the peak byte usage of each registered region.
	MaxUsages map[MemoryLocation]int
}
