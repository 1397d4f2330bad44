// Package strata implements the memory scheduler of a neural-network compiler.
//
// Strata consumes a fully-typed dataflow graph of tensor operations and a
// target description, and produces a schedule artifact: an execution order,
// a byte-level allocation for every node output, and the peak usage of each
// memory region. Downstream code generation consumes the artifact verbatim.
//
// # Architecture Overview
//
// Scheduling is a fixed pipeline executed once per graph:
//
//   - Lifetime builder: post-order walk assigning each output a logical
//     buffer with birth age and consumer count
//   - Alias analyser: demotes bitcast and concat nodes from actions to
//     views when their outputs are sub-regions of another buffer
//   - Concat index resolver: absolute offsets for chained concat views
//   - Lifetime closer: fuses aliased lifetimes into their roots
//   - Physical pool: one physical buffer per alias root
//   - Region allocator: places physical buffers in named memory regions
//     (input, output, rdata, data) via a pluggable allocator bank
//   - Allocation materialiser: per-output offset, size, shape, strides
//
// # Basic Usage
//
//	// Describe a graph and schedule it for the CPU target
//	g, err := compiler.Parse(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sched := schedule.New(target.NewCPU(), g.Outputs())
//	result, err := sched.Schedule()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, node := range result.ComputeSequence {
//	    fmt.Println(node.Name())
//	}
//
// # Package Structure
//
//   - graph: dataflow graph entities (nodes, connectors, shapes, types)
//   - schedule: the scheduling pipeline and its result artifact
//   - allocator: region allocator implementations (first-fit, bump)
//   - target: target descriptions binding allocators to memory regions
//   - compiler: text frontend for describing graphs (.sgr)
//   - cmd: command-line tools (stratac)
//
// For more information, see the documentation at https://pkg.go.dev/github.com/sbl8/strata
// and the project repository at https://github.com/sbl8/strata
package strata
