package schedule

import "github.com/sbl8/strata/graph"

// analyzeBufferAlias demotes view-like operators from actions to pure
// aliases where their output can be expressed as a sub-region of another
// buffer. Bitcast parents are assigned here; concat parents are deferred
// to fixConcatIndices because chained concats need cumulative offsets.
func (s *Scheduler) analyzeBufferAlias() error {
	return graph.Visit(s.outputs, func(n *graph.Node) error {
		switch n.Op() {
		case graph.OpBitcast:
			s.aliasBitcast(n)
		case graph.OpConcat:
			s.aliasConcat(n)
		}
		return nil
	})
}

func (s *Scheduler) aliasBitcast(n *graph.Node) {
	input := n.Input(0).Connection()
	inBuf := s.logical[input]
	outBuf := s.logical[n.Output(0)]

	// The reshape is free: the earlier buffer directly is the graph output.
	if outBuf.location == MemOutput && inBuf.location == MemData {
		inBuf.location = MemOutput
	}

	// Externally-owned inputs and constants must be copied into outputs,
	// never aliased.
	if outBuf.location != MemOutput ||
		(inBuf.location != MemInput && inBuf.location != MemRdata) {
		outBuf.parent = &ParentDescriptor{Parent: inBuf, Begin: input.Shape().Zeros()}
		n.SetAttributes(n.Attributes() &^ graph.AttrAction)
	}
}

func (s *Scheduler) aliasConcat(n *graph.Node) {
	c, _ := n.Concat()
	inputs := n.Inputs()
	consumers := n.Output(0).Connections()

	// Only a concat along the outermost non-unit axis keeps its inputs
	// contiguous inside the output layout.
	outer := c.Axis == 0
	if !outer {
		outer = true
		for _, d := range inputs[0].Shape()[:c.Axis] {
			if d != 1 {
				outer = false
				break
			}
		}
	}
	if !outer {
		return
	}

	for _, in := range inputs {
		inBuf := s.logical[in.Connection()]
		if inBuf.location == MemInput || inBuf.location == MemRdata {
			return
		}
		// Slicing already constrains the producer's layout.
		if in.Connection().Owner().Op() == graph.OpSlice {
			return
		}
	}

	// Fan-out into competing concat parents would collapse parent chains
	// incorrectly.
	concats := 0
	for _, in := range consumers {
		if in.Owner().Op() == graph.OpConcat {
			concats++
		}
	}
	if concats >= 2 {
		return
	}

	// Parents are fixed later, once the whole view chain is known.
	n.SetAttributes(n.Attributes() &^ graph.AttrAction)
}
