package schedule

import "github.com/sbl8/strata/graph"

// fixConcatIndices assigns parent descriptors to the inputs of every
// concat demoted to a view, then chases chains of view-concats upward so
// each leaf input carries its absolute offset inside the outermost
// concat's buffer. Adjacent view-concats must share a single physical
// footprint.
func (s *Scheduler) fixConcatIndices() error {
	return graph.Visit(s.outputs, func(n *graph.Node) error {
		c, ok := n.Concat()
		if !ok || n.Attributes()&graph.AttrAction != 0 {
			return nil
		}

		outBuf := s.logical[n.Output(0)]
		begin := n.Input(0).Shape().Zeros()
		for _, in := range n.Inputs() {
			inBuf := s.logical[in.Connection()]
			inBuf.parent = &ParentDescriptor{Parent: outBuf, Begin: cloneInts(begin)}
			begin[c.Axis] += in.Shape()[c.Axis]
		}

		child := n
		for {
			parent := directViewConcat(child)
			if parent == nil {
				break
			}
			pc, _ := parent.Concat()
			index := inputIndex(parent, child.Output(0))

			childBegin := child.Output(0).Shape().Zeros()
			for i := 0; i < index; i++ {
				childBegin[pc.Axis] += pc.Dims[i]
			}

			childBuf := s.logical[child.Output(0)]
			parentBuf := s.logical[parent.Output(0)]
			childBuf.parent = &ParentDescriptor{Parent: parentBuf, Begin: cloneInts(childBegin)}
			for _, in := range n.Inputs() {
				desc := s.logical[in.Connection()].parent
				desc.Parent = parentBuf
				addInts(desc.Begin, childBegin)
			}

			child = parent
		}
		return nil
	})
}

// directViewConcat returns the node's sole consumer when it is a concat
// already demoted to a view, nil otherwise.
func directViewConcat(n *graph.Node) *graph.Node {
	conns := n.Output(0).Connections()
	if len(conns) != 1 {
		return nil
	}
	owner := conns[0].Owner()
	if owner.Op() != graph.OpConcat || owner.Attributes()&graph.AttrAction != 0 {
		return nil
	}
	return owner
}

// inputIndex locates conn among n's inputs.
func inputIndex(n *graph.Node, conn *graph.OutputConnector) int {
	for i, in := range n.Inputs() {
		if in.Connection() == conn {
			return i
		}
	}
	return -1
}

func cloneInts(v []int) []int {
	c := make([]int, len(v))
	copy(c, v)
	return c
}

func addInts(dst, src []int) {
	for i := range src {
		dst[i] += src[i]
	}
}
