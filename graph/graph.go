// Package graph defines the dataflow graph representation scheduled by strata.
//
// A graph is a set of nodes connected through typed connectors. Each node
// owns an ordered list of input connectors and an ordered list of output
// connectors; an input connector references exactly one producing output
// connector, and an output connector tracks the set of its consumers. The
// scheduler reads this topology and toggles node attribute bits, but never
// owns or extends node lifetimes.
//
// Key data structures:
//   - Node: operation with opcode, attribute bitmask and connectors
//   - OutputConnector: produced tensor with shape, type and consumers
//   - InputConnector: consumption site referencing one producer
//   - Graph: container with lookup helpers for terminal nodes
package graph

import "fmt"

// Attributes is a per-node bitmask of scheduling properties.
type Attributes uint32

const (
	// AttrNone marks a node with no special properties.
	AttrNone Attributes = 0
	// AttrAction marks a node that must execute at runtime. The alias
	// analyser clears it on nodes demoted to views.
	AttrAction Attributes = 1 << 0
)

// Node is a single operation in the dataflow graph.
type Node struct {
	name    string
	op      Opcode
	attrs   Attributes
	inputs  []*InputConnector
	outputs []*OutputConnector

	concat *ConcatInfo
	slice  *SliceInfo
	data   []byte // constant payload, OpConstant only
}

// ConcatInfo carries the semantic attributes of a concat node.
type ConcatInfo struct {
	Axis int
	// Dims holds each input's extent along Axis, in input order.
	Dims []int
}

// SliceInfo carries the semantic attributes of a slice node.
type SliceInfo struct {
	Begin []int
	End   []int
}

// Name returns the node's unique name within its graph.
func (n *Node) Name() string { return n.name }

// Op returns the node's opcode.
func (n *Node) Op() Opcode { return n.op }

// Attributes returns the node's attribute bitmask.
func (n *Node) Attributes() Attributes { return n.attrs }

// SetAttributes replaces the node's attribute bitmask.
func (n *Node) SetAttributes(a Attributes) { n.attrs = a }

// Inputs returns the node's input connectors in declaration order.
func (n *Node) Inputs() []*InputConnector { return n.inputs }

// Outputs returns the node's output connectors in declaration order.
func (n *Node) Outputs() []*OutputConnector { return n.outputs }

// Input returns the i-th input connector.
func (n *Node) Input(i int) *InputConnector { return n.inputs[i] }

// Output returns the i-th output connector.
func (n *Node) Output(i int) *OutputConnector { return n.outputs[i] }

// Concat returns the concat attributes and true for OpConcat nodes.
func (n *Node) Concat() (*ConcatInfo, bool) {
	return n.concat, n.concat != nil
}

// Slice returns the slice attributes and true for OpSlice nodes.
func (n *Node) Slice() (*SliceInfo, bool) {
	return n.slice, n.slice != nil
}

// Data returns the constant payload of an OpConstant node, nil otherwise.
func (n *Node) Data() []byte { return n.data }

// OutputConnector is a tensor produced by a node.
type OutputConnector struct {
	owner *Node
	index int
	shape Shape
	typ   DataType
	conns []*InputConnector
}

// Owner returns the producing node.
func (o *OutputConnector) Owner() *Node { return o.owner }

// Index returns the connector's position among the owner's outputs.
func (o *OutputConnector) Index() int { return o.index }

// Shape returns the produced tensor shape.
func (o *OutputConnector) Shape() Shape { return o.shape }

// Type returns the produced element type.
func (o *OutputConnector) Type() DataType { return o.typ }

// Connections returns the consumers of this output in connection order.
func (o *OutputConnector) Connections() []*InputConnector { return o.conns }

// InputConnector is a consumption site on a node.
type InputConnector struct {
	owner *Node
	index int
	conn  *OutputConnector
}

// Owner returns the consuming node.
func (i *InputConnector) Owner() *Node { return i.owner }

// Index returns the connector's position among the owner's inputs.
func (i *InputConnector) Index() int { return i.index }

// Connection returns the producing output connector, or nil if unconnected.
func (i *InputConnector) Connection() *OutputConnector { return i.conn }

// Shape returns the shape flowing into this input; nil while unconnected.
func (i *InputConnector) Shape() Shape {
	if i.conn == nil {
		return nil
	}
	return i.conn.shape
}

// Connect wires this input to the given producer, detaching any previous
// connection.
func (i *InputConnector) Connect(o *OutputConnector) {
	if i.conn == o {
		return
	}
	if i.conn != nil {
		i.conn.removeConnection(i)
	}
	i.conn = o
	if o != nil {
		o.conns = append(o.conns, i)
	}
}

func (o *OutputConnector) removeConnection(in *InputConnector) {
	for k, c := range o.conns {
		if c == in {
			o.conns = append(o.conns[:k], o.conns[k+1:]...)
			return
		}
	}
}

func newNode(name string, op Opcode, attrs Attributes, inputs int) *Node {
	n := &Node{name: name, op: op, attrs: attrs}
	for i := 0; i < inputs; i++ {
		n.inputs = append(n.inputs, &InputConnector{owner: n, index: i})
	}
	return n
}

func (n *Node) addOutput(typ DataType, shape Shape) *OutputConnector {
	o := &OutputConnector{owner: n, index: len(n.outputs), typ: typ, shape: shape.Clone()}
	n.outputs = append(n.outputs, o)
	return o
}

// NewInput creates a graph input node producing one tensor.
func NewInput(name string, typ DataType, shape Shape) *Node {
	n := newNode(name, OpInputNode, AttrNone, 0)
	n.addOutput(typ, shape)
	return n
}

// NewOutput creates a graph output node consuming one tensor.
func NewOutput(name string) *Node {
	return newNode(name, OpOutputNode, AttrNone, 1)
}

// NewConstant creates a constant node carrying the given payload bytes.
func NewConstant(name string, typ DataType, shape Shape, data []byte) *Node {
	n := newNode(name, OpConstant, AttrNone, 0)
	n.addOutput(typ, shape)
	n.data = data
	return n
}

// NewBitcast creates a shape-only operator reinterpreting its input as
// newShape. The element count must be preserved.
func NewBitcast(name string, typ DataType, inShape, newShape Shape) (*Node, error) {
	if inShape.Elements() != newShape.Elements() {
		return nil, fmt.Errorf("bitcast %s: element count mismatch %v -> %v", name, inShape, newShape)
	}
	n := newNode(name, OpBitcast, AttrAction, 1)
	n.addOutput(typ, newShape)
	return n, nil
}

// NewConcat creates a concat node joining the given input shapes along axis.
// All inputs must agree on every dimension except the concat axis.
func NewConcat(name string, typ DataType, axis int, inShapes []Shape) (*Node, error) {
	if len(inShapes) == 0 {
		return nil, fmt.Errorf("concat %s: no inputs", name)
	}
	rank := inShapes[0].Rank()
	if axis < 0 || axis >= rank {
		return nil, fmt.Errorf("concat %s: axis %d out of range for rank %d", name, axis, rank)
	}
	out := inShapes[0].Clone()
	dims := make([]int, 0, len(inShapes))
	total := 0
	for i, s := range inShapes {
		if s.Rank() != rank {
			return nil, fmt.Errorf("concat %s: input %d rank %d != %d", name, i, s.Rank(), rank)
		}
		for d := 0; d < rank; d++ {
			if d != axis && s[d] != out[d] {
				return nil, fmt.Errorf("concat %s: input %d dim %d mismatch", name, i, d)
			}
		}
		dims = append(dims, s[axis])
		total += s[axis]
	}
	out[axis] = total

	n := newNode(name, OpConcat, AttrAction, len(inShapes))
	n.addOutput(typ, out)
	n.concat = &ConcatInfo{Axis: axis, Dims: dims}
	return n, nil
}

// NewSlice creates a slice node extracting [begin, end) from inShape.
func NewSlice(name string, typ DataType, inShape Shape, begin, end []int) (*Node, error) {
	if len(begin) != inShape.Rank() || len(end) != inShape.Rank() {
		return nil, fmt.Errorf("slice %s: bounds rank mismatch", name)
	}
	out := make(Shape, inShape.Rank())
	for i := range out {
		if begin[i] < 0 || end[i] > inShape[i] || begin[i] > end[i] {
			return nil, fmt.Errorf("slice %s: bounds [%d,%d) invalid for dim %d", name, begin[i], end[i], inShape[i])
		}
		out[i] = end[i] - begin[i]
	}
	n := newNode(name, OpSlice, AttrAction, 1)
	n.addOutput(typ, out)
	n.slice = &SliceInfo{Begin: begin, End: end}
	return n, nil
}

// NewUnary creates a one-input elementwise compute node.
func NewUnary(name string, op Opcode, typ DataType, shape Shape) *Node {
	n := newNode(name, op, AttrAction, 1)
	n.addOutput(typ, shape)
	return n
}

// NewBinary creates a two-input compute node producing outShape.
func NewBinary(name string, op Opcode, typ DataType, outShape Shape) *Node {
	n := newNode(name, op, AttrAction, 2)
	n.addOutput(typ, outShape)
	return n
}

// Graph is a container for the nodes of one model.
type Graph struct {
	nodes []*Node
}

// Add appends nodes to the graph.
func (g *Graph) Add(nodes ...*Node) {
	g.nodes = append(g.nodes, nodes...)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Outputs returns the terminal output nodes in insertion order. These are
// the traversal roots handed to the scheduler.
func (g *Graph) Outputs() []*Node {
	var outs []*Node
	for _, n := range g.nodes {
		if n.op == OpOutputNode {
			outs = append(outs, n)
		}
	}
	return outs
}

// Inputs returns the graph input nodes in insertion order.
func (g *Graph) Inputs() []*Node {
	var ins []*Node
	for _, n := range g.nodes {
		if n.op == OpInputNode {
			ins = append(ins, n)
		}
	}
	return ins
}

// Find returns the node with the given name, or nil.
func (g *Graph) Find(name string) *Node {
	for _, n := range g.nodes {
		if n.name == name {
			return n
		}
	}
	return nil
}
