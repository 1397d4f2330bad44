// Package compiler parses .sgr graph descriptions into dataflow graphs.
//
// The .sgr format is a small line-oriented DSL for describing the tensor
// graphs strata schedules, used by the stratac tool and by examples. It is
// a development harness, not a model importer: frontends for real model
// formats live outside this repository.
//
// Directives:
//
//	input <name> <type> <shape>
//	const <name> <type> <shape> <values...>
//	<op> <name> <inputs...>              # relu, sigmoid, tanh, add, mul, matmul
//	bitcast <name> <shape> <input>
//	concat <name> <axis> <inputs...>
//	slice <name> <input> <begin> <end>
//	output <name> <input>
//
// Shapes and coordinates are written as [2,3]; lines starting with # are
// comments. Producers must be declared before their consumers.
package compiler

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sbl8/strata/graph"
)

// Parse turns an .sgr source into a graph.
func Parse(src []byte) (*graph.Graph, error) {
	p := &parser{
		graph: &graph.Graph{},
		nodes: make(map[string]*graph.Node),
	}

	lines := strings.Split(string(src), "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.parseLine(line); err != nil {
			return nil, fmt.Errorf("line %d: %v", i+1, err)
		}
	}
	return p.graph, nil
}

// ParseFile reads and parses an .sgr file.
func ParseFile(path string) (*graph.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(src)
}

// parser accumulates nodes as directives are processed.
type parser struct {
	graph *graph.Graph
	nodes map[string]*graph.Node
}

// parseLine dispatches a single directive.
func (p *parser) parseLine(line string) error {
	fields := strings.Fields(line)

	switch fields[0] {
	case "input":
		return p.parseInput(fields)
	case "const":
		return p.parseConst(fields)
	case "bitcast":
		return p.parseBitcast(fields)
	case "concat":
		return p.parseConcat(fields)
	case "slice":
		return p.parseSlice(fields)
	case "output":
		return p.parseOutput(fields)
	default:
		return p.parseCompute(fields)
	}
}

func (p *parser) parseInput(fields []string) error {
	if len(fields) != 4 {
		return fmt.Errorf("invalid input spec: want 'input <name> <type> <shape>'")
	}
	typ, err := graph.ParseDataType(fields[2])
	if err != nil {
		return err
	}
	shape, err := parseShape(fields[3])
	if err != nil {
		return err
	}
	return p.define(fields[1], graph.NewInput(fields[1], typ, shape))
}

func (p *parser) parseConst(fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("invalid const spec: want 'const <name> <type> <shape> <values...>'")
	}
	typ, err := graph.ParseDataType(fields[2])
	if err != nil {
		return err
	}
	shape, err := parseShape(fields[3])
	if err != nil {
		return err
	}

	vals := make([]float32, 0, len(fields)-4)
	for _, f := range fields[4:] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return fmt.Errorf("invalid const value %q: %v", f, err)
		}
		vals = append(vals, float32(v))
	}
	if len(vals) != shape.Elements() {
		return fmt.Errorf("const %s: %d values for shape %v", fields[1], len(vals), shape)
	}
	data, err := graph.EncodeScalars(typ, vals)
	if err != nil {
		return err
	}
	return p.define(fields[1], graph.NewConstant(fields[1], typ, shape, data))
}

func (p *parser) parseBitcast(fields []string) error {
	if len(fields) != 4 {
		return fmt.Errorf("invalid bitcast spec: want 'bitcast <name> <shape> <input>'")
	}
	shape, err := parseShape(fields[2])
	if err != nil {
		return err
	}
	in, err := p.lookup(fields[3])
	if err != nil {
		return err
	}
	n, err := graph.NewBitcast(fields[1], in.Output(0).Type(), in.Output(0).Shape(), shape)
	if err != nil {
		return err
	}
	n.Input(0).Connect(in.Output(0))
	return p.define(fields[1], n)
}

func (p *parser) parseConcat(fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("invalid concat spec: want 'concat <name> <axis> <inputs...>'")
	}
	axis, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("invalid concat axis %q: %v", fields[2], err)
	}

	var producers []*graph.Node
	var shapes []graph.Shape
	for _, name := range fields[3:] {
		in, err := p.lookup(name)
		if err != nil {
			return err
		}
		producers = append(producers, in)
		shapes = append(shapes, in.Output(0).Shape())
	}
	n, err := graph.NewConcat(fields[1], producers[0].Output(0).Type(), axis, shapes)
	if err != nil {
		return err
	}
	for i, in := range producers {
		n.Input(i).Connect(in.Output(0))
	}
	return p.define(fields[1], n)
}

func (p *parser) parseSlice(fields []string) error {
	if len(fields) != 5 {
		return fmt.Errorf("invalid slice spec: want 'slice <name> <input> <begin> <end>'")
	}
	in, err := p.lookup(fields[2])
	if err != nil {
		return err
	}
	begin, err := parseShape(fields[3])
	if err != nil {
		return err
	}
	end, err := parseShape(fields[4])
	if err != nil {
		return err
	}
	n, err := graph.NewSlice(fields[1], in.Output(0).Type(), in.Output(0).Shape(), begin, end)
	if err != nil {
		return err
	}
	n.Input(0).Connect(in.Output(0))
	return p.define(fields[1], n)
}

func (p *parser) parseOutput(fields []string) error {
	if len(fields) != 3 {
		return fmt.Errorf("invalid output spec: want 'output <name> <input>'")
	}
	in, err := p.lookup(fields[2])
	if err != nil {
		return err
	}
	n := graph.NewOutput(fields[1])
	n.Input(0).Connect(in.Output(0))
	return p.define(fields[1], n)
}

func (p *parser) parseCompute(fields []string) error {
	op, ok := graph.ComputeOpcode(fields[0])
	if !ok {
		return fmt.Errorf("unknown directive: %s", fields[0])
	}
	if len(fields) < 3 {
		return fmt.Errorf("invalid %s spec: want '%s <name> <inputs...>'", fields[0], fields[0])
	}

	var producers []*graph.Node
	for _, name := range fields[2:] {
		in, err := p.lookup(name)
		if err != nil {
			return err
		}
		producers = append(producers, in)
	}

	var n *graph.Node
	switch {
	case op == graph.OpMatMul:
		if len(producers) != 2 {
			return fmt.Errorf("matmul %s: want 2 inputs", fields[1])
		}
		a, b := producers[0].Output(0).Shape(), producers[1].Output(0).Shape()
		if a.Rank() != 2 || b.Rank() != 2 || a[1] != b[0] {
			return fmt.Errorf("matmul %s: incompatible shapes %v x %v", fields[1], a, b)
		}
		n = graph.NewBinary(fields[1], op, producers[0].Output(0).Type(), graph.Shape{a[0], b[1]})
	case len(producers) == 1:
		n = graph.NewUnary(fields[1], op, producers[0].Output(0).Type(), producers[0].Output(0).Shape())
	case len(producers) == 2:
		n = graph.NewBinary(fields[1], op, producers[0].Output(0).Type(), producers[0].Output(0).Shape())
	default:
		return fmt.Errorf("%s %s: want 1 or 2 inputs, got %d", fields[0], fields[1], len(producers))
	}

	for i, in := range producers {
		n.Input(i).Connect(in.Output(0))
	}
	return p.define(fields[1], n)
}

func (p *parser) define(name string, n *graph.Node) error {
	if _, ok := p.nodes[name]; ok {
		return fmt.Errorf("duplicate node name %q", name)
	}
	p.nodes[name] = n
	p.graph.Add(n)
	return nil
}

func (p *parser) lookup(name string) (*graph.Node, error) {
	n, ok := p.nodes[name]
	if !ok {
		return nil, fmt.Errorf("undefined node %q", name)
	}
	return n, nil
}

// parseShape decodes a [2,3]-style dimension list.
func parseShape(s string) (graph.Shape, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("invalid shape %q", s)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if body == "" {
		return graph.Shape{}, nil
	}
	parts := strings.Split(body, ",")
	shape := make(graph.Shape, 0, len(parts))
	for _, part := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid dimension %q: %v", part, err)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
