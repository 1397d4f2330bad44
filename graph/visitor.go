package graph

import (
	"errors"
	"fmt"
)

// ErrDanglingConnection reports an input connector with no producer. The
// graph is malformed and cannot be scheduled.
var ErrDanglingConnection = errors.New("graph: dangling connection")

// Visit walks the graph in post order from the given roots, calling fn for
// each reachable node exactly once. A node is visited only after all of its
// producers, so birth always precedes use. Traversal order is deterministic:
// it follows input declaration order and the order of roots.
func Visit(roots []*Node, fn func(*Node) error) error {
	visited := make(map[*Node]bool)

	var walk func(n *Node) error
	walk = func(n *Node) error {
		if visited[n] {
			return nil
		}
		visited[n] = true

		for _, in := range n.inputs {
			conn := in.Connection()
			if conn == nil {
				return fmt.Errorf("%w: %s input %d", ErrDanglingConnection, n.name, in.index)
			}
			if err := walk(conn.Owner()); err != nil {
				return err
			}
		}
		return fn(n)
	}

	for _, r := range roots {
		if err := walk(r); err != nil {
			return err
		}
	}
	return nil
}
