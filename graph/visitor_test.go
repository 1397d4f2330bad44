package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds a -> (b, c) -> d and returns the terminal node.
func diamond(t *testing.T) (*Node, []string) {
	t.Helper()
	a := NewInput("a", Float32, Shape{4})
	b := NewUnary("b", OpReLU, Float32, Shape{4})
	c := NewUnary("c", OpSigmoid, Float32, Shape{4})
	d := NewBinary("d", OpAdd, Float32, Shape{4})

	b.Input(0).Connect(a.Output(0))
	c.Input(0).Connect(a.Output(0))
	d.Input(0).Connect(b.Output(0))
	d.Input(1).Connect(c.Output(0))
	return d, []string{"a", "b", "c", "d"}
}

func TestVisitPostOrder(t *testing.T) {
	t.Parallel()
	root, want := diamond(t)

	var got []string
	err := Visit([]*Node{root}, func(n *Node) error {
		got = append(got, n.Name())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVisitEachNodeOnce(t *testing.T) {
	t.Parallel()
	root, _ := diamond(t)

	counts := make(map[string]int)
	err := Visit([]*Node{root, root}, func(n *Node) error {
		counts[n.Name()]++
		return nil
	})
	require.NoError(t, err)
	for name, c := range counts {
		assert.Equal(t, 1, c, "node %s visited %d times", name, c)
	}
}

func TestVisitDeterministic(t *testing.T) {
	t.Parallel()
	for i := 0; i < 10; i++ {
		root, want := diamond(t)
		var got []string
		require.NoError(t, Visit([]*Node{root}, func(n *Node) error {
			got = append(got, n.Name())
			return nil
		}))
		require.Equal(t, want, got)
	}
}

func TestVisitDanglingConnection(t *testing.T) {
	t.Parallel()
	relu := NewUnary("r", OpReLU, Float32, Shape{4})

	err := Visit([]*Node{relu}, func(*Node) error { return nil })
	require.ErrorIs(t, err, ErrDanglingConnection)
}
