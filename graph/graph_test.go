package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectorWiring(t *testing.T) {
	t.Parallel()
	in := NewInput("x", Float32, Shape{1, 4})
	relu := NewUnary("r", OpReLU, Float32, Shape{1, 4})

	relu.Input(0).Connect(in.Output(0))

	require.Equal(t, in.Output(0), relu.Input(0).Connection())
	require.Len(t, in.Output(0).Connections(), 1)
	assert.Equal(t, relu, in.Output(0).Connections()[0].Owner())
	assert.Equal(t, Shape{1, 4}, relu.Input(0).Shape())
}

func TestConnectorRewire(t *testing.T) {
	t.Parallel()
	a := NewInput("a", Float32, Shape{4})
	b := NewInput("b", Float32, Shape{4})
	relu := NewUnary("r", OpReLU, Float32, Shape{4})

	relu.Input(0).Connect(a.Output(0))
	relu.Input(0).Connect(b.Output(0))

	assert.Equal(t, b.Output(0), relu.Input(0).Connection())
	assert.Empty(t, a.Output(0).Connections())
	assert.Len(t, b.Output(0).Connections(), 1)
}

func TestNewConcat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		axis      int
		inShapes  []Shape
		wantShape Shape
		wantDims  []int
		wantErr   bool
	}{
		{
			name:      "axis 0",
			axis:      0,
			inShapes:  []Shape{{2, 4}, {3, 4}},
			wantShape: Shape{5, 4},
			wantDims:  []int{2, 3},
		},
		{
			name:      "inner axis",
			axis:      1,
			inShapes:  []Shape{{1, 2}, {1, 5}},
			wantShape: Shape{1, 7},
			wantDims:  []int{2, 5},
		},
		{
			name:     "dim mismatch",
			axis:     0,
			inShapes: []Shape{{2, 4}, {3, 5}},
			wantErr:  true,
		},
		{
			name:     "rank mismatch",
			axis:     0,
			inShapes: []Shape{{2, 4}, {3}},
			wantErr:  true,
		},
		{
			name:     "axis out of range",
			axis:     2,
			inShapes: []Shape{{2, 4}, {3, 4}},
			wantErr:  true,
		},
		{
			name:     "no inputs",
			axis:     0,
			inShapes: nil,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewConcat("c", Float32, tt.axis, tt.inShapes)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantShape, n.Output(0).Shape())
			info, ok := n.Concat()
			require.True(t, ok)
			assert.Equal(t, tt.axis, info.Axis)
			assert.Equal(t, tt.wantDims, info.Dims)
			assert.Len(t, n.Inputs(), len(tt.inShapes))
		})
	}
}

func TestNewBitcastElementMismatch(t *testing.T) {
	t.Parallel()
	_, err := NewBitcast("b", Float32, Shape{2, 3}, Shape{7})
	require.Error(t, err)

	n, err := NewBitcast("b", Float32, Shape{2, 3}, Shape{6})
	require.NoError(t, err)
	assert.Equal(t, Shape{6}, n.Output(0).Shape())
	assert.NotZero(t, n.Attributes()&AttrAction)
}

func TestNewSliceBounds(t *testing.T) {
	t.Parallel()
	n, err := NewSlice("s", Float32, Shape{4, 4}, []int{1, 0}, []int{3, 4})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 4}, n.Output(0).Shape())

	_, err = NewSlice("s", Float32, Shape{4, 4}, []int{0, 0}, []int{5, 4})
	require.Error(t, err)

	_, err = NewSlice("s", Float32, Shape{4, 4}, []int{2}, []int{3})
	require.Error(t, err)
}

func TestGraphLookups(t *testing.T) {
	t.Parallel()
	g := &Graph{}
	in := NewInput("x", Float32, Shape{4})
	relu := NewUnary("r", OpReLU, Float32, Shape{4})
	out := NewOutput("o")
	relu.Input(0).Connect(in.Output(0))
	out.Input(0).Connect(relu.Output(0))
	g.Add(in, relu, out)

	assert.Equal(t, []*Node{out}, g.Outputs())
	assert.Equal(t, []*Node{in}, g.Inputs())
	assert.Equal(t, relu, g.Find("r"))
	assert.Nil(t, g.Find("missing"))
}
