package allocator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbl8/strata/allocator"
	"github.com/sbl8/strata/graph"
	"github.com/sbl8/strata/schedule"
)

// bankTarget registers the same allocator constructor for every region so
// an allocator implementation can be exercised through real schedules.
type bankTarget func() schedule.Allocator

func (t bankTarget) RegisterAllocators(bank map[schedule.MemoryLocation]schedule.Allocator) {
	for _, loc := range schedule.Locations() {
		bank[loc] = t()
	}
}

// chain builds x -> n0 -> n1 -> ... and returns the terminal node. Every
// intermediate tensor is 16 bytes of scratch.
func chain(length int) *graph.Node {
	in := graph.NewInput("x", graph.Float32, graph.Shape{1, 4})
	prev := in
	for i := 0; i < length; i++ {
		n := graph.NewUnary(string(rune('a'+i)), graph.OpReLU, graph.Float32, graph.Shape{1, 4})
		n.Input(0).Connect(prev.Output(0))
		prev = n
	}
	return prev
}

func TestFirstFitReusesDisjointLifetimes(t *testing.T) {
	t.Parallel()
	tgt := bankTarget(func() schedule.Allocator { return allocator.NewFirstFit() })

	result, err := schedule.New(tgt, []*graph.Node{chain(4)}).Schedule()
	require.NoError(t, err)

	// A four-op chain never has more than two scratch tensors live.
	assert.Equal(t, 32, result.MaxUsages[schedule.MemData])
}

func TestFirstFitNonOverlap(t *testing.T) {
	t.Parallel()
	tgt := bankTarget(func() schedule.Allocator { return allocator.NewFirstFit() })

	// A diamond keeps both branch tensors live at the join.
	in := graph.NewInput("x", graph.Float32, graph.Shape{1, 4})
	b1 := graph.NewUnary("b1", graph.OpReLU, graph.Float32, graph.Shape{1, 4})
	b2 := graph.NewUnary("b2", graph.OpSigmoid, graph.Float32, graph.Shape{1, 4})
	join := graph.NewBinary("j", graph.OpAdd, graph.Float32, graph.Shape{1, 4})
	b1.Input(0).Connect(in.Output(0))
	b2.Input(0).Connect(in.Output(0))
	join.Input(0).Connect(b1.Output(0))
	join.Input(1).Connect(b2.Output(0))

	result, err := schedule.New(tgt, []*graph.Node{join}).Schedule()
	require.NoError(t, err)

	a1 := result.Allocations[b1.Output(0)]
	a2 := result.Allocations[b2.Output(0)]
	disjoint := a1.Start+a1.Size <= a2.Start || a2.Start+a2.Size <= a1.Start
	assert.True(t, disjoint, "live ranges overlap: [%d,%d) and [%d,%d)",
		a1.Start, a1.Start+a1.Size, a2.Start, a2.Start+a2.Size)
}

func TestFirstFitCapacity(t *testing.T) {
	t.Parallel()
	tgt := bankTarget(func() schedule.Allocator {
		return allocator.NewFirstFit(allocator.WithCapacity(16))
	})

	// Two coexisting 16-byte tensors cannot fit in 16 bytes.
	_, err := schedule.New(tgt, []*graph.Node{chain(3)}).Schedule()
	require.ErrorIs(t, err, schedule.ErrRegionExhausted)
}

func TestFirstFitAlignment(t *testing.T) {
	t.Parallel()
	tgt := bankTarget(func() schedule.Allocator {
		return allocator.NewFirstFit(allocator.WithAlignment(64))
	})

	result, err := schedule.New(tgt, []*graph.Node{chain(3)}).Schedule()
	require.NoError(t, err)

	// Two live 16-byte tensors, each padded to 64.
	assert.Equal(t, 128, result.MaxUsages[schedule.MemData])
}

func TestBumpNeverReuses(t *testing.T) {
	t.Parallel()
	tgt := bankTarget(func() schedule.Allocator { return allocator.NewBump() })

	result, err := schedule.New(tgt, []*graph.Node{chain(4)}).Schedule()
	require.NoError(t, err)

	// Bump placement is end to end regardless of lifetimes.
	assert.Equal(t, 64, result.MaxUsages[schedule.MemData])

	seen := make(map[int]bool)
	for conn, a := range result.Allocations {
		if a.MemoryLocation != schedule.MemData {
			continue
		}
		assert.False(t, seen[a.Start], "start %d assigned twice (%s)", a.Start, conn.Owner().Name())
		seen[a.Start] = true
	}
}

func TestBumpCapacity(t *testing.T) {
	t.Parallel()
	tgt := bankTarget(func() schedule.Allocator {
		return allocator.NewBump(allocator.WithCapacity(48))
	})

	_, err := schedule.New(tgt, []*graph.Node{chain(4)}).Schedule()
	require.ErrorIs(t, err, schedule.ErrRegionExhausted)
}

func TestAlignUp(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n, align, want int
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{16, 64, 64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, allocator.AlignUp(tt.n, tt.align))
	}
}
