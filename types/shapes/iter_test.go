package shapes

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, seq func(yield func([]int) bool)) (indices [][]int) {
	t.Helper()
	for idx := range seq {
		indices = append(indices, slices.Clone(idx))
	}
	return
}

func TestIter(t *testing.T) {
	got := collect(t, Make(2, 3).Iter())
	want := [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	require.Equal(t, want, got)
}

func TestIterScalar(t *testing.T) {
	got := collect(t, Scalar().Iter())
	require.Equal(t, [][]int{{}}, got)
}

func TestIterMinOffset(t *testing.T) {
	// Coordinates start at each axis's Min, not at zero.
	s := MakeFromDims(MakeDim(1, 2, 0), MakeDim(-1, 2, 1))
	got := collect(t, s.Iter())
	want := [][]int{{1, -1}, {1, 0}, {2, -1}, {2, 0}}
	require.Equal(t, want, got)
}

func TestIterEmpty(t *testing.T) {
	s := MakeFromDims(MakeDim(0, 0, 1), MakeDim(0, 3, 1))
	require.Empty(t, collect(t, s.Iter()))
}

func TestIterOrder(t *testing.T) {
	// Axis 0 innermost: column-major traversal of a 2x3 shape.
	got := collect(t, Make(2, 3).IterOrder([]int{1, 0}))
	want := [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}, {1, 2}}
	require.Equal(t, want, got)
}

func TestIterOrderValidation(t *testing.T) {
	s := Make(2, 3)
	require.Panics(t, func() { s.IterOrder([]int{0}) })
	require.Panics(t, func() { s.IterOrder([]int{0, 0}) })
	require.Panics(t, func() { s.IterOrder([]int{0, 2}) })
}

func TestIterEarlyStop(t *testing.T) {
	count := 0
	for range Make(4, 4).Iter() {
		count++
		if count == 3 {
			break
		}
	}
	require.Equal(t, 3, count)
}
