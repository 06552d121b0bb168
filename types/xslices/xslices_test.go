package xslices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceWithValue(t *testing.T) {
	require.Equal(t, []float32{7, 7, 7}, SliceWithValue(3, float32(7)))
	require.Empty(t, SliceWithValue(0, 1))
}

func TestIota(t *testing.T) {
	require.Equal(t, []int{2, 3, 4}, Iota(2, 3))
	require.Empty(t, Iota(0, 0))
}

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, func(e int) int { return e * e })
	require.Equal(t, []int{1, 4, 9}, got)
}
