package shapes

import (
	"iter"

	"github.com/gomlx/exceptions"

	"github.com/jiawen/array/types/xslices"
)

// Iter iterates over all coordinates of the given shape in row-major order,
// that is, with the last axis changing fastest. Each axis runs over its
// coordinate interval `[Min, Min+Extent)`.
// To avoid allocating the slice of indices, the yielded indices is owned by
// the Iter() method: don't change it inside the loop.
func (s Shape) Iter() iter.Seq[[]int] {
	return s.IterOrder(xslices.Iota(0, s.Rank()))
}

// IterOrder iterates over all coordinates of the given shape with an explicit
// axis nesting order: order[0] is the outermost loop and the last entry of
// order the innermost (fastest changing) one. order must name every axis of
// the shape exactly once; IterOrder panics otherwise.
// To avoid allocating the slice of indices, the yielded indices is owned by
// the IterOrder() method: don't change it inside the loop.
func (s Shape) IterOrder(order []int) iter.Seq[[]int] {
	rank := s.Rank()
	if len(order) != rank {
		exceptions.Panicf("Shape.IterOrder(%v): order must name all %d axes of the shape", order, rank)
	}
	seen := make([]bool, rank)
	for _, axis := range order {
		if axis < 0 || axis >= rank || seen[axis] {
			exceptions.Panicf("Shape.IterOrder(%v): order must name every axis of the rank-%d shape exactly once", order, rank)
		}
		seen[axis] = true
	}

	return func(yield func([]int) bool) {
		if rank == 0 {
			// Valid scalar: yield one empty coordinate slice.
			_ = yield(make([]int, 0))
			return
		}

		// An axis with no valid coordinates makes the whole iteration empty.
		for _, d := range s.Dimensions {
			if d.Extent <= 0 {
				return
			}
		}

		currentIndices := make([]int, rank)
		for axis, d := range s.Dimensions {
			currentIndices[axis] = d.Min
		}

		// Loop until all coordinates are generated.
		// This structure simulates an N-dimensional counter for the indices.
		for {
			if !yield(currentIndices) {
				return // Consumer requested to stop iteration.
			}

			// Increment currentIndices to the next set of coordinates,
			// starting at the innermost axis of the nesting order.
			pos := rank - 1
			for ; pos >= 0; pos-- {
				axis := order[pos]
				d := s.Dimensions[axis]
				if d.Extent == 1 {
					// Nothing to iterate at this axis.
					continue
				}
				currentIndices[axis]++
				if currentIndices[axis] < d.Min+d.Extent {
					// Successfully incremented this axis; no carry-over needed.
					break
				}
				// The current axis overflowed; reset it to its first
				// coordinate and carry over to the next outer axis.
				currentIndices[axis] = d.Min
			}

			// If pos is less than 0, the outermost axis also overflowed and
			// all coordinates have been visited.
			if pos < 0 {
				break
			}
		}
	}
}
