/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package shapes defines Dim and Shape, the descriptors of strided
// multi-dimensional views.
//
// A Dim describes one axis of a view: the half-open coordinate interval
// `[Min, Min+Extent)` addressed on that axis, and the Stride, the distance in
// the underlying flat buffer between two consecutive coordinates of the axis.
// A Stride of zero makes the axis a broadcast axis: every coordinate of the
// axis resolves to the same flat position, so iterating it replays the same
// elements.
//
// A Shape is an ordered sequence of Dims, one per axis. Shapes are used both
// by concrete array views (see the arrays package) and to drive iteration
// over a coordinate space (see Shape.Iter and Shape.IterOrder).
//
// ## Glossary
//
//   - Rank: number of axes of a view.
//   - Axis: the index of a dimension of a view.
//   - Extent: the number of valid coordinates of one axis.
//   - Min: the first valid coordinate of one axis -- coordinates do not have
//     to start at zero.
//   - Broadcast axis: an axis with Stride == 0.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"

	"github.com/jiawen/array/types/xslices"
)

// Dim describes one axis of a strided view: the coordinate interval
// `[Min, Min+Extent)` and the flat-buffer step between consecutive
// coordinates of the axis. Stride == 0 denotes a broadcast axis.
type Dim struct {
	Min, Extent, Stride int
}

// MakeDim returns the dimension descriptor with the given bounds and stride.
// It panics if extent is negative.
func MakeDim(min, extent, stride int) Dim {
	if extent < 0 {
		exceptions.Panicf("shapes.MakeDim(%d, %d, %d): extent cannot be negative", min, extent, stride)
	}
	return Dim{Min: min, Extent: extent, Stride: stride}
}

// BroadcastDim returns a copy of d with its stride zeroed, so the axis
// replays the same underlying elements on every coordinate. The bounds are
// preserved: a broadcast axis still has a valid coordinate range.
func BroadcastDim(d Dim) Dim {
	return Dim{Min: d.Min, Extent: d.Extent, Stride: 0}
}

// DummyDim returns the trivial single-coordinate broadcast dimension
// `{Min: 0, Extent: 1, Stride: 0}`, used as a stand-in for axes nothing
// declares.
func DummyDim() Dim {
	return Dim{Min: 0, Extent: 1, Stride: 0}
}

// Max returns the last valid coordinate of the axis, `Min+Extent-1`.
func (d Dim) Max() int { return d.Min + d.Extent - 1 }

// IsBroadcast returns whether the axis has stride zero.
func (d Dim) IsBroadcast() bool { return d.Stride == 0 }

// Equal compares all three fields of the descriptors.
func (d Dim) Equal(o Dim) bool { return d == o }

// ContainsRange returns whether o's coordinate interval lies within d's, that
// is, whether every coordinate valid for o is also valid for d.
func (d Dim) ContainsRange(o Dim) bool {
	return o.Min >= d.Min && o.Min+o.Extent <= d.Min+d.Extent
}

// WithoutStride returns a copy of d with only its bounds: the stride is
// dropped, to be resolved by whoever allocates storage for the axis.
func (d Dim) WithoutStride() Dim {
	return Dim{Min: d.Min, Extent: d.Extent}
}

// String implements stringer.
func (d Dim) String() string {
	return fmt.Sprintf("{min:%d, extent:%d, stride:%d}", d.Min, d.Extent, d.Stride)
}

// Shape is the ordered sequence of dimension descriptors of a view, one per
// axis. The zero value is a valid scalar (rank-0) shape.
//
// Use Make for compact row-major shapes, or MakeFromDims for explicit
// descriptors.
type Shape struct {
	Dimensions []Dim
}

// Make returns a compact row-major Shape with the given extents: all axes
// start at coordinate zero and the last axis has stride 1.
func Make(extents ...int) Shape {
	s := Shape{Dimensions: make([]Dim, len(extents))}
	for axis, extent := range extents {
		if extent <= 0 {
			exceptions.Panicf("shapes.Make(%v): cannot create a shape with an axis with extent <= 0", extents)
		}
		s.Dimensions[axis].Extent = extent
	}
	return s.ResolveStrides()
}

// MakeFromDims returns a Shape with the given descriptors.
func MakeFromDims(dims ...Dim) Shape {
	return Shape{Dimensions: slices.Clone(dims)}
}

// Scalar returns the rank-0 shape.
func Scalar() Shape { return Shape{} }

// Rank of the shape, that is, the number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape has no axes.
func (s Shape) IsScalar() bool { return s.Rank() == 0 }

// Dim returns the descriptor of the given axis. axis can take negative
// numbers, in which case it counts from the end -- so axis=-1 refers to the
// last axis. It panics for an out-of-bounds axis.
func (s Shape) Dim(axis int) Dim {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Size returns the number of coordinates addressed by the shape. It's the
// product of all extents. Broadcast axes count: their coordinates revisit
// the same storage but are still iterated.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d.Extent
	}
	return
}

// Equal compares two shapes for equality: rank and every descriptor.
func (s Shape) Equal(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{Dimensions: slices.Clone(s.Dimensions)}
}

// ResolveStrides returns a copy of the shape with compact row-major strides
// computed from the extents: the last axis gets stride 1 and each axis the
// product of the extents after it. Existing strides are discarded; bounds
// are preserved.
func (s Shape) ResolveStrides() Shape {
	resolved := s.Clone()
	stride := 1
	for axis := resolved.Rank() - 1; axis >= 0; axis-- {
		resolved.Dimensions[axis].Stride = stride
		stride *= resolved.Dimensions[axis].Extent
	}
	return resolved
}

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.IsScalar() {
		return "(scalar)"
	}
	parts := xslices.Map(s.Dimensions, Dim.String)
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// HasShape is implemented by any value with an associated Shape.
type HasShape interface {
	Shape() Shape
}

// Shape returns a shallow copy of itself. It implements the HasShape
// interface.
func (s Shape) Shape() Shape { return s }
