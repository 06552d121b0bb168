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

// Package arrays implements Array, a strided multi-dimensional view over a
// flat buffer of numeric elements.
//
// An Array pairs a flat `[]T` buffer with a shapes.Shape describing how
// coordinates map to buffer positions: element access at coordinates
// `c[0], ..., c[rank-1]` resolves to the flat position
// `sum((c[axis]-Min[axis]) * Stride[axis])`. Axes with stride zero are
// broadcast axes: all their coordinates resolve to the same position, so a
// small buffer can be viewed as a larger array that replays its elements.
//
// There are various ways to construct an Array:
//
//   - FromShape[T](shape): compact row-major allocation, zero-initialized.
//     Only the bounds of the given shape matter; strides are resolved at
//     allocation.
//
//   - FromShapeAlloc[T](shape, allocator, initial): like FromShape, but the
//     buffer comes from the given Allocator and is pre-filled with initial.
//
//   - FromFlatDataAndDimensions[T](data, dimensions...): view the given flat
//     data as a compact row-major array. Example:
//
//     a := FromFlatDataAndDimensions([]float64{1, 2, 3, 4}, 2, 2) // [[1,2], [3,4]]
//
//   - FromFlatDataAndShape[T](data, shape): view the given flat data through
//     an arbitrary (possibly broadcast) shape.
//
//   - FromScalar[T](value): a rank-0 view holding a single element.
//
//   - FromScalarAndDimensions[T](value, dimensions...): a compact array with
//     every element set to value.
//
// The element buffer is always borrowed, never copied: constructors taking a
// data slice alias it, and mutating the array mutates the caller's slice.
package arrays

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/jiawen/array/types/shapes"
	"github.com/jiawen/array/types/xslices"
)

// Number represents the Go numeric types an Array can hold. Used as a
// Generics constraint.
type Number interface {
	int | int32 | int64 | float32 | float64 | complex64 | complex128
}

// Allocator provides the flat buffers backing freshly allocated arrays.
// It must return a slice of at least the requested size.
type Allocator[T Number] func(size int) []T

// DefaultAllocator allocates buffers with the builtin make.
func DefaultAllocator[T Number](size int) []T { return make([]T, size) }

// Array is a strided view of a flat buffer. See package documentation for
// the coordinate addressing rules and the various constructors.
type Array[T Number] struct {
	flat  []T
	shape shapes.Shape
}

// requiredBufferLen returns the number of elements a buffer must have to back
// a view with the given shape: one plus the largest reachable flat position.
// A shape with an empty axis addresses no elements.
func requiredBufferLen(shape shapes.Shape) int {
	size := 1
	for _, d := range shape.Dimensions {
		if d.Extent == 0 {
			return 0
		}
		if d.Stride < 0 {
			exceptions.Panicf("arrays: negative strides are not supported (shape=%s)", shape)
		}
		size += (d.Extent - 1) * d.Stride
	}
	return size
}

// FromShape returns a zero-initialized compact row-major Array with the
// bounds of the given shape. The strides of the given shape are ignored and
// resolved for the new layout.
func FromShape[T Number](shape shapes.Shape) *Array[T] {
	return FromShapeAlloc(shape, DefaultAllocator[T], T(0))
}

// FromShapeAlloc returns a compact row-major Array with the bounds of the
// given shape, backed by a buffer from the given allocator and with every
// element set to initial. The strides of the given shape are ignored and
// resolved for the new layout.
func FromShapeAlloc[T Number](shape shapes.Shape, allocator Allocator[T], initial T) *Array[T] {
	resolved := shape.ResolveStrides()
	size := resolved.Size()
	flat := allocator(size)
	if len(flat) < size {
		exceptions.Panicf("arrays.FromShapeAlloc(%s): allocator returned %d elements, need %d", shape, len(flat), size)
	}
	if len(flat) > size {
		klog.Warningf("arrays.FromShapeAlloc(%s): allocator returned %d elements, need only %d; truncating", shape, len(flat), size)
		flat = flat[:size]
	}
	for ii := range flat {
		flat[ii] = initial
	}
	return &Array[T]{flat: flat, shape: resolved}
}

// FromFlatDataAndDimensions views the given data as a compact row-major
// Array with the given dimensions. The data is aliased, not copied.
func FromFlatDataAndDimensions[T Number](data []T, dimensions ...int) *Array[T] {
	shape := shapes.Make(dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("arrays.FromFlatDataAndDimensions(%v): data has %d elements, dimensions require %d",
			dimensions, len(data), shape.Size())
	}
	return &Array[T]{flat: data, shape: shape}
}

// FromFlatDataAndShape views the given data through an arbitrary shape, which
// may include broadcast (stride 0) axes or non-zero Min bounds. The data is
// aliased, not copied. It panics if the buffer is too small to back every
// reachable coordinate of the shape.
func FromFlatDataAndShape[T Number](data []T, shape shapes.Shape) *Array[T] {
	if required := requiredBufferLen(shape); len(data) < required {
		exceptions.Panicf("arrays.FromFlatDataAndShape(%s): data has %d elements, shape requires %d",
			shape, len(data), required)
	}
	return &Array[T]{flat: data, shape: shape.Clone()}
}

// FromScalar returns a rank-0 Array holding the given value.
func FromScalar[T Number](value T) *Array[T] {
	return &Array[T]{flat: []T{value}, shape: shapes.Scalar()}
}

// FromScalarAndDimensions returns a compact Array with the given dimensions
// and every element set to value.
func FromScalarAndDimensions[T Number](value T, dimensions ...int) *Array[T] {
	shape := shapes.Make(dimensions...)
	return &Array[T]{flat: xslices.SliceWithValue(shape.Size(), value), shape: shape}
}

// Shape returns the shape of the array. The returned value shares the
// dimensions slice: don't modify it.
func (a *Array[T]) Shape() shapes.Shape { return a.shape }

// Rank of the array, that is, the number of axes.
func (a *Array[T]) Rank() int { return a.shape.Rank() }

// IsScalar returns whether the array is rank-0.
func (a *Array[T]) IsScalar() bool { return a.shape.IsScalar() }

// Flat returns the underlying flat buffer. Mutating it mutates the array.
func (a *Array[T]) Flat() []T { return a.flat }

// offsetOf maps coordinates to the flat buffer position, checking that the
// coordinates are valid for the shape.
func (a *Array[T]) offsetOf(indices []int) int {
	if len(indices) != a.Rank() {
		exceptions.Panicf("arrays: %d coordinates given for a rank-%d array (shape=%s)",
			len(indices), a.Rank(), a.shape)
	}
	offset := 0
	for axis, index := range indices {
		d := a.shape.Dimensions[axis]
		if index < d.Min || index > d.Max() {
			exceptions.Panicf("arrays: coordinate %d out-of-range [%d, %d] for axis %d (shape=%s)",
				index, d.Min, d.Max(), axis, a.shape)
		}
		offset += (index - d.Min) * d.Stride
	}
	return offset
}

// At returns the element at the given coordinates. It panics if the
// coordinates are out-of-range for the shape.
func (a *Array[T]) At(indices ...int) T {
	return a.flat[a.offsetOf(indices)]
}

// Set stores value at the given coordinates. It panics if the coordinates
// are out-of-range for the shape.
func (a *Array[T]) Set(value T, indices ...int) {
	a.flat[a.offsetOf(indices)] = value
}

// AddAt adds value to the element at the given coordinates. It panics if the
// coordinates are out-of-range for the shape.
func (a *Array[T]) AddAt(value T, indices ...int) {
	a.flat[a.offsetOf(indices)] += value
}

// Value returns the element of a rank-0 array. It panics if the array is not
// a scalar.
func (a *Array[T]) Value() T {
	if !a.IsScalar() {
		exceptions.Panicf("Array.Value() called on a rank-%d array (shape=%s)", a.Rank(), a.shape)
	}
	return a.flat[0]
}

// Fill sets every element reachable through the view to value. Broadcast
// axes are written once.
func (a *Array[T]) Fill(value T) {
	for indices := range a.shape.Iter() {
		a.Set(value, indices...)
	}
}

// String implements stringer.
func (a *Array[T]) String() string {
	if a.IsScalar() {
		return fmt.Sprintf("(%v)", a.flat[0])
	}
	return fmt.Sprintf("(%s: %v)", a.shape, a.flat)
}
