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

// Package einsum computes Einstein summations over strided array views.
//
// An Einstein summation is described by binding each operand, and the result,
// to a list of integer axis labels: positions tagged with the same label move
// together, and labels used by an operand but not by the result are summed
// away. This one mechanism expresses traces, dot products, matrix and tensor
// products and arbitrary generalized contractions. See
// https://en.wikipedia.org/wiki/Einstein_notation for more information about
// the notation itself.
//
// Operands are bound with Ein (array views), EinFunc (callables) or Scalar,
// and evaluated with Einsum, which accumulates into a caller-initialized
// result, or MakeEinsum, which infers the result shape and allocates it.
//
// Examples, where `A`, `B` are matrices, `x`, `y` are vectors, `tr` and `dot`
// are rank-0 (scalar) arrays pre-initialized to zero, and `i`, `j`, `k` are
// the axis labels 0, 1 and 2:
//
//   - `Einsum(Ein(tr), Ein(A, i, i))` computes the trace of A.
//   - `Einsum(Ein(dot), Ein(x, i), Ein(y, i))` computes the dot product x·y.
//   - `Einsum(Ein(AB, i, j), Ein(A, i, k), Ein(B, k, j))` computes the
//     matrix product A*B.
//   - `Einsum(Ein(Ax, i), Ein(A, i, j), Ein(x, j))` computes the
//     matrix-vector product A*x.
//   - `MakeEinsum([]int{i, j}, Ein(A, i, k), Ein(B, k, j))` computes A*B
//     into a freshly allocated matrix.
//
// Einsum does not optimize the associative order in which the operations are
// performed: it evaluates the full product of all operands once per
// coordinate of the composed iteration space. This can be efficient for
// expansion operations, but it may be inefficient for contractions, which may
// need to be reassociated manually for efficient computation. Nor does it
// reorder loops for cache or SIMD efficiency, beyond iterating reduction
// axes as the outermost loops so each result element accumulates across
// contiguous inner passes.
package einsum

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/jiawen/array/types"
	"github.com/jiawen/array/types/arrays"
	"github.com/jiawen/array/types/shapes"
	"github.com/jiawen/array/types/xslices"
)

// Operand pairs a value -- an array view, a callable or a scalar -- with the
// ordered axis labels addressing it during a summation. Build one with Ein,
// EinFunc or Scalar.
type Operand[T arrays.Number] struct {
	axes []int
	acc  accessor[T]
}

// accessor is the uniform evaluation surface of an operand.
type accessor[T arrays.Number] interface {
	// dims returns the operand's dimension descriptors, one per declared
	// axis label, or nil when the operand contributes no shape (callables).
	dims() []shapes.Dim
	// at evaluates the operand at coordinates already projected onto its
	// declared labels.
	at(index []int) T
}

type viewAccessor[T arrays.Number] struct {
	a *arrays.Array[T]
}

func (v viewAccessor[T]) dims() []shapes.Dim { return v.a.Shape().Dimensions }
func (v viewAccessor[T]) at(index []int) T   { return v.a.At(index...) }

type funcAccessor[T arrays.Number] struct {
	fn func(index ...int) T
}

func (f funcAccessor[T]) dims() []shapes.Dim { return nil }
func (f funcAccessor[T]) at(index []int) T   { return f.fn(index...) }

func validateAxes(caller string, axes []int) {
	for _, label := range axes {
		if label < 0 {
			exceptions.Panicf("%s: axis labels must be non-negative, got %v", caller, axes)
		}
	}
}

// Ein binds an array view to the given axis labels: `Ein(a, i, j, ...)` means
// the labels `i, j, ...` of the summation index space address `a` during the
// summation. The same label may appear more than once (e.g. `Ein(a, i, i)`
// addresses the diagonal of a matrix). One label per axis of the view is
// required; Ein panics otherwise, before any summation starts.
//
// The view's storage is aliased, not copied: binding the result operand to a
// mutable view is how Einsum writes its output.
func Ein[T arrays.Number](a *arrays.Array[T], axes ...int) Operand[T] {
	if len(axes) != a.Rank() {
		exceptions.Panicf("einsum.Ein: %d axis labels given for a rank-%d array view (shape=%s)",
			len(axes), a.Rank(), a.Shape())
	}
	validateAxes("einsum.Ein", axes)
	return Operand[T]{axes: slices.Clone(axes), acc: viewAccessor[T]{a: a}}
}

// EinFunc binds a callable to the given axis labels: during the summation the
// callable is invoked with one coordinate per label. Because a callable
// provides no shape, the extents of its labels must be inferable from other
// operands or from the result.
//
// At least one label is required: a zero-argument callable has no axes to
// bind and its value must be passed with Scalar instead.
func EinFunc[T arrays.Number](fn func(index ...int) T, axes ...int) Operand[T] {
	if len(axes) == 0 {
		exceptions.Panicf("einsum.EinFunc: at least one axis label required; pass a zero-argument value with Scalar instead")
	}
	validateAxes("einsum.EinFunc", axes)
	return Operand[T]{axes: slices.Clone(axes), acc: funcAccessor[T]{fn: fn}}
}

// Scalar binds a plain value as a rank-0 operand: it declares no axis labels
// and broadcasts under every axis of the summation, multiplying every term.
func Scalar[T arrays.Number](value T) Operand[T] {
	return Operand[T]{acc: viewAccessor[T]{a: arrays.FromScalar(value)}}
}

// contribution is one dimension descriptor gathered for an axis label, with
// the identity of the operand that contributed it for diagnostics.
type contribution struct {
	dim     shapes.Dim
	operand int // -1 for the result.
	axis    int // position within the operand's label list.
}

func contribName(c contribution) string {
	if c.operand < 0 {
		return fmt.Sprintf("the result (axis %d)", c.axis)
	}
	return fmt.Sprintf("operand #%d (axis %d)", c.operand, c.axis)
}

// gatherContribs collects the descriptors every operand (and, when given, the
// result) contributes for one axis label. The result's descriptors come
// first and keep their strides; operand descriptors are demoted to broadcast
// (zero stride) descriptors when demoteOperands is set, so that on pure
// reduction axes all contributions are broadcasts and must agree exactly.
// Callables contribute nothing.
func gatherContribs[T arrays.Number](label int, result *Operand[T], operands []Operand[T], demoteOperands bool) []contribution {
	var contribs []contribution
	if result != nil {
		dims := result.acc.dims()
		for pos, l := range result.axes {
			if l == label {
				contribs = append(contribs, contribution{dim: dims[pos], operand: -1, axis: pos})
			}
		}
	}
	for opIdx := range operands {
		dims := operands[opIdx].acc.dims()
		if dims == nil {
			continue
		}
		for pos, l := range operands[opIdx].axes {
			if l != label {
				continue
			}
			d := dims[pos]
			if demoteOperands {
				d = shapes.BroadcastDim(d)
			}
			contribs = append(contribs, contribution{dim: d, operand: opIdx, axis: pos})
		}
	}
	return contribs
}

// reconcileDim merges the descriptors gathered for one axis label into the
// single descriptor driving that axis's loop.
//
// The canonical descriptor is the first non-broadcast contribution, falling
// back to the first contribution -- so the result's bounds govern a label the
// result declares, and otherwise the first operand's do. When every
// contribution is a broadcast the bounds must all match exactly; a broadcast
// contribution alongside a canonical non-broadcast one is accepted with any
// bounds, as long as its own valid range contains the canonical coordinate
// range. A label nothing declares gets a trivial single-coordinate dummy
// loop; that is intentional, not a failure.
func reconcileDim(label int, contribs []contribution) shapes.Dim {
	if len(contribs) == 0 {
		return shapes.DummyDim()
	}
	canonical := contribs[0]
	if canonical.dim.IsBroadcast() {
		for _, c := range contribs[1:] {
			if !c.dim.IsBroadcast() {
				canonical = c
				break
			}
		}
	}
	if canonical.dim.IsBroadcast() {
		// All contributions are broadcasts: the bounds must match, since the
		// strides are zero and must match.
		for _, c := range contribs[1:] {
			if !c.dim.Equal(canonical.dim) {
				exceptions.Panicf("einsum: axis label %d: %s dimension %s conflicts with %s dimension %s",
					label, contribName(c), c.dim, contribName(canonical), canonical.dim)
			}
		}
	}
	// Every contribution will be addressed with the canonical bounds, so
	// check this is possible. A broadcast view still has real bounds it must
	// not be indexed outside of.
	for _, c := range contribs {
		if !c.dim.ContainsRange(canonical.dim) {
			exceptions.Panicf("einsum: axis label %d: the valid range of %s (%s) does not contain the canonical coordinate range %s selected from %s",
				label, contribName(c), c.dim, canonical.dim, contribName(canonical))
		}
	}
	return canonical.dim
}

// loopRank returns the total number of axes of the summation index space:
// one per label from 0 to the maximum label referenced anywhere, so every
// label up to the maximum gets a loop even if nothing declares it.
func loopRank[T arrays.Number](result *Operand[T], operands []Operand[T]) int {
	maxLabel := -1
	if result != nil {
		for _, label := range result.axes {
			maxLabel = max(maxLabel, label)
		}
	}
	for _, op := range operands {
		for _, label := range op.axes {
			maxLabel = max(maxLabel, label)
		}
	}
	return maxLabel + 1
}

// composeLoopShape reconciles every axis label into the iteration shape of
// the summation, and the axis nesting order: labels absent from the result
// (pure reduction axes) outermost, the result's labels innermost, so a fixed
// result element accumulates across contiguous inner passes.
func composeLoopShape[T arrays.Number](result *Operand[T], operands []Operand[T]) (shapes.Shape, []int) {
	rank := loopRank(result, operands)
	dims := make([]shapes.Dim, rank)
	for label := range rank {
		dims[label] = reconcileDim(label, gatherContribs(label, result, operands, true))
	}
	loopShape := shapes.MakeFromDims(dims...)

	resultLabels := types.SetWith(result.axes...)
	order := make([]int, 0, rank)
	for label := range rank {
		if !resultLabels.Has(label) {
			order = append(order, label)
		}
	}
	for label := range rank {
		if resultLabels.Has(label) {
			order = append(order, label)
		}
	}
	return loopShape, order
}

// project copies the coordinates of the declared labels into dst, the
// operand's own coordinate tuple.
func project(index []int, axes []int, dst []int) []int {
	for pos, label := range axes {
		dst[pos] = index[label]
	}
	return dst
}

// Einsum computes an Einstein summation, accumulating into the result
// operand.
//
// Each operand declares which axis labels of the summation index space
// address it (see Ein, EinFunc and Scalar). For every coordinate of the
// composed iteration space, the product of all operand values at that
// coordinate is added to the result element the coordinate projects onto.
// Because of broadcast axes this may be anything from a complete reduction
// into a single element to adding one term to each element of the result, or
// something in between.
//
// The result operand must be bound to a mutable array view, and the summation
// is added to it: the caller must initialize it to some useful value
// (typically 0) before calling. Einsum returns the result's view for
// chaining.
//
// All label/shape reconciliation runs before the loop starts: conflicting
// bounds on a shared label or an out-of-range broadcast panic before any
// element of the result is modified.
func Einsum[T arrays.Number](result Operand[T], operands ...Operand[T]) *arrays.Array[T] {
	if len(operands) == 0 {
		exceptions.Panicf("einsum.Einsum: at least one operand required besides the result")
	}
	res, ok := result.acc.(viewAccessor[T])
	if !ok {
		exceptions.Panicf("einsum.Einsum: the result operand must be bound to an array view")
	}

	loopShape, order := composeLoopShape(&result, operands)
	klog.V(2).Infof("einsum: loop shape %s, nesting order %v", loopShape, order)

	// Scratch coordinate tuples, reused across the whole loop.
	resultIndex := make([]int, len(result.axes))
	operandIndex := xslices.Map(operands, func(op Operand[T]) []int { return make([]int, len(op.axes)) })

	for index := range loopShape.IterOrder(order) {
		product := T(1)
		for ii := range operands {
			product *= operands[ii].acc.at(project(index, operands[ii].axes, operandIndex[ii]))
		}
		res.a.AddAt(product, project(index, result.axes, resultIndex)...)
	}
	return res.a
}

// InferShape returns the shape MakeEinsum would allocate for the result of a
// summation of the given operands, with one axis per entry of resultAxes.
//
// For every result label the bounds come from the first non-broadcast
// descriptor an operand contributes for it; a label only broadcast operands
// declare gets the first broadcast's bounds, and a label no operand declares
// gets a single-coordinate axis. Strides are dropped: a freshly allocated
// result gets its own compact layout.
func InferShape[T arrays.Number](resultAxes []int, operands ...Operand[T]) shapes.Shape {
	validateAxes("einsum.InferShape", resultAxes)
	dims := make([]shapes.Dim, 0, len(resultAxes))
	for _, label := range resultAxes {
		dims = append(dims, reconcileDim(label, gatherContribs[T](label, nil, operands, false)).WithoutStride())
	}
	return shapes.MakeFromDims(dims...)
}

// MakeEinsum computes an Einstein summation like Einsum, but infers the
// result shape from the operands (see InferShape), allocates the result
// zero-initialized, and returns it. resultAxes lists the axis labels of the
// result, in order.
func MakeEinsum[T arrays.Number](resultAxes []int, operands ...Operand[T]) *arrays.Array[T] {
	return MakeEinsumAlloc(resultAxes, arrays.DefaultAllocator[T], operands...)
}

// MakeEinsumAlloc is like MakeEinsum, with the result buffer taken from the
// given allocator. The result is filled with the additive identity before
// the summation runs.
func MakeEinsumAlloc[T arrays.Number](resultAxes []int, allocator arrays.Allocator[T], operands ...Operand[T]) *arrays.Array[T] {
	if len(operands) == 0 {
		exceptions.Panicf("einsum.MakeEinsum: at least one operand required")
	}
	resultShape := InferShape(resultAxes, operands...)
	result := arrays.FromShapeAlloc(resultShape, allocator, T(0))
	Einsum(Ein(result, resultAxes...), operands...)
	return result
}
