package einsum_test

import (
	"fmt"

	"github.com/jiawen/array/einsum"
	"github.com/jiawen/array/types/arrays"
	"github.com/jiawen/array/types/shapes"
)

// ExampleEinsum demonstrates the usual matrix multiplication written as an
// Einstein summation: ab[i,j] = sum over k of a[i,k]*b[k,j]. Labels shared
// between operands move together, and k, absent from the result, is summed
// away.
func ExampleEinsum() {
	const i, k, j = 0, 1, 2
	a := arrays.FromFlatDataAndDimensions([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := arrays.FromFlatDataAndDimensions([]float64{1, 0, 0, 1, 1, 1}, 3, 2)
	ab := arrays.FromShape[float64](shapes.Make(2, 2))

	einsum.Einsum(einsum.Ein(ab, i, j), einsum.Ein(a, i, k), einsum.Ein(b, k, j))

	fmt.Println(ab.Flat())
	// Output:
	// [4 5 10 11]
}

// ExampleMakeEinsum computes a dot product into a freshly allocated rank-0
// result: no labels remain in the result, so every axis is reduced.
func ExampleMakeEinsum() {
	const i = 0
	x := arrays.FromFlatDataAndDimensions([]float64{1, 2, 3}, 3)
	y := arrays.FromFlatDataAndDimensions([]float64{4, 5, 6}, 3)

	dot := einsum.MakeEinsum([]int{}, einsum.Ein(x, i), einsum.Ein(y, i))

	fmt.Println(dot.Value())
	// Output:
	// 32
}
