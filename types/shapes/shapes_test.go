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

package shapes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDim(t *testing.T) {
	d := MakeDim(1, 3, 2)
	require.Equal(t, 1, d.Min)
	require.Equal(t, 3, d.Extent)
	require.Equal(t, 2, d.Stride)
	require.Equal(t, 3, d.Max())
	require.False(t, d.IsBroadcast())
	require.Panics(t, func() { MakeDim(0, -1, 0) })

	b := BroadcastDim(d)
	require.True(t, b.IsBroadcast())
	require.Equal(t, Dim{Min: 1, Extent: 3}, b)

	require.Equal(t, Dim{Extent: 1}, DummyDim())
	require.Equal(t, Dim{Min: 1, Extent: 3}, d.WithoutStride())

	require.True(t, d.Equal(MakeDim(1, 3, 2)))
	require.False(t, d.Equal(MakeDim(1, 3, 0)))
}

func TestDimContainsRange(t *testing.T) {
	d := MakeDim(0, 5, 1)
	require.True(t, d.ContainsRange(MakeDim(0, 5, 7))) // strides don't matter
	require.True(t, d.ContainsRange(MakeDim(1, 3, 0)))
	require.False(t, d.ContainsRange(MakeDim(0, 6, 1)))
	require.False(t, d.ContainsRange(MakeDim(-1, 2, 1)))
	require.False(t, MakeDim(1, 2, 1).ContainsRange(d))
}

func TestShape(t *testing.T) {
	scalar := Scalar()
	require.True(t, scalar.IsScalar())
	require.Equal(t, 0, scalar.Rank())
	require.Equal(t, 1, scalar.Size())

	s := Make(4, 3, 2)
	require.False(t, s.IsScalar())
	require.Equal(t, 3, s.Rank())
	require.Equal(t, 4*3*2, s.Size())
	require.Equal(t, MakeDim(0, 4, 6), s.Dim(0))
	require.Equal(t, MakeDim(0, 3, 2), s.Dim(1))
	require.Equal(t, MakeDim(0, 2, 1), s.Dim(2))
	require.Equal(t, MakeDim(0, 2, 1), s.Dim(-1))
	require.Panics(t, func() { s.Dim(3) })
	require.Panics(t, func() { Make(2, 0) })

	require.True(t, s.Equal(Make(4, 3, 2)))
	require.False(t, s.Equal(Make(4, 3)))

	clone := s.Clone()
	clone.Dimensions[0].Extent = 7
	require.Equal(t, 4, s.Dimensions[0].Extent)
}

func TestResolveStrides(t *testing.T) {
	s := MakeFromDims(MakeDim(1, 4, 0), MakeDim(0, 3, 99))
	resolved := s.ResolveStrides()
	require.Equal(t, MakeDim(1, 4, 3), resolved.Dim(0))
	require.Equal(t, MakeDim(0, 3, 1), resolved.Dim(1))

	// The receiver is left untouched.
	require.Equal(t, 0, s.Dim(0).Stride)
}
