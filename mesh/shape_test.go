package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShape3Linearize(t *testing.T) {
	s := Shape3{X: 3, Y: 4, Z: 5}
	require.Equal(t, uint32(60), s.Size())
	require.Equal(t, uint32(0), s.Linearize([3]uint32{0, 0, 0}))
	require.Equal(t, uint32(1), s.Linearize([3]uint32{1, 0, 0}))
	require.Equal(t, uint32(3), s.Linearize([3]uint32{0, 1, 0}))
	require.Equal(t, uint32(12), s.Linearize([3]uint32{0, 0, 1}))

	for i := uint32(0); i < s.Size(); i++ {
		require.Equal(t, i, s.Linearize(s.Delinearize(i)))
	}
}

func TestAxisStrides(t *testing.T) {
	s := Shape3{X: 3, Y: 4, Z: 5}
	strides := axisStrides(s)
	require.Equal(t, [3]int{1, 3, 12}, strides)
	require.Equal(t, -12, stride(strides, [3]int{0, 0, -1}))
	require.Equal(t, -3, stride(strides, [3]int{0, -1, 0}))
}

func TestExtent(t *testing.T) {
	t.Run("shape of the whole array", func(t *testing.T) {
		e := ExtentOf(Shape3{X: 4, Y: 5, Z: 6})
		require.Equal(t, [3]uint32{4, 5, 6}, e.Shape())
		require.False(t, e.Empty())
	})

	t.Run("padded inward", func(t *testing.T) {
		e := ExtentOf(Cube(4)).Padded(-1)
		require.Equal(t, [3]uint32{1, 1, 1}, e.Min)
		require.Equal(t, [3]uint32{2, 2, 2}, e.Max)
		require.True(t, e.Contains([3]uint32{2, 1, 2}))
		require.False(t, e.Contains([3]uint32{0, 1, 2}))
		require.False(t, e.Contains([3]uint32{1, 3, 2}))
	})

	t.Run("padded past the centre is empty", func(t *testing.T) {
		e := ExtentOf(Shape3{X: 2, Y: 8, Z: 8}).Padded(-1)
		require.True(t, e.Empty())

		called := false
		e.Each(func([3]uint32) { called = true })
		require.False(t, called)
	})

	t.Run("padded outward clamps at zero", func(t *testing.T) {
		e := Extent{Min: [3]uint32{0, 2, 1}, Max: [3]uint32{1, 3, 1}}.Padded(1)
		require.Equal(t, [3]uint32{0, 1, 0}, e.Min)
		require.Equal(t, [3]uint32{2, 4, 2}, e.Max)
	})

	t.Run("padded outward clamps at the top of the range", func(t *testing.T) {
		top := ^uint32(0)
		e := Extent{Min: [3]uint32{0, 5, 0}, Max: [3]uint32{top - 1, 10, top}}.Padded(3)
		require.Equal(t, [3]uint32{0, 2, 0}, e.Min)
		require.Equal(t, [3]uint32{top, 13, top}, e.Max)
		require.False(t, e.Empty())
	})

	t.Run("each visits x fastest", func(t *testing.T) {
		e := Extent{Max: [3]uint32{1, 1, 0}}

		var got [][3]uint32
		e.Each(func(p [3]uint32) { got = append(got, p) })
		require.Equal(t, [][3]uint32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}, got)
	})
}

func TestRightHandedYUp(t *testing.T) {
	normals := [6][3]int{}
	for i, f := range RightHandedYUp.Faces {
		normals[i] = f.SignedNormal()
		require.NotEqual(t, f.NormalAxis(), f.UAxis())
		require.NotEqual(t, f.NormalAxis(), f.VAxis())
		require.NotEqual(t, f.UAxis(), f.VAxis())
	}
	require.Equal(t, [6][3]int{
		{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}, normals)

	require.True(t, RightHandedYUp.Faces[0].CounterClockwise())
	require.False(t, RightHandedYUp.Faces[3].CounterClockwise())
	require.False(t, RightHandedYUp.Faces[1].CounterClockwise())
	require.True(t, RightHandedYUp.Faces[4].CounterClockwise())
}

func TestPermutationSign(t *testing.T) {
	require.Equal(t, 1, XYZ.Sign())
	require.Equal(t, 1, ZXY.Sign())
	require.Equal(t, 1, YZX.Sign())
	require.Equal(t, -1, ZYX.Sign())
	require.Equal(t, -1, XZY.Sign())
	require.Equal(t, -1, YXZ.Sign())
}
