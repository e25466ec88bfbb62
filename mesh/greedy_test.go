package mesh

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGreedyQuadsAllEmpty(t *testing.T) {
	shape := Cube(10)
	voxels := make([]boolVoxel, shape.Size())

	buf := NewGreedyBuffer(len(voxels))
	err := GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, buf, boolPolicy)
	require.NoError(t, err)
	require.Zero(t, buf.Quads.Count())
}

func TestGreedyQuadsSolidCube(t *testing.T) {
	for _, n := range []uint32{1, 2, 5, 16} {
		shape := Cube(n + 2)
		voxels := make([]boolVoxel, shape.Size())
		ExtentOf(shape).Padded(-1).Each(func(p [3]uint32) {
			voxels[shape.Linearize(p)] = full
		})

		buf := NewGreedyBuffer(len(voxels))
		err := GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, buf, boolPolicy)
		require.NoError(t, err)
		require.Equal(t, 6, buf.Quads.Count())

		for i, group := range buf.Quads.Groups {
			require.Len(t, group, 1)
			q := group[0]
			require.Equal(t, n, q.Width)
			require.Equal(t, n, q.Height)

			want := [3]uint32{1, 1, 1}
			if f := RightHandedYUp.Faces[i]; f.NSign > 0 {
				want[f.NormalAxis()] = n
			}
			require.Equal(t, want, q.Minimum)
		}
	}
}

func TestGreedyQuadsRowOfTwo(t *testing.T) {
	shape := Shape3{X: 4, Y: 3, Z: 3}
	voxels := make([]boolVoxel, shape.Size())
	voxels[shape.Linearize([3]uint32{1, 1, 1})] = full
	voxels[shape.Linearize([3]uint32{2, 1, 1})] = full

	buf := NewGreedyBuffer(len(voxels))
	err := GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, buf, boolPolicy)
	require.NoError(t, err)
	require.Equal(t, 6, buf.Quads.Count())

	// End caps along the row axis stay single faces.
	require.Equal(t, []Quad{{Minimum: [3]uint32{1, 1, 1}, Width: 1, Height: 1}}, buf.Quads.Groups[0])
	require.Equal(t, []Quad{{Minimum: [3]uint32{2, 1, 1}, Width: 1, Height: 1}}, buf.Quads.Groups[3])

	// Y faces run U along z and V along x: the row grows in height.
	require.Equal(t, []Quad{{Minimum: [3]uint32{1, 1, 1}, Width: 1, Height: 2}}, buf.Quads.Groups[1])
	require.Equal(t, []Quad{{Minimum: [3]uint32{1, 1, 1}, Width: 1, Height: 2}}, buf.Quads.Groups[4])

	// Z faces run U along x: the row grows in width.
	require.Equal(t, []Quad{{Minimum: [3]uint32{1, 1, 1}, Width: 2, Height: 1}}, buf.Quads.Groups[2])
	require.Equal(t, []Quad{{Minimum: [3]uint32{1, 1, 1}, Width: 2, Height: 1}}, buf.Quads.Groups[5])

	var naive QuadGroups
	err = VisibleBlockFaces(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, &naive, boolPolicy)
	require.NoError(t, err)
	require.Equal(t, 10, naive.Count())
}

func TestGreedyQuadsMergeKeys(t *testing.T) {
	mesh := func(t *testing.T, above [2]cell) *GreedyBuffer {
		shape := Shape3{X: 4, Y: 4, Z: 3}
		voxels := make([]cell, shape.Size())
		voxels[shape.Linearize([3]uint32{1, 1, 1})] = cell{vis: Opaque, kind: 1}
		voxels[shape.Linearize([3]uint32{2, 1, 1})] = cell{vis: Opaque, kind: 1}
		voxels[shape.Linearize([3]uint32{1, 2, 1})] = above[0]
		voxels[shape.Linearize([3]uint32{2, 2, 1})] = above[1]

		buf := NewGreedyBuffer(len(voxels))
		err := GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, buf, cellPolicy)
		require.NoError(t, err)
		return buf
	}

	topsAt := func(buf *GreedyBuffer, y uint32) []Quad {
		var quads []Quad
		for _, q := range buf.Quads.Groups[4] {
			if q.Minimum[1] == y {
				quads = append(quads, q)
			}
		}
		return quads
	}

	t.Run("same neighbour key merges", func(t *testing.T) {
		buf := mesh(t, [2]cell{{vis: Translucent, kind: 2}, {vis: Translucent, kind: 2}})
		require.Equal(t, []Quad{{Minimum: [3]uint32{1, 1, 1}, Width: 1, Height: 2}}, topsAt(buf, 1))
	})

	t.Run("different neighbour key does not merge", func(t *testing.T) {
		buf := mesh(t, [2]cell{{vis: Translucent, kind: 2}, {vis: Translucent, kind: 3}})
		require.Equal(t, []Quad{
			{Minimum: [3]uint32{1, 1, 1}, Width: 1, Height: 1},
			{Minimum: [3]uint32{2, 1, 1}, Width: 1, Height: 1},
		}, topsAt(buf, 1))
		require.Len(t, topsAt(buf, 2), 2)
	})

	t.Run("different merge key does not merge", func(t *testing.T) {
		shape := Shape3{X: 4, Y: 3, Z: 3}
		voxels := make([]cell, shape.Size())
		voxels[shape.Linearize([3]uint32{1, 1, 1})] = cell{vis: Opaque, kind: 1}
		voxels[shape.Linearize([3]uint32{2, 1, 1})] = cell{vis: Opaque, kind: 2}

		buf := NewGreedyBuffer(len(voxels))
		err := GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, buf, cellPolicy)
		require.NoError(t, err)
		require.Equal(t, 10, buf.Quads.Count())
	})
}

func TestGreedyQuadsPartialRowIsRejected(t *testing.T) {
	// An L shape in the z=1 slice: the first row is two wide, the second row
	// only one, so the second row becomes its own quad.
	shape := Shape3{X: 4, Y: 4, Z: 3}
	voxels := make([]boolVoxel, shape.Size())
	for _, p := range [][3]uint32{{1, 1, 1}, {2, 1, 1}, {1, 2, 1}} {
		voxels[shape.Linearize(p)] = full
	}

	buf := NewGreedyBuffer(len(voxels))
	err := GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, buf, boolPolicy)
	require.NoError(t, err)
	require.Equal(t, []Quad{
		{Minimum: [3]uint32{1, 1, 1}, Width: 2, Height: 1},
		{Minimum: [3]uint32{1, 2, 1}, Width: 1, Height: 1},
	}, buf.Quads.Groups[5])
}

func TestGreedyQuadsMatchesVisibleFaces(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	shapes := []Shape3{Cube(6), {X: 9, Y: 5, Z: 7}, Cube(18)}

	for _, shape := range shapes {
		for _, fill := range []float64{0.1, 0.5, 0.9} {
			voxels := randomVoxels(r, shape, fill)
			ext := ExtentOf(shape)

			var naive QuadGroups
			err := VisibleBlockFaces(voxels, shape, ext, &RightHandedYUp.Faces, &naive, palettePolicy)
			require.NoError(t, err)

			buf := NewGreedyBuffer(len(voxels))
			err = GreedyQuads(voxels, shape, ext, &RightHandedYUp.Faces, buf, palettePolicy)
			require.NoError(t, err)

			for i, f := range RightHandedYUp.Faces {
				greedyCells := faceCells(t, f, buf.Quads.Groups[i])
				naiveCells := faceCells(t, f, naive.Groups[i])
				require.Equal(t, naiveCells, greedyCells, "face %d", i)
				require.LessOrEqual(t, len(buf.Quads.Groups[i]), len(naive.Groups[i]))
			}
		}
	}
}

func TestGreedyQuadsDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	shape := Cube(12)
	voxels := randomVoxels(r, shape, 0.6)

	first := NewGreedyBuffer(len(voxels))
	require.NoError(t, GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, first, palettePolicy))

	// A reused buffer must not carry visited state over.
	second := NewGreedyBuffer(len(voxels))
	require.NoError(t, GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, second, palettePolicy))
	require.NoError(t, GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, second, palettePolicy))

	require.Equal(t, first.Quads, second.Quads)
}

func TestGreedyQuadsParallel(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	shape := Shape3{X: 14, Y: 10, Z: 12}
	voxels := randomVoxels(r, shape, 0.5)

	sequential := NewGreedyBuffer(len(voxels))
	require.NoError(t, GreedyQuads(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, sequential, palettePolicy))

	parallel := NewGreedyBuffer(0)
	require.NoError(t, GreedyQuadsParallel(voxels, shape, ExtentOf(shape), &RightHandedYUp.Faces, parallel, palettePolicy))

	require.Equal(t, sequential.Quads, parallel.Quads)
}

func TestGreedyQuadsSubExtent(t *testing.T) {
	shape := Cube(10)
	voxels := make([]boolVoxel, shape.Size())
	ExtentOf(shape).Each(func(p [3]uint32) {
		voxels[shape.Linearize(p)] = full
	})

	// Everything is solid, so only faces against the empty border of a
	// smaller extent would show, and there are none.
	buf := NewGreedyBuffer(len(voxels))
	ext := Extent{Min: [3]uint32{2, 2, 2}, Max: [3]uint32{6, 6, 6}}
	require.NoError(t, GreedyQuads(voxels, shape, ext, &RightHandedYUp.Faces, buf, boolPolicy))
	require.Zero(t, buf.Quads.Count())

	// A thin extent has no interior.
	ext = Extent{Min: [3]uint32{2, 2, 2}, Max: [3]uint32{3, 8, 8}}
	require.NoError(t, GreedyQuads(voxels, shape, ext, &RightHandedYUp.Faces, buf, boolPolicy))
	require.Zero(t, buf.Quads.Count())
}

func TestGreedyQuadsValidation(t *testing.T) {
	shape := Cube(4)
	voxels := make([]boolVoxel, shape.Size())
	buf := NewGreedyBuffer(len(voxels))

	tests := []struct {
		scenario string
		voxels   []boolVoxel
		ext      Extent
		faces    *[6]OrientedBlockFace
		err      error
	}{
		{
			scenario: "max outside shape",
			voxels:   voxels,
			ext:      Extent{Max: [3]uint32{3, 3, 4}},
			faces:    &RightHandedYUp.Faces,
			err:      ErrOutOfBounds,
		},
		{
			scenario: "min above max",
			voxels:   voxels,
			ext:      Extent{Min: [3]uint32{2, 0, 0}, Max: [3]uint32{1, 3, 3}},
			faces:    &RightHandedYUp.Faces,
			err:      ErrOutOfBounds,
		},
		{
			scenario: "short voxel array",
			voxels:   voxels[:10],
			ext:      ExtentOf(shape),
			faces:    &RightHandedYUp.Faces,
			err:      ErrOutOfBounds,
		},
		{
			scenario: "nil face table",
			voxels:   voxels,
			ext:      ExtentOf(shape),
			err:      ErrInvalidFaces,
		},
		{
			scenario: "face without normal sign",
			voxels:   voxels,
			ext:      ExtentOf(shape),
			faces:    &[6]OrientedBlockFace{},
			err:      ErrInvalidFaces,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			err := GreedyQuads(test.voxels, shape, test.ext, test.faces, buf, boolPolicy)
			require.ErrorIs(t, err, test.err)

			err = GreedyQuadsParallel(test.voxels, shape, test.ext, test.faces, buf, boolPolicy)
			require.ErrorIs(t, err, test.err)
		})
	}
}
