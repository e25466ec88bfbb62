package glb

import (
	"bytes"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/require"
	"github.com/voxelsplace/blockmesh/mesh"
)

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a [3]float32, b [3]int) float32 {
	return a[0]*float32(b[0]) + a[1]*float32(b[1]) + a[2]*float32(b[2])
}

func TestTrianglesFaceOutward(t *testing.T) {
	q := mesh.Quad{Minimum: [3]uint32{1, 2, 3}, Width: 2, Height: 3}

	for _, f := range mesh.RightHandedYUp.Faces {
		corners := Corners(f, q)
		idx := windingIndices(f)
		for tri := 0; tri < 2; tri++ {
			p0, p1, p2 := corners[idx[tri*3]], corners[idx[tri*3+1]], corners[idx[tri*3+2]]
			n := cross(sub(p1, p0), sub(p2, p0))
			require.Greater(t, dot(n, f.SignedNormal()), float32(0), "face %+v triangle %d", f, tri)
		}
	}
}

func TestCorners(t *testing.T) {
	q := mesh.Quad{Minimum: [3]uint32{1, 1, 1}, Width: 2, Height: 3}

	// -X: plane x=1, U=Z, V=Y.
	c := Corners(mesh.RightHandedYUp.Faces[0], q)
	require.Equal(t, [4][3]float32{{1, 1, 1}, {1, 1, 3}, {1, 4, 1}, {1, 4, 3}}, c)

	// +X: plane x=2.
	c = Corners(mesh.RightHandedYUp.Faces[3], q)
	require.Equal(t, [4][3]float32{{2, 1, 1}, {2, 1, 3}, {2, 4, 1}, {2, 4, 3}}, c)
}

func cubeQuads() *mesh.QuadGroups {
	var g mesh.QuadGroups
	for i := range g.Groups {
		g.Groups[i] = []mesh.Quad{{Minimum: [3]uint32{1, 1, 1}, Width: 1, Height: 1}}
	}
	return &g
}

func TestTexCoords(t *testing.T) {
	q := mesh.Quad{Width: 2, Height: 3}
	faces := mesh.RightHandedYUp.Faces
	flip := mesh.RightHandedYUp.UFlipFace

	tests := []struct {
		name  string
		face  mesh.OrientedBlockFace
		flipV bool
		want  [4][2]float32
	}{
		{"-x", faces[0], false, [4][2]float32{{0, 0}, {2, 0}, {0, 3}, {2, 3}}},
		{"-x flip v", faces[0], true, [4][2]float32{{0, 3}, {2, 3}, {0, 0}, {2, 0}}},
		{"+x flip v", faces[3], true, [4][2]float32{{2, 3}, {0, 3}, {2, 0}, {0, 0}}},
		{"-y", faces[1], false, [4][2]float32{{2, 0}, {0, 0}, {2, 3}, {0, 3}}},
		{"+y", faces[4], false, [4][2]float32{{0, 0}, {2, 0}, {0, 3}, {2, 3}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.want, TexCoords(test.face, flip, test.flipV, q))
		})
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder("test")
	opaque := func([3]uint32) [4]float32 { return [4]float32{1, 0, 0, 1} }
	glass := func([3]uint32) [4]float32 { return [4]float32{1, 1, 1, 0.5} }

	b.Add("a", cubeQuads(), &mesh.RightHandedYUp, opaque, [3]float32{0, 0, 0})
	b.Add("b", cubeQuads(), &mesh.RightHandedYUp, glass, [3]float32{16, 0, 0})
	b.Add("c", cubeQuads(), &mesh.RightHandedYUp, opaque, [3]float32{32, 0, 0})
	b.Add("empty", &mesh.QuadGroups{}, &mesh.RightHandedYUp, opaque, [3]float32{})

	doc := b.Document()
	require.Len(t, doc.Meshes, 3)
	require.Len(t, doc.Nodes, 4)
	require.Len(t, doc.Materials, 2)
	require.Len(t, doc.Scenes[0].Nodes, 4)
	require.Nil(t, doc.Nodes[3].Mesh)
	require.Equal(t, [3]float64{16, 0, 0}, doc.Nodes[1].Translation)

	require.Equal(t, gltf.AlphaOpaque, doc.Materials[*doc.Meshes[0].Primitives[0].Material].AlphaMode)
	require.Equal(t, gltf.AlphaBlend, doc.Materials[*doc.Meshes[1].Primitives[0].Material].AlphaMode)
	require.Equal(t, *doc.Meshes[0].Primitives[0].Material, *doc.Meshes[2].Primitives[0].Material)

	prim := doc.Meshes[0].Primitives[0]
	require.EqualValues(t, 24, doc.Accessors[prim.Attributes[gltf.POSITION]].Count)
	require.EqualValues(t, 24, doc.Accessors[prim.Attributes[gltf.NORMAL]].Count)
	require.EqualValues(t, 24, doc.Accessors[prim.Attributes[gltf.TEXCOORD_0]].Count)
	require.EqualValues(t, 36, doc.Accessors[*prim.Indices].Count)
}

func TestEncode(t *testing.T) {
	b := NewBuilder("test")
	b.Add("cube", cubeQuads(), &mesh.RightHandedYUp, func([3]uint32) [4]float32 {
		return [4]float32{0, 1, 0, 1}
	}, [3]float32{})

	var buf bytes.Buffer
	require.NoError(t, b.Encode(&buf))
	require.Equal(t, "glTF", buf.String()[:4])

	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&doc))
	require.Equal(t, "test", doc.Asset.Generator)
	require.Len(t, doc.Meshes, 1)
	require.Equal(t, "cube", doc.Meshes[0].Name)
}
